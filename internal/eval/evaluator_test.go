package eval

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picklr-io/stagehand/internal/ir"
)

const sampleProject = `
experience:
  configuration:
    genre: Adventure
    playableDevices: [computer, phone]
  icon: assets/icon.png
  thumbnails:
    - assets/thumb-1.png
    - assets/thumb-2.png
  products:
    coins:
      name: 100 Coins
      description: A pile of coins
      price: 25
      icon: assets/coins.png
    gems:
      name: Gems
      price: 99
places:
  start:
    file: places/start.rbxlx
    configuration:
      name: Lobby
      maxPlayerCount: 40
  arena:
    file: places/arena.rbxl
`

func writeProject(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"stagehand.yml":      content,
		"assets/icon.png":    "icon",
		"assets/thumb-1.png": "thumb-1",
		"assets/thumb-2.png": "thumb-2",
		"assets/coins.png":   "coins",
		"places/start.rbxlx": "<roblox/>",
		"places/arena.rbxl":  "binary",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

func TestLoadProjectYAML(t *testing.T) {
	dir := writeProject(t, sampleProject)
	e := NewEvaluator(dir)

	project, err := e.LoadProject(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "Adventure", *project.Experience.Configuration.Genre)
	assert.Len(t, project.Experience.Thumbnails, 2)
	assert.Equal(t, uint32(25), project.Experience.Products["coins"].Price)
	require.Contains(t, project.Places, "start")
	assert.Equal(t, uint32(40), *project.Places["start"].Configuration.MaxPlayerCount)
}

func TestLoadProjectRejectsUnknownKeys(t *testing.T) {
	dir := writeProject(t, "experience:\n  colour: red\nplaces:\n  start: {}\n")

	_, err := NewEvaluator(dir).LoadProject(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestLoadProjectMissingFile(t *testing.T) {
	_, err := NewEvaluator(t.TempDir()).LoadProject(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoProjectFile)

	_, err = NewEvaluator(t.TempDir()).LoadProject(context.Background(), "project.json")
	assert.Error(t, err)
}

func resourceByAddr(t *testing.T, list []*ir.Resource, addr string) *ir.Resource {
	t.Helper()
	for _, r := range list {
		if r.Address() == addr {
			return r
		}
	}
	t.Fatalf("resource %s not found", addr)
	return nil
}

func TestBuildResources(t *testing.T) {
	dir := writeProject(t, sampleProject)
	project, err := NewEvaluator(dir).LoadProject(context.Background(), "")
	require.NoError(t, err)

	list, err := BuildResources(project, dir)
	require.NoError(t, err)

	var addrs []string
	for _, r := range list {
		addrs = append(addrs, r.Address())
	}
	assert.ElementsMatch(t, []string{
		"experience/singleton",
		"experienceConfiguration/singleton",
		"experienceActivation/singleton",
		"experienceIcon/singleton",
		"experienceThumbnail/assets/thumb-1.png",
		"experienceThumbnail/assets/thumb-2.png",
		"experienceThumbnailOrder/singleton",
		"experienceDeveloperProductIcon/coins",
		"experienceDeveloperProduct/coins",
		"experienceDeveloperProduct/gems",
		"place/arena",
		"placeFile/arena",
		"place/start",
		"placeFile/start",
		"placeConfiguration/start",
	}, addrs)

	experience := resourceByAddr(t, list, "experience/singleton")
	assert.Empty(t, experience.Inputs)
	assert.Empty(t, experience.DependsOn)

	activation := resourceByAddr(t, list, "experienceActivation/singleton")
	assert.Equal(t, true, activation.Inputs["isActive"])
	assert.Equal(t, "ptr://experience/singleton/assetId", activation.Inputs["experienceId"])

	start := resourceByAddr(t, list, "place/start")
	assert.Equal(t, true, start.Inputs["isStart"])
	assert.Equal(t, "ptr://experience/singleton/startPlaceId", start.Inputs["startPlaceId"])
	assert.Equal(t, false, resourceByAddr(t, list, "place/arena").Inputs["isStart"])

	order := resourceByAddr(t, list, "experienceThumbnailOrder/singleton")
	assert.Equal(t, []any{
		"ptr://experienceThumbnail/assets/thumb-1.png/assetId",
		"ptr://experienceThumbnail/assets/thumb-2.png/assetId",
	}, order.Inputs["assetIds"])
	assert.Equal(t, []string{
		"experience/singleton",
		"experienceThumbnail/assets/thumb-1.png",
		"experienceThumbnail/assets/thumb-2.png",
	}, order.DependsOn)

	coins := resourceByAddr(t, list, "experienceDeveloperProduct/coins")
	assert.Equal(t, "ptr://experienceDeveloperProductIcon/coins/assetId", coins.Inputs["iconAssetId"])
	assert.NotContains(t, resourceByAddr(t, list, "experienceDeveloperProduct/gems").Inputs, "iconAssetId")

	placeFile := resourceByAddr(t, list, "placeFile/start")
	assert.Equal(t, "places/start.rbxlx", placeFile.Inputs["filePath"])
	wantHash, err := FileHash(filepath.Join(dir, "places/start.rbxlx"))
	require.NoError(t, err)
	assert.Equal(t, wantHash, placeFile.Inputs["fileHash"])
	assert.Len(t, wantHash, 64)

	placeCfg := resourceByAddr(t, list, "placeConfiguration/start")
	assert.Equal(t, map[string]any{"name": "Lobby", "maxPlayerCount": 40}, placeCfg.Inputs["configuration"])
}

func TestBuildResourcesAdoptsAssetIDs(t *testing.T) {
	dir := writeProject(t, "experience:\n  assetId: 1000\n  active: false\nplaces:\n  start:\n    assetId: 2000\n")
	project, err := NewEvaluator(dir).LoadProject(context.Background(), "")
	require.NoError(t, err)

	list, err := BuildResources(project, dir)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), resourceByAddr(t, list, "experience/singleton").Inputs["assetId"])
	assert.Equal(t, uint64(2000), resourceByAddr(t, list, "place/start").Inputs["assetId"])
	assert.Equal(t, false, resourceByAddr(t, list, "experienceActivation/singleton").Inputs["isActive"])
}

func TestBuildResourcesValidation(t *testing.T) {
	dir := writeProject(t, `
experience:
  icon: assets/missing.png
  thumbnails: [assets/thumb-1.png, assets/thumb-1.png]
  products:
    blank:
      name: ""
      price: 1
places:
  arena: {}
`)
	project, err := NewEvaluator(dir).LoadProject(context.Background(), "")
	require.NoError(t, err)

	_, err = BuildResources(project, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `a place named "start" is required`)
	assert.Contains(t, err.Error(), "listed twice")
	assert.Contains(t, err.Error(), "experience.products.blank: name is required")

	project.Places["start"] = &ir.PlaceDecl{}
	project.Experience.Thumbnails = nil
	project.Experience.Products = nil
	_, err = BuildResources(project, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.png")
}
