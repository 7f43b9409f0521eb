package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picklr-io/stagehand/internal/config"
)

func TestWorkspaceKey(t *testing.T) {
	assert.Equal(t, "stagehand/state.yml", WorkspaceKey("stagehand/state.yml", ""))
	assert.Equal(t, "stagehand/state.yml", WorkspaceKey("stagehand/state.yml", DefaultWorkspace))
	assert.Equal(t, "stagehand/state.staging.yml", WorkspaceKey("stagehand/state.yml", "staging"))
	assert.Equal(t, filepath.Join("dir", "state.prod.yml"), StatePath("dir", "prod"))
}

func TestWorkspaces_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	ws := NewWorkspaces(dir)
	ctx := context.Background()

	assert.Equal(t, DefaultWorkspace, ws.Current())

	require.NoError(t, ws.Create(ctx, "staging"))
	assert.Equal(t, "staging", ws.Current())
	assert.FileExists(t, StatePath(dir, "staging"))
	assert.ErrorIs(t, ws.Create(ctx, "staging"), ErrWorkspaceExists)
	assert.ErrorIs(t, ws.Create(ctx, DefaultWorkspace), ErrWorkspaceExists)

	list, err := ws.List()
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultWorkspace, "staging"}, list)

	assert.Error(t, ws.Delete("staging"))
	require.NoError(t, ws.Select(DefaultWorkspace))
	require.NoError(t, ws.Delete("staging"))
	assert.ErrorIs(t, ws.Delete("staging"), ErrWorkspaceNotFound)
	assert.ErrorIs(t, ws.Select("staging"), ErrWorkspaceNotFound)
	assert.Error(t, ws.Delete(DefaultWorkspace))
}

func TestWorkspaces_ListMissingDir(t *testing.T) {
	list, err := NewWorkspaces(filepath.Join(t.TempDir(), "absent")).List()
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultWorkspace}, list)
}

func TestNewBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := NewBackend(ctx, config.StateConfig{Backend: BackendLocal, Dir: dir}, "prod")
	require.NoError(t, err)
	require.IsType(t, &Manager{}, b)
	assert.Equal(t, StatePath(dir, "prod"), b.(*Manager).Path())

	_, err = NewBackend(ctx, config.StateConfig{Backend: "gcs"}, DefaultWorkspace)
	assert.ErrorContains(t, err, "unknown backend type")

	_, err = NewBackend(ctx, config.StateConfig{Backend: BackendS3}, DefaultWorkspace)
	assert.ErrorContains(t, err, "bucket")

	_, err = NewBackend(ctx, config.StateConfig{Backend: BackendMinio, Bucket: "b"}, DefaultWorkspace)
	assert.ErrorContains(t, err, "endpoint")
}
