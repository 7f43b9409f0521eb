package eval

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/picklr-io/stagehand/internal/ir"
	"github.com/picklr-io/stagehand/internal/resources"
)

// BuildResources expands a project into the resources that deploy it.
// Outputs flow into inputs through ptr:// references that the engine
// resolves at apply time. Every problem found is reported at once.
func BuildResources(project *ir.Project, projectDir string) ([]*ir.Resource, error) {
	b := &builder{projectDir: projectDir}
	b.validate(project)
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	b.experience(project.Experience)
	for _, key := range sortedKeys(project.Places) {
		b.place(key, project.Places[key])
	}

	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return b.out, nil
}

type builder struct {
	projectDir string
	out        []*ir.Resource
	errs       []error
}

func (b *builder) validate(project *ir.Project) {
	if _, ok := project.Places[ir.StartPlaceName]; !ok {
		b.errs = append(b.errs, fmt.Errorf("places: a place named %q is required", ir.StartPlaceName))
	}
	for key, place := range project.Places {
		if place == nil {
			b.errs = append(b.errs, fmt.Errorf("places.%s: declaration is empty", key))
		}
	}

	seen := make(map[string]bool)
	for _, thumb := range project.Experience.Thumbnails {
		if seen[thumb] {
			b.errs = append(b.errs, fmt.Errorf("experience.thumbnails: %s is listed twice", thumb))
		}
		seen[thumb] = true
	}

	for key, product := range project.Experience.Products {
		switch {
		case product == nil:
			b.errs = append(b.errs, fmt.Errorf("experience.products.%s: declaration is empty", key))
		case strings.TrimSpace(product.Name) == "":
			b.errs = append(b.errs, fmt.Errorf("experience.products.%s: name is required", key))
		}
	}
}

func (b *builder) add(typ resources.ResourceType, name string, inputs map[string]any) {
	b.out = append(b.out, &ir.Resource{
		Type:      string(typ),
		Name:      name,
		Inputs:    inputs,
		DependsOn: referencedAddresses(inputs),
	})
}

func (b *builder) fileInputs(experienceRef, path string) map[string]any {
	return map[string]any{
		"experienceId": experienceRef,
		"filePath":     path,
		"fileHash":     b.hash(path),
	}
}

func (b *builder) hash(path string) string {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(b.projectDir, path)
	}
	sum, err := FileHash(full)
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return sum
}

func (b *builder) experience(decl ir.ExperienceDecl) {
	const singleton = resources.SingletonResourceName
	experienceRef := ir.Ref(string(resources.Experience), singleton, "assetId")

	inputs := map[string]any{}
	if decl.AssetID != nil {
		inputs["assetId"] = *decl.AssetID
	}
	b.add(resources.Experience, singleton, inputs)

	if decl.Configuration != nil {
		b.add(resources.ExperienceConfiguration, singleton, map[string]any{
			"experienceId":  experienceRef,
			"configuration": b.document("experience.configuration", decl.Configuration),
		})
	}

	active := true
	if decl.Active != nil {
		active = *decl.Active
	}
	b.add(resources.ExperienceActivation, singleton, map[string]any{
		"experienceId": experienceRef,
		"isActive":     active,
	})

	if decl.Icon != "" {
		b.add(resources.ExperienceIcon, singleton, b.fileInputs(experienceRef, decl.Icon))
	}

	if len(decl.Thumbnails) > 0 {
		order := make([]any, 0, len(decl.Thumbnails))
		for _, thumb := range decl.Thumbnails {
			b.add(resources.ExperienceThumbnail, thumb, b.fileInputs(experienceRef, thumb))
			order = append(order, ir.Ref(string(resources.ExperienceThumbnail), thumb, "assetId"))
		}
		b.add(resources.ExperienceThumbnailOrder, singleton, map[string]any{
			"experienceId": experienceRef,
			"assetIds":     order,
		})
	}

	for _, key := range sortedKeys(decl.Products) {
		product := decl.Products[key]
		inputs := map[string]any{
			"experienceId": experienceRef,
			"name":         product.Name,
			"price":        product.Price,
			"description":  product.Description,
		}
		if product.Icon != "" {
			b.add(resources.ExperienceDeveloperProductIcon, key, b.fileInputs(experienceRef, product.Icon))
			inputs["iconAssetId"] = ir.Ref(string(resources.ExperienceDeveloperProductIcon), key, "assetId")
		}
		b.add(resources.ExperienceDeveloperProduct, key, inputs)
	}
}

func (b *builder) place(key string, decl *ir.PlaceDecl) {
	const singleton = resources.SingletonResourceName
	placeRef := ir.Ref(string(resources.Place), key, "assetId")

	inputs := map[string]any{
		"experienceId": ir.Ref(string(resources.Experience), singleton, "assetId"),
		"startPlaceId": ir.Ref(string(resources.Experience), singleton, "startPlaceId"),
		"isStart":      key == ir.StartPlaceName,
	}
	if decl.AssetID != nil {
		inputs["assetId"] = *decl.AssetID
	}
	b.add(resources.Place, key, inputs)

	if decl.File != "" {
		b.add(resources.PlaceFile, key, map[string]any{
			"assetId":  placeRef,
			"filePath": decl.File,
			"fileHash": b.hash(decl.File),
		})
	}

	if decl.Configuration != nil {
		b.add(resources.PlaceConfiguration, key, map[string]any{
			"assetId":       placeRef,
			"configuration": b.document(fmt.Sprintf("places.%s.configuration", key), decl.Configuration),
		})
	}
}

// document converts a typed configuration into the generic map form stored in inputs.
func (b *builder) document(field string, v any) map[string]any {
	raw, err := yaml.Marshal(v)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("%s: %w", field, err))
		return nil
	}
	doc := map[string]any{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		b.errs = append(b.errs, fmt.Errorf("%s: %w", field, err))
		return nil
	}
	return doc
}

// FileHash returns the hex sha256 of a file's contents.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func referencedAddresses(v any) []string {
	var addrs []string
	var walk func(any)
	walk = func(v any) {
		switch val := v.(type) {
		case string:
			if addr, _, ok := ir.ParseRef(val); ok && !slices.Contains(addrs, addr) {
				addrs = append(addrs, addr)
			}
		case map[string]any:
			for _, item := range val {
				walk(item)
			}
		case []any:
			for _, item := range val {
				walk(item)
			}
		}
	}
	walk(v)
	sort.Strings(addrs)
	return addrs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
