package resources

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/picklr-io/stagehand/internal/logging"
)

// Manager turns resource declarations into platform calls. It keeps no state
// between calls; outputs documents are persisted by the caller.
type Manager struct {
	platform    Platform
	projectPath string
	clock       Clock
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used to timestamp deprecated products.
func WithClock(c Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// NewManager returns a Manager that resolves relative file paths against projectPath.
func NewManager(platform Platform, projectPath string, opts ...Option) *Manager {
	m := &Manager{
		platform:    platform,
		projectPath: projectPath,
		clock:       SystemClock{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create provisions a resource and returns its outputs, or nil for types
// without an identity of their own.
func (m *Manager) Create(ctx context.Context, t ResourceType, inputs Document) (Document, error) {
	logging.Debug("creating resource", "type", t)

	switch t {
	case Experience:
		return m.createExperience(ctx, inputs)
	case ExperienceConfiguration:
		return m.createExperienceConfiguration(ctx, inputs)
	case ExperienceActivation:
		return m.createExperienceActivation(ctx, inputs)
	case ExperienceIcon:
		return m.createExperienceIcon(ctx, inputs)
	case ExperienceThumbnail:
		return m.createExperienceThumbnail(ctx, inputs)
	case ExperienceThumbnailOrder:
		return m.createExperienceThumbnailOrder(ctx, inputs)
	case ExperienceDeveloperProductIcon:
		return m.createDeveloperProductIcon(ctx, inputs)
	case ExperienceDeveloperProduct:
		return m.createDeveloperProduct(ctx, inputs)
	case Place:
		return m.createPlace(ctx, inputs)
	case PlaceFile:
		return m.createPlaceFile(ctx, inputs)
	case PlaceConfiguration:
		return m.createPlaceConfiguration(ctx, inputs)
	}
	panic(fmt.Sprintf("create not implemented for resource type: %s", t))
}

// Update brings an existing resource in line with new inputs.
func (m *Manager) Update(ctx context.Context, t ResourceType, inputs, outputs Document) (Document, error) {
	logging.Debug("updating resource", "type", t)

	switch t {
	case Experience,
		ExperienceConfiguration,
		ExperienceActivation,
		ExperienceIcon,
		ExperienceThumbnailOrder,
		ExperienceDeveloperProductIcon,
		// TODO: confirm with the platform owners that re-running create is
		// the right update for places whose assetId input changed.
		Place,
		PlaceFile,
		PlaceConfiguration:
		return m.Create(ctx, t, inputs)
	case ExperienceThumbnail:
		// Thumbnails cannot be edited in place.
		if err := m.Delete(ctx, t, inputs, outputs); err != nil {
			return nil, err
		}
		return m.Create(ctx, t, inputs)
	case ExperienceDeveloperProduct:
		return m.updateDeveloperProduct(ctx, inputs, outputs)
	}
	panic(fmt.Sprintf("update not implemented for resource type: %s", t))
}

// Delete tears down a resource, or does whatever the platform allows in its place.
func (m *Manager) Delete(ctx context.Context, t ResourceType, inputs, outputs Document) error {
	logging.Debug("deleting resource", "type", t)

	switch t {
	case Experience:
		return m.deleteExperience(ctx, outputs)
	case ExperienceConfiguration,
		ExperienceActivation,
		ExperienceThumbnailOrder,
		ExperienceDeveloperProductIcon,
		PlaceFile,
		PlaceConfiguration:
		return nil
	case ExperienceIcon:
		return m.deleteExperienceIcon(inputs)
	case ExperienceThumbnail:
		return m.deleteExperienceThumbnail(ctx, inputs, outputs)
	case ExperienceDeveloperProduct:
		return m.deleteDeveloperProduct(ctx, inputs, outputs)
	case Place:
		return m.deletePlace(ctx, inputs, outputs)
	}
	panic(fmt.Sprintf("delete not implemented for resource type: %s", t))
}

func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.projectPath, path)
}
