package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/picklr-io/stagehand/internal/resources"
)

// Platform is a mock implementation of resources.Platform
type Platform struct {
	mock.Mock
}

var _ resources.Platform = (*Platform)(nil)

func (m *Platform) CreateExperience(ctx context.Context) (*resources.CreateExperienceResponse, error) {
	args := m.Called(ctx)
	if resp, ok := args.Get(0).(*resources.CreateExperienceResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) GetExperience(ctx context.Context, experienceID resources.AssetID) (*resources.GetExperienceResponse, error) {
	args := m.Called(ctx, experienceID)
	if resp, ok := args.Get(0).(*resources.GetExperienceResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) ConfigureExperience(ctx context.Context, experienceID resources.AssetID, cfg *resources.ExperienceConfigurationModel) error {
	args := m.Called(ctx, experienceID, cfg)
	return args.Error(0)
}

func (m *Platform) SetExperienceActive(ctx context.Context, experienceID resources.AssetID, active bool) error {
	args := m.Called(ctx, experienceID, active)
	return args.Error(0)
}

func (m *Platform) SetExperienceThumbnailOrder(ctx context.Context, experienceID resources.AssetID, thumbnailIDs []resources.AssetID) error {
	args := m.Called(ctx, experienceID, thumbnailIDs)
	return args.Error(0)
}

func (m *Platform) DeleteExperienceThumbnail(ctx context.Context, experienceID, thumbnailID resources.AssetID) error {
	args := m.Called(ctx, experienceID, thumbnailID)
	return args.Error(0)
}

func (m *Platform) UploadIcon(ctx context.Context, experienceID resources.AssetID, path string) (*resources.UploadImageResponse, error) {
	args := m.Called(ctx, experienceID, path)
	if resp, ok := args.Get(0).(*resources.UploadImageResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) UploadThumbnail(ctx context.Context, experienceID resources.AssetID, path string) (*resources.UploadImageResponse, error) {
	args := m.Called(ctx, experienceID, path)
	if resp, ok := args.Get(0).(*resources.UploadImageResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) CreateDeveloperProductIcon(ctx context.Context, experienceID resources.AssetID, path string) (resources.AssetID, error) {
	args := m.Called(ctx, experienceID, path)
	return args.Get(0).(resources.AssetID), args.Error(1)
}

func (m *Platform) CreateDeveloperProduct(ctx context.Context, experienceID resources.AssetID, product resources.DeveloperProduct) (*resources.CreateDeveloperProductResponse, error) {
	args := m.Called(ctx, experienceID, product)
	if resp, ok := args.Get(0).(*resources.CreateDeveloperProductResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) FindDeveloperProductByID(ctx context.Context, experienceID, productID resources.AssetID) (*resources.GetDeveloperProductResponse, error) {
	args := m.Called(ctx, experienceID, productID)
	if resp, ok := args.Get(0).(*resources.GetDeveloperProductResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) UpdateDeveloperProduct(ctx context.Context, experienceID, productAssetID resources.AssetID, product resources.DeveloperProduct) error {
	args := m.Called(ctx, experienceID, productAssetID, product)
	return args.Error(0)
}

func (m *Platform) CreatePlace(ctx context.Context, experienceID resources.AssetID) (*resources.CreatePlaceResponse, error) {
	args := m.Called(ctx, experienceID)
	if resp, ok := args.Get(0).(*resources.CreatePlaceResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) GetPlace(ctx context.Context, placeID resources.AssetID) (*resources.GetPlaceResponse, error) {
	args := m.Called(ctx, placeID)
	if resp, ok := args.Get(0).(*resources.GetPlaceResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Platform) UploadPlace(ctx context.Context, path string, placeID resources.AssetID) error {
	args := m.Called(ctx, path, placeID)
	return args.Error(0)
}

func (m *Platform) RemovePlaceFromExperience(ctx context.Context, experienceID, placeID resources.AssetID) error {
	args := m.Called(ctx, experienceID, placeID)
	return args.Error(0)
}

func (m *Platform) ConfigurePlace(ctx context.Context, placeID resources.AssetID, cfg *resources.PlaceConfigurationModel) error {
	args := m.Called(ctx, placeID, cfg)
	return args.Error(0)
}
