package engine

import (
	"context"

	"github.com/picklr-io/stagehand/internal/resources"
)

// RetryingPlatform retries each platform call on its own when it fails
// transiently. Retrying single calls keeps multi-step operations such as
// a thumbnail replacement from repeating steps that already succeeded.
type RetryingPlatform struct {
	platform resources.Platform
	policy   *RetryPolicy
}

var _ resources.Platform = (*RetryingPlatform)(nil)

// NewRetryingPlatform wraps p. A nil policy means DefaultRetryPolicy.
func NewRetryingPlatform(p resources.Platform, policy *RetryPolicy) *RetryingPlatform {
	if policy == nil {
		policy = DefaultRetryPolicy()
	}
	return &RetryingPlatform{platform: p, policy: policy}
}

func (r *RetryingPlatform) call(ctx context.Context, fn func() error) error {
	return RetryWithBackoff(ctx, r.policy, fn, IsTransientError)
}

func retryValue[T any](ctx context.Context, r *RetryingPlatform, fn func() (T, error)) (T, error) {
	var out T
	err := r.call(ctx, func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

func (r *RetryingPlatform) CreateExperience(ctx context.Context) (*resources.CreateExperienceResponse, error) {
	return retryValue(ctx, r, func() (*resources.CreateExperienceResponse, error) {
		return r.platform.CreateExperience(ctx)
	})
}

func (r *RetryingPlatform) GetExperience(ctx context.Context, experienceID resources.AssetID) (*resources.GetExperienceResponse, error) {
	return retryValue(ctx, r, func() (*resources.GetExperienceResponse, error) {
		return r.platform.GetExperience(ctx, experienceID)
	})
}

func (r *RetryingPlatform) ConfigureExperience(ctx context.Context, experienceID resources.AssetID, cfg *resources.ExperienceConfigurationModel) error {
	return r.call(ctx, func() error {
		return r.platform.ConfigureExperience(ctx, experienceID, cfg)
	})
}

func (r *RetryingPlatform) SetExperienceActive(ctx context.Context, experienceID resources.AssetID, active bool) error {
	return r.call(ctx, func() error {
		return r.platform.SetExperienceActive(ctx, experienceID, active)
	})
}

func (r *RetryingPlatform) SetExperienceThumbnailOrder(ctx context.Context, experienceID resources.AssetID, thumbnailIDs []resources.AssetID) error {
	return r.call(ctx, func() error {
		return r.platform.SetExperienceThumbnailOrder(ctx, experienceID, thumbnailIDs)
	})
}

func (r *RetryingPlatform) DeleteExperienceThumbnail(ctx context.Context, experienceID, thumbnailID resources.AssetID) error {
	return r.call(ctx, func() error {
		return r.platform.DeleteExperienceThumbnail(ctx, experienceID, thumbnailID)
	})
}

func (r *RetryingPlatform) UploadIcon(ctx context.Context, experienceID resources.AssetID, path string) (*resources.UploadImageResponse, error) {
	return retryValue(ctx, r, func() (*resources.UploadImageResponse, error) {
		return r.platform.UploadIcon(ctx, experienceID, path)
	})
}

func (r *RetryingPlatform) UploadThumbnail(ctx context.Context, experienceID resources.AssetID, path string) (*resources.UploadImageResponse, error) {
	return retryValue(ctx, r, func() (*resources.UploadImageResponse, error) {
		return r.platform.UploadThumbnail(ctx, experienceID, path)
	})
}

func (r *RetryingPlatform) CreateDeveloperProductIcon(ctx context.Context, experienceID resources.AssetID, path string) (resources.AssetID, error) {
	return retryValue(ctx, r, func() (resources.AssetID, error) {
		return r.platform.CreateDeveloperProductIcon(ctx, experienceID, path)
	})
}

func (r *RetryingPlatform) CreateDeveloperProduct(ctx context.Context, experienceID resources.AssetID, product resources.DeveloperProduct) (*resources.CreateDeveloperProductResponse, error) {
	return retryValue(ctx, r, func() (*resources.CreateDeveloperProductResponse, error) {
		return r.platform.CreateDeveloperProduct(ctx, experienceID, product)
	})
}

func (r *RetryingPlatform) FindDeveloperProductByID(ctx context.Context, experienceID, productID resources.AssetID) (*resources.GetDeveloperProductResponse, error) {
	return retryValue(ctx, r, func() (*resources.GetDeveloperProductResponse, error) {
		return r.platform.FindDeveloperProductByID(ctx, experienceID, productID)
	})
}

func (r *RetryingPlatform) UpdateDeveloperProduct(ctx context.Context, experienceID, productAssetID resources.AssetID, product resources.DeveloperProduct) error {
	return r.call(ctx, func() error {
		return r.platform.UpdateDeveloperProduct(ctx, experienceID, productAssetID, product)
	})
}

func (r *RetryingPlatform) CreatePlace(ctx context.Context, experienceID resources.AssetID) (*resources.CreatePlaceResponse, error) {
	return retryValue(ctx, r, func() (*resources.CreatePlaceResponse, error) {
		return r.platform.CreatePlace(ctx, experienceID)
	})
}

func (r *RetryingPlatform) GetPlace(ctx context.Context, placeID resources.AssetID) (*resources.GetPlaceResponse, error) {
	return retryValue(ctx, r, func() (*resources.GetPlaceResponse, error) {
		return r.platform.GetPlace(ctx, placeID)
	})
}

func (r *RetryingPlatform) UploadPlace(ctx context.Context, path string, placeID resources.AssetID) error {
	return r.call(ctx, func() error {
		return r.platform.UploadPlace(ctx, path, placeID)
	})
}

func (r *RetryingPlatform) RemovePlaceFromExperience(ctx context.Context, experienceID, placeID resources.AssetID) error {
	return r.call(ctx, func() error {
		return r.platform.RemovePlaceFromExperience(ctx, experienceID, placeID)
	})
}

func (r *RetryingPlatform) ConfigurePlace(ctx context.Context, placeID resources.AssetID, cfg *resources.PlaceConfigurationModel) error {
	return r.call(ctx, func() error {
		return r.platform.ConfigurePlace(ctx, placeID, cfg)
	})
}
