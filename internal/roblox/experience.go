package roblox

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/picklr-io/stagehand/internal/logging"
	"github.com/picklr-io/stagehand/internal/resources"
)

// templatePlaceID is the baseplate template new experiences and places start from.
const templatePlaceID = 95206881

func (c *Client) CreateExperience(ctx context.Context) (*resources.CreateExperienceResponse, error) {
	req, err := jsonRequest(http.MethodPost, c.urls.api+"/universes/create",
		map[string]any{"templatePlaceIdToUse": templatePlaceID})
	if err != nil {
		return nil, err
	}

	var out resources.CreateExperienceResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetExperience(ctx context.Context, experienceID resources.AssetID) (*resources.GetExperienceResponse, error) {
	req := request{method: http.MethodGet, url: fmt.Sprintf("%s/v1/universes/%d", c.urls.develop, experienceID)}

	var out resources.GetExperienceResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ConfigureExperience(ctx context.Context, experienceID resources.AssetID, cfg *resources.ExperienceConfigurationModel) error {
	req, err := jsonRequest(http.MethodPatch, fmt.Sprintf("%s/v2/universes/%d/configuration", c.urls.develop, experienceID), cfg)
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) SetExperienceActive(ctx context.Context, experienceID resources.AssetID, active bool) error {
	action := "deactivate"
	if active {
		action = "activate"
	}
	req := request{method: http.MethodPost, url: fmt.Sprintf("%s/v1/universes/%d/%s", c.urls.develop, experienceID, action)}
	return c.do(ctx, req, nil)
}

func (c *Client) UploadIcon(ctx context.Context, experienceID resources.AssetID, path string) (*resources.UploadImageResponse, error) {
	return c.uploadImage(ctx, fmt.Sprintf("%s/v1/games/%d/icon", c.urls.publish, experienceID), path)
}

func (c *Client) UploadThumbnail(ctx context.Context, experienceID resources.AssetID, path string) (*resources.UploadImageResponse, error) {
	return c.uploadImage(ctx, fmt.Sprintf("%s/v1/games/%d/thumbnail/image", c.urls.publish, experienceID), path)
}

func (c *Client) uploadImage(ctx context.Context, endpoint, path string) (*resources.UploadImageResponse, error) {
	body, contentType, err := multipartFile("request.files", path)
	if err != nil {
		return nil, err
	}

	req := request{method: http.MethodPost, url: endpoint, body: body, contentType: contentType}
	var out resources.UploadImageResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetExperienceThumbnailOrder(ctx context.Context, experienceID resources.AssetID, thumbnailIDs []resources.AssetID) error {
	if thumbnailIDs == nil {
		thumbnailIDs = []resources.AssetID{}
	}
	req, err := jsonRequest(http.MethodPost, fmt.Sprintf("%s/v1/universes/%d/thumbnails/order", c.urls.develop, experienceID),
		map[string]any{"thumbnailIds": thumbnailIDs})
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) DeleteExperienceThumbnail(ctx context.Context, experienceID, thumbnailID resources.AssetID) error {
	req := request{
		method: http.MethodDelete,
		url:    fmt.Sprintf("%s/v1/universes/%d/thumbnails/%d", c.urls.develop, experienceID, thumbnailID),
	}
	err := c.do(ctx, req, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		logging.Debug("thumbnail already deleted", "experience_id", experienceID, "thumbnail_id", thumbnailID)
		return nil
	}
	return err
}
