package roblox

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/picklr-io/stagehand/internal/resources"
)

func (c *Client) CreatePlace(ctx context.Context, experienceID resources.AssetID) (*resources.CreatePlaceResponse, error) {
	req, err := jsonRequest(http.MethodPost, fmt.Sprintf("%s/universes/%d/places", c.urls.api, experienceID),
		map[string]any{"templatePlaceId": templatePlaceID})
	if err != nil {
		return nil, err
	}

	var out resources.CreatePlaceResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPlace(ctx context.Context, placeID resources.AssetID) (*resources.GetPlaceResponse, error) {
	req := request{method: http.MethodGet, url: fmt.Sprintf("%s/v2/places/%d", c.urls.develop, placeID)}

	var out resources.GetPlaceResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadPlace publishes a place file as the place's new saved version.
func (c *Client) UploadPlace(ctx context.Context, path string, placeID resources.AssetID) error {
	contentType, err := placeContentType(path)
	if err != nil {
		return err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read place file %s: %w", path, err)
	}

	req := request{
		method:      http.MethodPost,
		url:         c.urls.data + "/Data/Upload.ashx",
		query:       url.Values{"assetid": {strconv.FormatUint(placeID, 10)}},
		body:        body,
		contentType: contentType,
	}
	return c.do(ctx, req, nil)
}

func (c *Client) RemovePlaceFromExperience(ctx context.Context, experienceID, placeID resources.AssetID) error {
	req, err := jsonRequest(http.MethodPost, fmt.Sprintf("%s/universes/%d/removeplace", c.urls.api, experienceID),
		map[string]any{"placeId": placeID})
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) ConfigurePlace(ctx context.Context, placeID resources.AssetID, cfg *resources.PlaceConfigurationModel) error {
	req, err := jsonRequest(http.MethodPatch, fmt.Sprintf("%s/v2/places/%d", c.urls.develop, placeID), cfg)
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}
