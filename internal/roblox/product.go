package roblox

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/picklr-io/stagehand/internal/resources"
)

// imageAssetType is the asset type id the upload endpoint uses for images.
const imageAssetType = 13

type uploadAssetResponse struct {
	Success bool              `json:"Success"`
	AssetID resources.AssetID `json:"AssetId"`
	Message string            `json:"Message"`
}

func (c *Client) CreateDeveloperProductIcon(ctx context.Context, experienceID resources.AssetID, path string) (resources.AssetID, error) {
	body, contentType, err := multipartFile("file", path)
	if err != nil {
		return 0, err
	}

	req := request{
		method: http.MethodPost,
		url:    c.urls.data + "/data/upload/json",
		query: url.Values{
			"assetTypeId": {strconv.Itoa(imageAssetType)},
			"name":        {filepath.Base(path)},
			"description": {"developer product icon"},
			"groupId":     {""},
		},
		body:        body,
		contentType: contentType,
	}

	var out uploadAssetResponse
	if err := c.do(ctx, req, &out); err != nil {
		return 0, err
	}
	if !out.Success {
		return 0, &APIError{StatusCode: http.StatusOK, Message: out.Message}
	}
	return out.AssetID, nil
}

func (c *Client) CreateDeveloperProduct(ctx context.Context, experienceID resources.AssetID, product resources.DeveloperProduct) (*resources.CreateDeveloperProductResponse, error) {
	query := url.Values{
		"name":         {product.Name},
		"description":  {product.Description},
		"priceInRobux": {strconv.FormatUint(uint64(product.Price), 10)},
	}
	if product.IconAssetID != nil {
		query.Set("iconImageAssetId", strconv.FormatUint(*product.IconAssetID, 10))
	}

	req := request{
		method: http.MethodPost,
		url:    fmt.Sprintf("%s/v1/universes/%d/developerproducts", c.urls.develop, experienceID),
		query:  query,
	}

	var out resources.CreateDeveloperProductResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type listDeveloperProductsResponse struct {
	DeveloperProducts []resources.GetDeveloperProductResponse `json:"DeveloperProducts"`
	FinalPage         bool                                    `json:"FinalPage"`
}

// FindDeveloperProductByID pages through the experience's products looking
// for the one with the given developer product id.
func (c *Client) FindDeveloperProductByID(ctx context.Context, experienceID, productID resources.AssetID) (*resources.GetDeveloperProductResponse, error) {
	for page := 1; ; page++ {
		req := request{
			method: http.MethodGet,
			url:    c.urls.api + "/developerproducts/list",
			query: url.Values{
				"universeId": {strconv.FormatUint(experienceID, 10)},
				"page":       {strconv.Itoa(page)},
			},
		}

		var out listDeveloperProductsResponse
		if err := c.do(ctx, req, &out); err != nil {
			return nil, err
		}
		for i := range out.DeveloperProducts {
			if out.DeveloperProducts[i].DeveloperProductID == productID {
				return &out.DeveloperProducts[i], nil
			}
		}
		if out.FinalPage || len(out.DeveloperProducts) == 0 {
			return nil, fmt.Errorf("%w: %d in experience %d", ErrProductNotFound, productID, experienceID)
		}
	}
}

func (c *Client) UpdateDeveloperProduct(ctx context.Context, experienceID, productAssetID resources.AssetID, product resources.DeveloperProduct) error {
	payload := map[string]any{
		"Name":         product.Name,
		"Description":  product.Description,
		"PriceInRobux": product.Price,
	}
	if product.IconAssetID != nil {
		payload["IconImageAssetId"] = *product.IconAssetID
	}

	req, err := jsonRequest(http.MethodPost,
		fmt.Sprintf("%s/v1/universes/%d/developerproducts/%d/update", c.urls.develop, experienceID, productAssetID), payload)
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}
