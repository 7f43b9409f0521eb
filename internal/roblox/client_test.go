package roblox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picklr-io/stagehand/internal/config"
	"github.com/picklr-io/stagehand/internal/resources"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.RobloxConfig{
		Cookie:         "session",
		APIBaseURL:     srv.URL + "/api",
		DevelopBaseURL: srv.URL + "/develop",
		PublishBaseURL: srv.URL + "/publish",
		DataBaseURL:    srv.URL + "/data",
		Timeout:        5 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewClient_RequiresCookie(t *testing.T) {
	_, err := NewClient(config.RobloxConfig{})
	assert.ErrorIs(t, err, ErrMissingCookie)
}

func TestClient_CreateExperience(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/universes/create", r.URL.Path)

		cookie, err := r.Cookie(cookieName)
		require.NoError(t, err)
		assert.Equal(t, "session", cookie.Value)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, templatePlaceID, body["templatePlaceIdToUse"])

		w.Write([]byte(`{"universeId": 100, "rootPlaceId": 200}`))
	}))

	out, err := client.CreateExperience(context.Background())
	require.NoError(t, err)
	assert.Equal(t, resources.AssetID(100), out.UniverseID)
	assert.Equal(t, resources.AssetID(200), out.RootPlaceID)
}

func TestClient_RetriesWithCSRFToken(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get(csrfHeader) != "token-1" {
			w.Header().Set(csrfHeader, "token-1")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.ContentLength > 0 {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, true, body["isArchived"])
		}
		w.WriteHeader(http.StatusOK)
	}))

	archived := true
	err := client.ConfigureExperience(context.Background(), 100, &resources.ExperienceConfigurationModel{IsArchived: &archived})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	// The token is reused afterwards.
	require.NoError(t, client.SetExperienceActive(context.Background(), 100, true))
	assert.Equal(t, 3, calls)
}

func TestClient_APIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"code":1,"message":"Invalid genre"}]}`))
	}))

	err := client.ConfigureExperience(context.Background(), 1, &resources.ExperienceConfigurationModel{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid genre", apiErr.Message)
	assert.False(t, apiErr.Temporary())
}

func TestAPIError_Temporary(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: http.StatusTooManyRequests}).Temporary())
	assert.True(t, (&APIError{StatusCode: http.StatusBadGateway}).Temporary())
	assert.False(t, (&APIError{StatusCode: http.StatusNotFound}).Temporary())
	assert.Equal(t, "platform request failed with status 404", (&APIError{StatusCode: 404}).Error())
}

func TestClient_SetExperienceActive(t *testing.T) {
	var paths []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
	}))

	ctx := context.Background()
	require.NoError(t, client.SetExperienceActive(ctx, 5, true))
	require.NoError(t, client.SetExperienceActive(ctx, 5, false))
	assert.Equal(t, []string{"/develop/v1/universes/5/activate", "/develop/v1/universes/5/deactivate"}, paths)
}

func TestClient_UploadThumbnail(t *testing.T) {
	path := writeFile(t, "thumb.png", "png-bytes")
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/publish/v1/games/7/thumbnail/image", r.URL.Path)

		file, header, err := r.FormFile("request.files")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "thumb.png", header.Filename)
		assert.Equal(t, "png-bytes", string(data))

		w.Write([]byte(`{"targetId": 55}`))
	}))

	out, err := client.UploadThumbnail(context.Background(), 7, path)
	require.NoError(t, err)
	assert.Equal(t, resources.AssetID(55), out.TargetID)
}

func TestClient_UploadIconMissingFile(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	_, err := client.UploadIcon(context.Background(), 7, filepath.Join(t.TempDir(), "absent.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClient_ThumbnailOrderAndDelete(t *testing.T) {
	var got []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = append(got, r.Method+" "+r.URL.Path+" "+strings.TrimSpace(string(body)))
	}))

	ctx := context.Background()
	require.NoError(t, client.SetExperienceThumbnailOrder(ctx, 1, []resources.AssetID{3, 2}))
	require.NoError(t, client.SetExperienceThumbnailOrder(ctx, 1, nil))
	require.NoError(t, client.DeleteExperienceThumbnail(ctx, 1, 3))
	assert.Equal(t, []string{
		`POST /develop/v1/universes/1/thumbnails/order {"thumbnailIds":[3,2]}`,
		`POST /develop/v1/universes/1/thumbnails/order {"thumbnailIds":[]}`,
		"DELETE /develop/v1/universes/1/thumbnails/3 ",
	}, got)
}

func TestClient_DeleteExperienceThumbnailAlreadyGone(t *testing.T) {
	status := http.StatusNotFound
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	ctx := context.Background()
	require.NoError(t, client.DeleteExperienceThumbnail(ctx, 1, 3))

	status = http.StatusBadRequest
	var apiErr *APIError
	require.ErrorAs(t, client.DeleteExperienceThumbnail(ctx, 1, 3), &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestClient_CreateDeveloperProduct(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/develop/v1/universes/1/developerproducts", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Gems", q.Get("name"))
		assert.Equal(t, "50", q.Get("priceInRobux"))
		assert.Equal(t, "9", q.Get("iconImageAssetId"))
		w.Write([]byte(`{"id": 11, "shopId": 12}`))
	}))

	icon := resources.AssetID(9)
	out, err := client.CreateDeveloperProduct(context.Background(), 1, resources.DeveloperProduct{
		Name: "Gems", Price: 50, Description: "shiny", IconAssetID: &icon,
	})
	require.NoError(t, err)
	assert.Equal(t, resources.AssetID(11), out.ID)
	assert.Equal(t, resources.AssetID(12), out.ShopID)
}

func TestClient_FindDeveloperProductByID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/developerproducts/list", r.URL.Path)
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`{"DeveloperProducts":[{"ProductId":1,"DeveloperProductId":10}],"FinalPage":false}`))
		case "2":
			w.Write([]byte(`{"DeveloperProducts":[{"ProductId":2,"DeveloperProductId":20}],"FinalPage":true}`))
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
		}
	}))

	ctx := context.Background()
	found, err := client.FindDeveloperProductByID(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, resources.AssetID(2), found.ProductID)

	_, err = client.FindDeveloperProductByID(ctx, 1, 30)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestClient_UpdateDeveloperProduct(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/develop/v1/universes/1/developerproducts/2/update", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Gems", body["Name"])
		assert.EqualValues(t, 75, body["PriceInRobux"])
		assert.NotContains(t, body, "IconImageAssetId")
	}))

	err := client.UpdateDeveloperProduct(context.Background(), 1, 2, resources.DeveloperProduct{Name: "Gems", Price: 75})
	require.NoError(t, err)
}

func TestClient_CreateDeveloperProductIcon(t *testing.T) {
	path := writeFile(t, "gem.png", "png")
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/data/upload/json", r.URL.Path)
		assert.Equal(t, "13", r.URL.Query().Get("assetTypeId"))
		w.Write([]byte(`{"Success": true, "AssetId": 321}`))
	}))

	id, err := client.CreateDeveloperProductIcon(context.Background(), 1, path)
	require.NoError(t, err)
	assert.Equal(t, resources.AssetID(321), id)
}

func TestClient_UploadPlace(t *testing.T) {
	path := writeFile(t, "start.rbxlx", "<roblox/>")
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/Data/Upload.ashx", r.URL.Path)
		assert.Equal(t, "200", r.URL.Query().Get("assetid"))
		assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "<roblox/>", string(body))
	}))

	require.NoError(t, client.UploadPlace(context.Background(), path, 200))
}

func TestClient_UploadPlaceRejectsUnknownExtension(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	err := client.UploadPlace(context.Background(), writeFile(t, "start.txt", "x"), 1)
	assert.ErrorContains(t, err, "unsupported place file")
}

func TestClient_Places(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "POST /api/universes/1/places":
			w.Write([]byte(`{"PlaceId": 300}`))
		case "GET /develop/v2/places/300":
			w.Write([]byte(`{"currentSavedVersion": 4}`))
		case "PATCH /develop/v2/places/300":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]any{"name": "Arena"}, body)
		case "POST /api/universes/1/removeplace":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.EqualValues(t, 300, body["placeId"])
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	ctx := context.Background()
	created, err := client.CreatePlace(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, resources.AssetID(300), created.PlaceID)

	place, err := client.GetPlace(ctx, 300)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), place.CurrentSavedVersion)

	name := "Arena"
	require.NoError(t, client.ConfigurePlace(ctx, 300, &resources.PlaceConfigurationModel{Name: &name}))
	require.NoError(t, client.RemovePlaceFromExperience(ctx, 1, 300))
}

func TestClient_ContextCancelled(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.GetExperience(ctx, 1)
	assert.True(t, errors.Is(err, context.Canceled))
}
