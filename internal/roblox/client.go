// Package roblox is an HTTP client for the platform endpoints stagehand
// drives. Client implements resources.Platform.
package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/picklr-io/stagehand/internal/config"
	"github.com/picklr-io/stagehand/internal/logging"
	"github.com/picklr-io/stagehand/internal/resources"
)

const (
	csrfHeader = "X-CSRF-TOKEN"
	cookieName = ".ROBLOSECURITY"
	userAgent  = "stagehand"
)

// ErrMissingCookie is returned when no session cookie is configured.
var ErrMissingCookie = errors.New("no session cookie configured: set STAGEHAND_ROBLOX_COOKIE or ROBLOSECURITY")

var _ resources.Platform = (*Client)(nil)

// Client talks to the platform web APIs with cookie authentication.
type Client struct {
	http   *http.Client
	cookie string
	urls   baseURLs

	mu        sync.Mutex
	csrfToken string
}

type baseURLs struct {
	api     string
	develop string
	publish string
	data    string
}

// NewClient creates a client from configuration. It fails without a cookie.
func NewClient(cfg config.RobloxConfig) (*Client, error) {
	if cfg.Cookie == "" {
		return nil, ErrMissingCookie
	}
	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		cookie: cfg.Cookie,
		urls: baseURLs{
			api:     strings.TrimSuffix(cfg.APIBaseURL, "/"),
			develop: strings.TrimSuffix(cfg.DevelopBaseURL, "/"),
			publish: strings.TrimSuffix(cfg.PublishBaseURL, "/"),
			data:    strings.TrimSuffix(cfg.DataBaseURL, "/"),
		},
	}, nil
}

// request describes one call. The body is kept as bytes so the call can be
// replayed after a CSRF challenge.
type request struct {
	method      string
	url         string
	query       url.Values
	body        []byte
	contentType string
}

func jsonRequest(method, endpoint string, payload any) (request, error) {
	req := request{method: method, url: endpoint}
	if payload == nil {
		return req, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return req, fmt.Errorf("failed to encode request body: %w", err)
	}
	req.body = body
	req.contentType = "application/json"
	return req, nil
}

// do sends req and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden && resp.Header.Get(csrfHeader) != "" {
		c.setCSRFToken(resp.Header.Get(csrfHeader))
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		logging.Debug("refreshed csrf token, retrying", "method", req.method, "url", req.url)
		resp, err = c.send(ctx, req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.url, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	endpoint := req.url
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.AddCookie(&http.Cookie{Name: cookieName, Value: c.cookie})
	if token := c.getCSRFToken(); token != "" {
		httpReq.Header.Set(csrfHeader, token)
	}

	logging.Debug("platform request", "method", req.method, "url", req.url)
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.url, err)
	}
	return resp, nil
}

func (c *Client) getCSRFToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.csrfToken
}

func (c *Client) setCSRFToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.csrfToken = token
}
