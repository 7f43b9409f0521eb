package roblox

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrProductNotFound is returned when a developer product is missing from
// the experience's product list.
var ErrProductNotFound = errors.New("developer product not found")

// APIError is a non-2xx response from the platform.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("platform request failed with status %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying the request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// errorBody covers both error shapes the platform returns.
type errorBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}

	messages := make([]string, 0, len(body.Errors)+1)
	if body.Message != "" {
		messages = append(messages, body.Message)
	}
	for _, e := range body.Errors {
		if e.Message != "" {
			messages = append(messages, e.Message)
		}
	}
	apiErr.Message = strings.Join(messages, "; ")
	return apiErr
}
