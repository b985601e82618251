// Package client holds the consumer-facing half of the item API: an HTTP
// client for the remote store and a reconciliation engine that keeps an
// in-memory mirror consistent with it across optimistic mutations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/north-cloud/readlist/internal/domain"
)

// requestTimeout bounds each remote call.
const requestTimeout = 10 * time.Second

// RemoteError is a non-success response from the item API, carrying the
// server-provided message when one was present.
type RemoteError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("remote error %d", e.Status)
}

// APIClient talks to the readlist item API with a bearer credential.
type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewAPIClient creates a client for the API at baseURL authenticating with token.
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// List fetches all of the caller's items.
func (c *APIClient) List(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	if err := c.do(ctx, http.MethodGet, "/api/v1/items", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Save submits a URL and returns the created item.
func (c *APIClient) Save(ctx context.Context, rawURL string) (*domain.Item, error) {
	body := map[string]string{"url": rawURL}
	item := &domain.Item{}
	if err := c.do(ctx, http.MethodPost, "/api/v1/items", body, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateFlags patches the item's boolean flags and returns the updated item.
func (c *APIClient) UpdateFlags(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error) {
	item := &domain.Item{}
	if err := c.do(ctx, http.MethodPatch, "/api/v1/items/"+id, patch, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the item. Deleting an already-deleted id succeeds.
func (c *APIClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/items/"+id, nil, nil)
}

// do issues one request and decodes the JSON response into out when given.
// Non-success statuses are returned as *RemoteError.
func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeRemoteError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeRemoteError extracts the server's error message, if any.
func decodeRemoteError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	return &RemoteError{Status: resp.StatusCode, Message: payload.Error}
}
