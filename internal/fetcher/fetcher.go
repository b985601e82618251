// Package fetcher performs the bounded-time page fetch used for preview
// metadata extraction.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrFetchFailed wraps every fetch failure (network error, timeout,
// non-success status). Callers absorb it and fall back to empty metadata.
var ErrFetchFailed = errors.New("fetch failed")

// Config configures the fetcher.
type Config struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// Fetcher performs single-attempt HTTP GETs with a browser user agent.
// Redirects are followed by the underlying client; there are no retries.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// New creates a Fetcher. The timeout bounds the whole request including
// body read; exceeding it cancels only that in-flight request.
func New(cfg Config) *Fetcher {
	return &Fetcher{
		client:       &http.Client{Timeout: cfg.Timeout},
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// Fetch GETs the URL and returns the response body as text.
// All failure modes are reported as errors wrapping ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrFetchFailed, err)
	}

	return string(body), nil
}
