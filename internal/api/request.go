package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/arzlive/arzlive/internal/version"
)

// ErrBodyTooLarge is returned when a response exceeds the configured cap.
var ErrBodyTooLarge = errors.New("response body too large")

// APIError is a non-2xx response from the upstream API.
type APIError struct {
	StatusCode int
	Path       string
	Body       []byte // leading bytes of the response
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream %s: %d %s", e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsRetryable reports whether another attempt could succeed.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

const errorBodySnippet = 512

// fetch performs one GET of path with the API key attached.
func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	q := url.Values{}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "arzlive/"+version.Version)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodySnippet))
		return nil, &APIError{StatusCode: resp.StatusCode, Path: path, Body: snippet}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%s: %w", path, ErrBodyTooLarge)
	}
	return body, nil
}

// retryable reports whether err is worth another attempt: server-side
// statuses and transport failures, but never a cancelled context.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	return !errors.Is(err, ErrBodyTooLarge)
}

// fetchWithRetry wraps fetch with jittered exponential backoff.
func (c *Client) fetchWithRetry(ctx context.Context, path string) ([]byte, error) {
	wait := c.backoff
	var err error

	for attempt := 0; ; attempt++ {
		var body []byte
		body, err = c.fetch(ctx, path)
		if err == nil {
			return body, nil
		}
		if attempt >= c.retries || !retryable(ctx, err) {
			break
		}

		// Jitter: wait * [0.5, 1.5)
		d := wait/2 + time.Duration(rand.Int64N(int64(wait)))
		c.logger.Debug("retrying feed request", "path", path, "attempt", attempt+1, "wait", d, "err", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}
		wait *= 2
	}

	if c.retries > 0 && retryable(ctx, err) {
		return nil, fmt.Errorf("giving up after %d attempts: %w", c.retries+1, err)
	}
	return nil, err
}
