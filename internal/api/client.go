package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultMaxBodySize caps how much of a feed response is read.
const DefaultMaxBodySize = 4 << 20

// Client fetches feeds from the upstream market-data API. The API key is
// sent as the "key" query parameter on every request.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger

	retries     int
	backoff     time.Duration
	maxBodySize int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a feed client. Retries are off by default since the
// next poll cycle fetches again anyway.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		http:        &http.Client{Timeout: 15 * time.Second},
		logger:      slog.Default(),
		backoff:     time.Second,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTimeout sets the per-request timeout. Zero leaves the default.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetries retries transient failures up to n extra times, doubling the
// wait from backoff on each attempt.
func WithRetries(n int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		if n < 0 {
			n = 0
		}
		c.retries = n
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMaxBodySize caps the bytes read from one response.
func WithMaxBodySize(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}
