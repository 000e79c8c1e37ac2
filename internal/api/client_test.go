package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := NewClient("https://feed.example.com/Api/Market/", "k")

		if c.baseURL != "https://feed.example.com/Api/Market" {
			t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
		}
		if c.http.Timeout != 15*time.Second {
			t.Errorf("Timeout = %v, want 15s", c.http.Timeout)
		}
		if c.retries != 0 {
			t.Errorf("retries = %d, want 0", c.retries)
		}
		if c.maxBodySize != DefaultMaxBodySize {
			t.Errorf("maxBodySize = %d, want %d", c.maxBodySize, DefaultMaxBodySize)
		}
	})

	t.Run("options", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		hc := &http.Client{Timeout: 3 * time.Second}
		c := NewClient("https://feed.example.com", "",
			WithHTTPClient(hc),
			WithTimeout(5*time.Second),
			WithRetries(2, 20*time.Millisecond),
			WithLogger(logger),
			WithMaxBodySize(64),
		)

		if c.http != hc || hc.Timeout != 5*time.Second {
			t.Errorf("http client = %+v, want custom client with 5s timeout", c.http)
		}
		if c.retries != 2 || c.backoff != 20*time.Millisecond {
			t.Errorf("retries = %d backoff = %v", c.retries, c.backoff)
		}
		if c.logger != logger {
			t.Error("logger not set")
		}
		if c.maxBodySize != 64 {
			t.Errorf("maxBodySize = %d, want 64", c.maxBodySize)
		}
	})

	t.Run("zero values keep defaults", func(t *testing.T) {
		c := NewClient("https://feed.example.com", "",
			WithTimeout(0), WithRetries(-1, 0), WithLogger(nil), WithHTTPClient(nil), WithMaxBodySize(0))
		if c.http == nil || c.http.Timeout != 15*time.Second {
			t.Errorf("http client = %+v", c.http)
		}
		if c.retries != 0 || c.backoff != time.Second {
			t.Errorf("retries = %d backoff = %v", c.retries, c.backoff)
		}
		if c.logger == nil || c.maxBodySize != DefaultMaxBodySize {
			t.Error("defaults overwritten")
		}
	})
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 403, Path: "/Gold_Currency.php"}
	if got, want := err.Error(), "upstream /Gold_Currency.php: 403 Forbidden"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	tests := []struct {
		code int
		want bool
	}{
		{500, true},
		{503, true},
		{429, true},
		{400, false},
		{401, false},
		{404, false},
	}
	for _, tt := range tests {
		if got := (&APIError{StatusCode: tt.code}).IsRetryable(); got != tt.want {
			t.Errorf("IsRetryable(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestFetch(t *testing.T) {
	t.Run("headers and key", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Accept") != "application/json" {
				t.Errorf("Accept = %q", r.Header.Get("Accept"))
			}
			if !strings.HasPrefix(r.Header.Get("User-Agent"), "arzlive/") {
				t.Errorf("User-Agent = %q, want arzlive/*", r.Header.Get("User-Agent"))
			}
			if r.URL.Query().Get("key") != "k" {
				t.Errorf("key = %q, want k", r.URL.Query().Get("key"))
			}
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		body, err := NewClient(server.URL, "k").fetch(context.Background(), "/feed")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != `[]` {
			t.Errorf("body = %q", body)
		}
	})

	t.Run("no key omits query", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "" {
				t.Errorf("query = %q, want empty", r.URL.RawQuery)
			}
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		if _, err := NewClient(server.URL, "").fetch(context.Background(), "/feed"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("status error keeps body snippet", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": "invalid key"}`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL, "bad").fetch(context.Background(), "/feed")
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T (%v)", err, err)
		}
		if apiErr.StatusCode != 403 || apiErr.Path != "/feed" {
			t.Errorf("apiErr = %+v", apiErr)
		}
		if !strings.Contains(string(apiErr.Body), "invalid key") {
			t.Errorf("Body = %q", apiErr.Body)
		}
	})

	t.Run("body too large", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(strings.Repeat("x", 100)))
		}))
		defer server.Close()

		_, err := NewClient(server.URL, "", WithMaxBodySize(10)).fetch(context.Background(), "/feed")
		if !errors.Is(err, ErrBodyTooLarge) {
			t.Errorf("err = %v, want ErrBodyTooLarge", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewClient(server.URL, "").fetch(ctx, "/feed")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestFetchWithRetry(t *testing.T) {
	tests := []struct {
		name     string
		retries  int
		failures int32 // leading 5xx responses
		status   int
		wantErr  string
		attempts int32
	}{
		{"no retries by default", 0, 10, http.StatusBadGateway, "502", 1},
		{"recovers after 5xx", 3, 2, http.StatusInternalServerError, "", 3},
		{"4xx is final", 3, 10, http.StatusBadRequest, "400", 1},
		{"429 is retried", 1, 1, http.StatusTooManyRequests, "", 2},
		{"gives up", 2, 10, http.StatusInternalServerError, "giving up after 3 attempts", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if attempts.Add(1) <= tt.failures {
					w.WriteHeader(tt.status)
					return
				}
				w.Write([]byte(`[]`))
			}))
			defer server.Close()

			c := NewClient(server.URL, "", WithRetries(tt.retries, 5*time.Millisecond))
			_, err := c.fetchWithRetry(context.Background(), "/feed")

			if tt.wantErr == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
			if got := attempts.Load(); got != tt.attempts {
				t.Errorf("attempts = %d, want %d", got, tt.attempts)
			}
		})
	}
}

func TestFetchWithRetry_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url, "", WithRetries(1, 5*time.Millisecond))
	_, err := c.fetchWithRetry(context.Background(), "/feed")
	if err == nil || !strings.Contains(err.Error(), "giving up after 2 attempts") {
		t.Errorf("err = %v, want retried transport error", err)
	}
}

// TestGetFeed tests fetching and decoding a feed.
func TestGetFeed(t *testing.T) {
	t.Run("passes key and decodes items", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/Gold_Currency.php" {
				t.Errorf("path = %q, want %q", r.URL.Path, "/Gold_Currency.php")
			}
			if got := r.URL.Query().Get("key"); got != "secret" {
				t.Errorf("key = %q, want %q", got, "secret")
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"currency":[{"symbol":"USD","price":"705,000","change_percent":"0.5"}]}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "secret")
		sections, err := c.GetFeed(context.Background(), Feed{Name: "fx", Path: "/Gold_Currency.php", Section: "mixed"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sections) != 1 || sections[0].Kind != "currency" || len(sections[0].Items) != 1 {
			t.Fatalf("sections = %+v, want one currency section with one item", sections)
		}
		item := sections[0].Items[0]
		if item.Symbol != "USD" || item.Price != "705,000" || item.Change() != "0.5" {
			t.Errorf("item = %+v", item)
		}
	})

	t.Run("http error names the feed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c := NewClient(server.URL, "key")
		_, err := c.GetFeed(context.Background(), Feed{Name: "crypto", Path: "/Cryptocurrency.php", Section: "crypto"})
		if err == nil || !strings.Contains(err.Error(), "get feed crypto") {
			t.Fatalf("err = %v, want get feed crypto error", err)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Errorf("err does not wrap *APIError: %v", err)
		}
	})

	t.Run("non-json body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>maintenance</html>`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "key")
		if _, err := c.GetFeed(context.Background(), Feed{Name: "fx", Path: "/x", Section: "mixed"}); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
