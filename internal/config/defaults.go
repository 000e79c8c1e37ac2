package config

import (
	"time"

	"github.com/arzlive/arzlive/internal/history"
	"github.com/arzlive/arzlive/internal/normalize"
)

// Default values for optional configuration fields.
const (
	DefaultFeedBaseURL   = "https://brsapi.ir/Api/Market"
	DefaultFeedTimeout   = 15 * time.Second
	DefaultPollInterval  = 60 * time.Second
	DefaultPollTimeout   = 30 * time.Second
	DefaultStorageDriver = "sqlite"
	DefaultStoragePath   = "data/arzlive.db"
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 4
	DefaultMinConns      = 1
	DefaultRedisAddr     = "localhost:6379"
	DefaultServerAddr    = ":8080"
	DefaultReadTimeout   = 10 * time.Second
	DefaultWriteTimeout  = 10 * time.Second
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// DefaultEndpoints are the two reference feeds: currency and gold combined,
// crypto separate.
func DefaultEndpoints() []EndpointConfig {
	return []EndpointConfig{
		{Name: "gold_currency", Path: "/Gold_Currency.php", Section: "mixed"},
		{Name: "crypto", Path: "/Cryptocurrency.php", Section: "crypto"},
	}
}

func (c *Config) applyDefaults() {
	// Feed defaults
	if c.Feed.BaseURL == "" {
		c.Feed.BaseURL = DefaultFeedBaseURL
	}
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = DefaultFeedTimeout
	}
	if len(c.Feed.Endpoints) == 0 {
		c.Feed.Endpoints = DefaultEndpoints()
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}

	// Normalize defaults
	if c.Normalize.CurrencyThreshold == 0 {
		c.Normalize.CurrencyThreshold = normalize.DefaultCurrencyThreshold
	}
	if c.Normalize.GoldGramThreshold == 0 {
		c.Normalize.GoldGramThreshold = normalize.DefaultGoldGramThreshold
	}
	if c.Normalize.GoldCoinThreshold == 0 {
		c.Normalize.GoldCoinThreshold = normalize.DefaultGoldCoinThreshold
	}
	if c.Normalize.CryptoThreshold == 0 {
		c.Normalize.CryptoThreshold = normalize.DefaultCryptoThreshold
	}
	if c.Normalize.FallbackRate == 0 {
		c.Normalize.FallbackRate = normalize.DefaultFallbackRate
	}

	// History defaults
	if c.History.MinInterval == 0 {
		c.History.MinInterval = history.DefaultMinInterval
	}
	if c.History.MaxPoints == 0 {
		c.History.MaxPoints = history.DefaultMaxPoints
	}
	if c.History.Retention == 0 {
		c.History.Retention = history.DefaultRetention
	}
	if c.History.BackfillPoints == 0 {
		c.History.BackfillPoints = history.DefaultBackfillPoints
	}
	if c.History.BackfillWindow == 0 {
		c.History.BackfillWindow = history.DefaultBackfillWindow
	}
	if c.History.BackfillJitter == 0 {
		c.History.BackfillJitter = history.DefaultBackfillJitter
	}
	if c.History.Key == "" {
		c.History.Key = history.DefaultKey
	}

	// Storage defaults
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
	if c.Storage.Path == "" && c.Storage.Driver == "sqlite" {
		c.Storage.Path = DefaultStoragePath
	}
	if c.Storage.Path == "" && c.Storage.Driver == "file" {
		c.Storage.Path = "data"
	}
	applyDBDefaults(&c.Storage.Postgres)
	if c.Storage.Redis.Addr == "" {
		c.Storage.Redis.Addr = DefaultRedisAddr
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

// Thresholds returns the configured normalization thresholds.
func (c *Config) Thresholds() normalize.Thresholds {
	return normalize.Thresholds{
		Currency: c.Normalize.CurrencyThreshold,
		GoldGram: c.Normalize.GoldGramThreshold,
		GoldCoin: c.Normalize.GoldCoinThreshold,
		Crypto:   c.Normalize.CryptoThreshold,
	}
}

// HistoryStore returns the History Store configuration.
func (c *Config) HistoryStore() history.Config {
	return history.Config{
		MinInterval:    c.History.MinInterval,
		MaxPoints:      c.History.MaxPoints,
		Retention:      c.History.Retention,
		BackfillPoints: c.History.BackfillPoints,
		BackfillWindow: c.History.BackfillWindow,
		BackfillJitter: c.History.BackfillJitter,
		Key:            c.History.Key,
	}
}
