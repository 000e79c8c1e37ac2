package config

import "time"

// Config is the root configuration.
type Config struct {
	Feed      FeedConfig         `yaml:"feed" env:", prefix=FEED_"`
	Poller    PollerConfig       `yaml:"poller" env:", prefix=POLLER_"`
	Normalize NormalizeConfig    `yaml:"normalize" env:", prefix=NORMALIZE_"`
	History   HistoryConfig      `yaml:"history" env:", prefix=HISTORY_"`
	Storage   StorageConfig      `yaml:"storage" env:", prefix=STORAGE_"`
	Server    ServerConfig       `yaml:"server" env:", prefix=SERVER_"`
	Logging   LoggingConfig      `yaml:"logging" env:", prefix=LOG_"`
	Catalog   []InstrumentConfig `yaml:"catalog"`
}

// FeedConfig holds the upstream market-data API settings.
type FeedConfig struct {
	BaseURL   string           `yaml:"base_url" env:"BASE_URL, overwrite"`
	APIKey    string           `yaml:"api_key" env:"API_KEY, overwrite"`
	Timeout   time.Duration    `yaml:"timeout" env:"TIMEOUT, overwrite"`
	Retries   int              `yaml:"retries" env:"RETRIES, overwrite"`
	Endpoints []EndpointConfig `yaml:"endpoints"`
}

// EndpointConfig is one logical feed. Section is the list kind assumed for
// records not grouped under a currency/gold/cryptocurrency key.
type EndpointConfig struct {
	Name    string `yaml:"name"`
	Path    string `yaml:"path"`
	Section string `yaml:"section"`
}

// PollerConfig holds scheduler settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval" env:"INTERVAL, overwrite"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT, overwrite"`
}

// NormalizeConfig holds the per-class Rial thresholds and the fixed
// USD fallback rate for crypto conversion.
type NormalizeConfig struct {
	CurrencyThreshold float64 `yaml:"currency_threshold" env:"CURRENCY_THRESHOLD, overwrite"`
	GoldGramThreshold float64 `yaml:"gold_gram_threshold" env:"GOLD_GRAM_THRESHOLD, overwrite"`
	GoldCoinThreshold float64 `yaml:"gold_coin_threshold" env:"GOLD_COIN_THRESHOLD, overwrite"`
	CryptoThreshold   float64 `yaml:"crypto_threshold" env:"CRYPTO_THRESHOLD, overwrite"`
	FallbackRate      float64 `yaml:"fallback_rate" env:"FALLBACK_RATE, overwrite"`
}

// HistoryConfig holds History Store settings.
type HistoryConfig struct {
	MinInterval    time.Duration `yaml:"min_interval"`
	MaxPoints      int           `yaml:"max_points" env:"MAX_POINTS, overwrite"`
	Retention      time.Duration `yaml:"retention" env:"RETENTION, overwrite"`
	BackfillPoints int           `yaml:"backfill_points"`
	BackfillWindow time.Duration `yaml:"backfill_window"`
	BackfillJitter float64       `yaml:"backfill_jitter"`
	Key            string        `yaml:"key" env:"KEY, overwrite"`
	Seed           uint64        `yaml:"seed" env:"SEED, overwrite"` // 0 seeds from the clock
}

// StorageConfig selects the durable backend for the history snapshot.
type StorageConfig struct {
	Driver   string      `yaml:"driver" env:"DRIVER, overwrite"` // file, sqlite, postgres, redis, memory
	Path     string      `yaml:"path" env:"PATH, overwrite"`     // directory (file) or database file (sqlite)
	Postgres DBConfig    `yaml:"postgres" env:", prefix=PG_"`
	Redis    RedisConfig `yaml:"redis" env:", prefix=REDIS_"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host" env:"HOST, overwrite"`
	Port     int    `yaml:"port" env:"PORT, overwrite"`
	Name     string `yaml:"name" env:"NAME, overwrite"`
	User     string `yaml:"user" env:"USER, overwrite"`
	Password string `yaml:"password" env:"PASSWORD, overwrite"`
	SSLMode  string `yaml:"ssl_mode" env:"SSL_MODE, overwrite"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RedisConfig holds a Redis connection.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR, overwrite"`
	Password string `yaml:"password" env:"PASSWORD, overwrite"`
	DB       int    `yaml:"db" env:"DB, overwrite"`
}

// ServerConfig holds the REST/WebSocket server settings.
type ServerConfig struct {
	Addr           string        `yaml:"addr" env:"ADDR, overwrite"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL, overwrite"`   // debug, info, warn, error
	Format string `yaml:"format" env:"FORMAT, overwrite"` // text, json
}

// InstrumentConfig overrides the built-in catalog entry with the same id,
// or adds a new one.
type InstrumentConfig struct {
	ID        string   `yaml:"id"`
	NameFa    string   `yaml:"name_fa"`
	NameEn    string   `yaml:"name_en"`
	Category  string   `yaml:"category"`
	Class     string   `yaml:"class"`
	SeedPrice float64  `yaml:"seed_price"`
	Symbols   []string `yaml:"symbols"`
	Fragments []string `yaml:"fragments"`
	Sections  []string `yaml:"sections"`
	Reference bool     `yaml:"reference"`
}
