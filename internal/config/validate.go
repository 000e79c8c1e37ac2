package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/arzlive/arzlive/internal/model"
)

// Drivers lists the supported storage drivers.
var Drivers = []string{"file", "sqlite", "postgres", "redis", "memory"}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	sections   = []string{
		string(model.SectionCurrency),
		string(model.SectionGold),
		string(model.SectionCrypto),
		string(model.SectionMixed),
	}
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Feed.BaseURL == "" {
		return errors.New("feed.base_url is required")
	}
	if c.Feed.Timeout <= 0 {
		return errors.New("feed.timeout must be > 0")
	}
	if c.Feed.Retries < 0 {
		return errors.New("feed.retries must be >= 0")
	}
	if len(c.Feed.Endpoints) == 0 {
		return errors.New("feed.endpoints must not be empty")
	}
	names := make(map[string]bool, len(c.Feed.Endpoints))
	for i, ep := range c.Feed.Endpoints {
		prefix := fmt.Sprintf("feed.endpoints[%d]", i)
		if ep.Name == "" {
			return fmt.Errorf("%s.name is required", prefix)
		}
		if names[ep.Name] {
			return fmt.Errorf("%s.name %q is duplicated", prefix, ep.Name)
		}
		names[ep.Name] = true
		if ep.Path == "" {
			return fmt.Errorf("%s.path is required", prefix)
		}
		if !slices.Contains(sections, ep.Section) {
			return fmt.Errorf("%s.section must be one of %v, got %q", prefix, sections, ep.Section)
		}
	}

	if c.Poller.Interval <= 0 {
		return errors.New("poller.interval must be > 0")
	}
	if c.Poller.Timeout <= 0 {
		return errors.New("poller.timeout must be > 0")
	}

	if err := c.Normalize.validate(); err != nil {
		return err
	}

	if c.History.MinInterval < 0 {
		return errors.New("history.min_interval must be >= 0")
	}
	if c.History.MaxPoints < 1 {
		return errors.New("history.max_points must be >= 1")
	}
	if c.History.Retention <= 0 {
		return errors.New("history.retention must be > 0")
	}
	if c.History.BackfillPoints < 0 {
		return errors.New("history.backfill_points must be >= 0")
	}
	if c.History.BackfillJitter < 0 || c.History.BackfillJitter >= 1 {
		return fmt.Errorf("history.backfill_jitter must be in [0, 1), got %g", c.History.BackfillJitter)
	}
	if c.History.Key == "" {
		return errors.New("history.key is required")
	}

	if err := c.Storage.validate(); err != nil {
		return err
	}

	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	if !slices.Contains(logLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %v, got %q", logLevels, c.Logging.Level)
	}
	if !slices.Contains(logFormats, c.Logging.Format) {
		return fmt.Errorf("logging.format must be one of %v, got %q", logFormats, c.Logging.Format)
	}

	ids := make(map[string]bool, len(c.Catalog))
	for i, inst := range c.Catalog {
		if err := inst.validate(fmt.Sprintf("catalog[%d]", i)); err != nil {
			return err
		}
		if ids[inst.ID] {
			return fmt.Errorf("catalog[%d].id %q is duplicated", i, inst.ID)
		}
		ids[inst.ID] = true
	}

	return nil
}

func (n *NormalizeConfig) validate() error {
	thresholds := []struct {
		name  string
		value float64
	}{
		{"currency_threshold", n.CurrencyThreshold},
		{"gold_gram_threshold", n.GoldGramThreshold},
		{"gold_coin_threshold", n.GoldCoinThreshold},
		{"crypto_threshold", n.CryptoThreshold},
	}
	for _, th := range thresholds {
		if th.value < 0 {
			return fmt.Errorf("normalize.%s must be >= 0", th.name)
		}
	}
	if n.FallbackRate <= 0 {
		return errors.New("normalize.fallback_rate must be > 0")
	}
	return nil
}

func (s *StorageConfig) validate() error {
	switch s.Driver {
	case "file", "sqlite":
		if s.Path == "" {
			return fmt.Errorf("storage.path is required for driver %q", s.Driver)
		}
	case "postgres":
		return s.Postgres.validate("storage.postgres")
	case "redis":
		if s.Redis.Addr == "" {
			return errors.New("storage.redis.addr is required")
		}
		if s.Redis.DB < 0 {
			return errors.New("storage.redis.db must be >= 0")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.driver must be one of %v, got %q", Drivers, s.Driver)
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

func (i *InstrumentConfig) validate(prefix string) error {
	if i.ID == "" {
		return fmt.Errorf("%s.id is required", prefix)
	}
	if i.Category != "" && !model.Category(i.Category).Valid() {
		return fmt.Errorf("%s.category %q is invalid", prefix, i.Category)
	}
	if i.Class != "" && !model.Class(i.Class).Valid() {
		return fmt.Errorf("%s.class %q is invalid", prefix, i.Class)
	}
	if i.SeedPrice < 0 {
		return fmt.Errorf("%s.seed_price must be >= 0", prefix)
	}
	for _, sec := range i.Sections {
		if !slices.Contains(sections, sec) {
			return fmt.Errorf("%s.sections: unknown section %q", prefix, sec)
		}
	}
	return nil
}
