package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arzlive/arzlive/internal/api"
	"github.com/arzlive/arzlive/internal/config"
	"github.com/arzlive/arzlive/internal/history"
	"github.com/arzlive/arzlive/internal/market"
	"github.com/arzlive/arzlive/internal/match"
	"github.com/arzlive/arzlive/internal/model"
	"github.com/arzlive/arzlive/internal/normalize"
	"github.com/arzlive/arzlive/internal/snapshot"
	"github.com/arzlive/arzlive/internal/storage"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend storage.Backend
	history *history.Store
	builder *snapshot.Builder
}

// loadConfig reads, overrides and validates the configuration.
func loadConfig(ctx context.Context, opts *globalOptions) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(ctx, opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// newApp wires storage, history, the feed client and the snapshot builder.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	instruments, err := cfg.Instruments(market.DefaultInstruments())
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	backend, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	hist := history.NewStore(cfg.HistoryStore(), backend, history.NewGenerator(cfg.History.Seed), logger)

	client := api.NewClient(cfg.Feed.BaseURL, cfg.Feed.APIKey,
		api.WithTimeout(cfg.Feed.Timeout),
		api.WithRetries(cfg.Feed.Retries, time.Second),
		api.WithLogger(logger),
	)

	feeds := make([]api.Feed, 0, len(cfg.Feed.Endpoints))
	for _, ep := range cfg.Feed.Endpoints {
		feeds = append(feeds, api.Feed{Name: ep.Name, Path: ep.Path, Section: model.Section(ep.Section)})
	}

	builder := snapshot.New(
		snapshot.Config{
			Feeds:        feeds,
			FallbackRate: decimal.NewFromFloat(cfg.Normalize.FallbackRate),
		},
		client,
		match.NewMatcher(instruments),
		normalize.New(cfg.Thresholds()),
		market.NewCatalog(instruments, time.Now()),
		hist,
		logger,
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		history: hist,
		builder: builder,
	}, nil
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("failed to close storage", "err", err)
	}
}
