package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arzlive/arzlive/internal/config"
	"github.com/arzlive/arzlive/internal/database"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Backend is a durable key/value store.
type Backend interface {
	// Get returns the value stored under key, or nil if there is none.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open creates the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		b   Backend
		err error
	)
	switch cfg.Driver {
	case "memory":
		b = NewMemory()
	case "file":
		b, err = NewFile(cfg.Path)
	case "sqlite":
		b, err = NewSQLite(ctx, cfg.Path)
	case "postgres":
		pool, perr := database.Connect(ctx, cfg.Postgres)
		if perr != nil {
			return nil, fmt.Errorf("connect postgres: %w", perr)
		}
		b, err = NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
		}
	case "redis":
		b, err = NewRedis(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Driver, err)
	}

	logger.Info("storage opened", "driver", cfg.Driver)
	return b, nil
}
