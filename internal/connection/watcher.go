package connection

import (
	"context"
	"log/slog"
	"time"
)

// Handler receives every message read from the stream.
type Handler func(TimestampedMessage)

// Watcher keeps a subscription to the stream open, reconnecting with
// exponential backoff whenever the connection drops.
type Watcher struct {
	cfg     WatcherConfig
	handler Handler
	logger  *slog.Logger
}

// NewWatcher creates a watcher that delivers messages to handler.
func NewWatcher(cfg WatcherConfig, handler Handler, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultWatcherConfig()
	if cfg.ReconnectBaseWait <= 0 {
		cfg.ReconnectBaseWait = def.ReconnectBaseWait
	}
	if cfg.ReconnectMaxWait <= 0 {
		cfg.ReconnectMaxWait = def.ReconnectMaxWait
	}
	if cfg.ReconnectMaxWait < cfg.ReconnectBaseWait {
		cfg.ReconnectMaxWait = cfg.ReconnectBaseWait
	}
	return &Watcher{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
	}
}

// Run blocks until ctx is cancelled. It always returns nil after
// cancellation; connection errors are logged and retried.
func (w *Watcher) Run(ctx context.Context) error {
	wait := w.cfg.ReconnectBaseWait
	attempt := 0

	for {
		connected, err := w.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			// A session that got through the handshake resets the backoff.
			wait = w.cfg.ReconnectBaseWait
			attempt = 0
		}
		attempt++

		w.logger.Warn("stream disconnected, reconnecting",
			"url", w.cfg.Client.URL,
			"attempt", attempt,
			"wait", wait,
			"err", err,
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		wait *= 2
		if wait > w.cfg.ReconnectMaxWait {
			wait = w.cfg.ReconnectMaxWait
		}
	}
}

// session runs one connection until it fails or ctx is cancelled.
func (w *Watcher) session(ctx context.Context) (bool, error) {
	client := NewClient(w.cfg.Client, w.logger)
	defer client.Close()

	if err := client.Connect(ctx); err != nil {
		return false, err
	}
	w.logger.Info("stream connected", "url", w.cfg.Client.URL)

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg := <-client.Messages():
			if w.handler != nil {
				w.handler(msg)
			}
		case err := <-client.Errors():
			// Drain whatever was read before the failure.
			for {
				select {
				case msg := <-client.Messages():
					if w.handler != nil {
						w.handler(msg)
					}
				default:
					return true, err
				}
			}
		}
	}
}
