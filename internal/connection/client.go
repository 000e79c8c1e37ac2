package connection

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one subscription to the catalog stream.
type Client interface {
	// Connect dials the stream and starts reading.
	Connect(ctx context.Context) error

	// Close sends a close frame and releases the connection. Safe to call
	// more than once.
	Close() error

	// Messages delivers every data frame with its receive time.
	Messages() <-chan TimestampedMessage

	// Errors delivers at most one terminal error: a read failure or a
	// stale connection.
	Errors() <-chan error

	// IsConnected reports whether the read loop is still running.
	IsConnected() bool
}

type client struct {
	cfg    ClientConfig
	logger *slog.Logger

	conn *websocket.Conn

	messages chan TimestampedMessage
	errs     chan error
	done     chan struct{}

	closeOnce sync.Once
	closed    atomic.Bool
	connected atomic.Bool
	lastSeen  atomic.Int64 // unix nanos of the last ping or pong
}

// NewClient creates an unconnected client.
func NewClient(cfg ClientConfig, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultClientConfig()
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = def.PingTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}

	return &client{
		cfg:      cfg,
		logger:   logger.With("url", cfg.URL),
		messages: make(chan TimestampedMessage, cfg.BufferSize),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
	}
}

func (c *client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return ErrAlreadyClosed
	}

	header := http.Header{}
	if c.cfg.Origin != "" {
		header.Set("Origin", c.cfg.Origin)
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}
	c.conn = conn
	c.touch()
	c.connected.Store(true)

	conn.SetPingHandler(func(data string) error {
		c.touch()
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(c.cfg.WriteTimeout))
		if err == websocket.ErrCloseSent {
			return nil
		}
		return err
	})
	conn.SetPongHandler(func(string) error {
		c.touch()
		return nil
	})

	go c.readLoop()
	go c.heartbeat()

	c.logger.Debug("stream dialed")
	return nil
}

func (c *client) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

func (c *client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.connected.Store(false)
		close(c.done)

		if c.conn == nil {
			return
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}

func (c *client) Messages() <-chan TimestampedMessage { return c.messages }

func (c *client) Errors() <-chan error { return c.errs }

func (c *client) IsConnected() bool { return c.connected.Load() }

// fail reports a terminal error unless the client is already closing.
func (c *client) fail(err error) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.errs <- err:
	default:
	}
}

func (c *client) readLoop() {
	defer c.connected.Store(false)

	for {
		_, data, err := c.conn.ReadMessage()
		at := time.Now()
		if err != nil {
			c.fail(err)
			return
		}

		select {
		case c.messages <- TimestampedMessage{Data: data, ReceivedAt: at}:
		case <-c.done:
			return
		default:
			c.logger.Warn("message buffer full, dropping message")
		}
	}
}

// heartbeat pings the server every third of PingTimeout and gives up once
// nothing has been heard for a full PingTimeout.
func (c *client) heartbeat() {
	ticker := time.NewTicker(c.cfg.PingTimeout / 3)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		deadline := time.Now().Add(c.cfg.WriteTimeout)
		if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			c.logger.Debug("ping failed", "err", err)
		}

		last := time.Unix(0, c.lastSeen.Load())
		if time.Since(last) > c.cfg.PingTimeout {
			c.logger.Warn("stream stale", "last_seen", last, "timeout", c.cfg.PingTimeout)
			c.fail(ErrStaleConnection)
			return
		}
	}
}
