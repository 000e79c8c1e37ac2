package connection

import (
	"errors"
	"time"
)

var (
	ErrStaleConnection = errors.New("stream stale: no ping or pong within timeout")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage is one data frame and the local time it was read.
type TimestampedMessage struct {
	Data       []byte
	ReceivedAt time.Time
}

// ClientConfig configures a stream client.
type ClientConfig struct {
	URL          string        // Stream URL (e.g., ws://localhost:8080/ws)
	Origin       string        // Origin header, empty to omit
	PingTimeout  time.Duration // silence longer than this marks the stream stale
	WriteTimeout time.Duration // deadline for control frames
	BufferSize   int           // messages held before new ones are dropped
}

// DefaultClientConfig matches the server's 54s ping period.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  90 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   16,
	}
}

// WatcherConfig configures a reconnecting Watcher.
type WatcherConfig struct {
	Client            ClientConfig
	ReconnectBaseWait time.Duration
	ReconnectMaxWait  time.Duration
}

// DefaultWatcherConfig backs off from 1s up to a minute.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		Client:            DefaultClientConfig(),
		ReconnectBaseWait: 1 * time.Second,
		ReconnectMaxWait:  60 * time.Second,
	}
}
