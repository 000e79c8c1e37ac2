package connection

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// streamServer upgrades every request and hands the connection to handler.
func streamServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// drain reads until the peer goes away.
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func dial(t *testing.T, url string) Client {
	t.Helper()
	c := NewClient(ClientConfig{URL: url}, nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(ClientConfig{URL: "ws://x/ws"}, nil).(*client)
	want := DefaultClientConfig()
	if c.cfg.PingTimeout != want.PingTimeout || c.cfg.WriteTimeout != want.WriteTimeout || c.cfg.BufferSize != want.BufferSize {
		t.Errorf("cfg = %+v, want defaults %+v", c.cfg, want)
	}
	if cap(c.messages) != want.BufferSize {
		t.Errorf("buffer = %d, want %d", cap(c.messages), want.BufferSize)
	}
}

func TestClient_ConnectClose(t *testing.T) {
	origin := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin <- r.Header.Get("Origin")
		conn, err := (&websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		drain(conn)
	}))
	defer server.Close()

	c := NewClient(ClientConfig{URL: wsURL(server), Origin: "https://arz.example"}, nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !c.IsConnected() {
		t.Error("IsConnected = false after Connect")
	}
	if got := <-origin; got != "https://arz.example" {
		t.Errorf("Origin = %q, want configured origin", got)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if c.IsConnected() {
		t.Error("IsConnected = true after Close")
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestClient_ConnectFails(t *testing.T) {
	server := streamServer(t, func(*websocket.Conn) {})
	url := wsURL(server)
	server.Close()

	c := NewClient(ClientConfig{URL: url}, nil)
	defer c.Close()

	err := c.Connect(context.Background())
	if err == nil || !strings.Contains(err.Error(), "dial ") {
		t.Fatalf("Connect = %v, want dial error", err)
	}
	if c.IsConnected() {
		t.Error("IsConnected = true after failed dial")
	}
}

func TestClient_ConnectAfterClose(t *testing.T) {
	c := NewClient(ClientConfig{URL: "ws://127.0.0.1:1/ws"}, nil)
	c.Close()

	if err := c.Connect(context.Background()); !errors.Is(err, ErrAlreadyClosed) {
		t.Errorf("Connect after Close = %v, want ErrAlreadyClosed", err)
	}
}

func TestClient_Messages(t *testing.T) {
	frames := []string{
		`{"type":"snapshot","data":{"cycle_id":"a"}}`,
		`{"type":"snapshot","data":{"cycle_id":"b"}}`,
		`{"type":"snapshot","data":{"cycle_id":"c"}}`,
	}
	server := streamServer(t, func(conn *websocket.Conn) {
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		drain(conn)
	})
	defer server.Close()

	c := dial(t, wsURL(server))
	timeout := time.After(time.Second)
	for i, want := range frames {
		select {
		case msg := <-c.Messages():
			if string(msg.Data) != want {
				t.Errorf("message %d = %q, want %q", i, msg.Data, want)
			}
			if msg.ReceivedAt.IsZero() {
				t.Errorf("message %d has zero ReceivedAt", i)
			}
		case <-timeout:
			t.Fatalf("timeout after %d of %d messages", i, len(frames))
		}
	}
}

func TestClient_ServerClose(t *testing.T) {
	server := streamServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"snapshot"}`))
	})
	defer server.Close()

	c := dial(t, wsURL(server))

	select {
	case msg := <-c.Messages():
		if string(msg.Data) != `{"type":"snapshot"}` {
			t.Errorf("message = %q", msg.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}

	select {
	case err := <-c.Errors():
		if err == nil {
			t.Error("Errors delivered nil")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for read error")
	}

	deadline := time.Now().Add(time.Second)
	for c.IsConnected() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.IsConnected() {
		t.Error("IsConnected = true after server went away")
	}
}

func TestClient_AnswersPing(t *testing.T) {
	pong := make(chan string, 1)
	server := streamServer(t, func(conn *websocket.Conn) {
		conn.SetPongHandler(func(data string) error {
			pong <- data
			return nil
		})
		if err := conn.WriteControl(websocket.PingMessage, []byte("hb"), time.Now().Add(time.Second)); err != nil {
			return
		}
		drain(conn)
	})
	defer server.Close()

	c := dial(t, wsURL(server))

	select {
	case data := <-pong:
		if data != "hb" {
			t.Errorf("pong payload = %q, want hb", data)
		}
	case <-time.After(time.Second):
		t.Fatal("no pong received")
	}
	if !c.IsConnected() {
		t.Error("IsConnected = false after ping")
	}
}

func TestClient_Stale(t *testing.T) {
	// The peer never reads, so our pings are never answered.
	release := make(chan struct{})
	server := streamServer(t, func(*websocket.Conn) { <-release })
	defer server.Close()
	defer close(release)

	c := NewClient(ClientConfig{URL: wsURL(server), PingTimeout: 60 * time.Millisecond}, nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	select {
	case err := <-c.Errors():
		if !errors.Is(err, ErrStaleConnection) {
			t.Errorf("err = %v, want ErrStaleConnection", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stale connection not detected")
	}
}

func TestDefaultConfigs(t *testing.T) {
	clientCfg := DefaultClientConfig()
	if clientCfg.PingTimeout != 90*time.Second {
		t.Errorf("PingTimeout = %v, want 90s", clientCfg.PingTimeout)
	}
	if clientCfg.BufferSize != 16 {
		t.Errorf("BufferSize = %d, want 16", clientCfg.BufferSize)
	}

	watcherCfg := DefaultWatcherConfig()
	if watcherCfg.ReconnectBaseWait != time.Second {
		t.Errorf("ReconnectBaseWait = %v, want 1s", watcherCfg.ReconnectBaseWait)
	}
	if watcherCfg.ReconnectMaxWait != time.Minute {
		t.Errorf("ReconnectMaxWait = %v, want 1m", watcherCfg.ReconnectMaxWait)
	}
}
