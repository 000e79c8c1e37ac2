package server

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arzlive/arzlive/internal/snapshot"
)

func TestSubscriber_DropsOldest(t *testing.T) {
	c := &subscriber{send: make(chan []byte, sendBuffer)}

	for i := range sendBuffer + 2 {
		c.enqueue([]byte(strconv.Itoa(i)))
	}

	if len(c.send) != sendBuffer {
		t.Fatalf("queued = %d, want %d", len(c.send), sendBuffer)
	}
	if first := string(<-c.send); first != "2" {
		t.Errorf("oldest queued = %q, want %q", first, "2")
	}
}

func TestWebSocket(t *testing.T) {
	s, ts := newTestServer(t, newFakeSource(), Config{})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if ev.Type != "snapshot" || ev.Data.CycleID != "initial" {
		t.Errorf("initial event = %s/%s, want snapshot/initial", ev.Type, ev.Data.CycleID)
	}
	if got := s.hub.Len(); got != 1 {
		t.Errorf("subscribers = %d, want 1", got)
	}

	s.HandleResult(snapshot.Result{CycleID: "next", Err: "partial"})

	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if ev.Data.CycleID != "next" || ev.Data.Err != "partial" {
		t.Errorf("broadcast = %+v, want next/partial", ev.Data)
	}

	s.hub.Close()

	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("after Close: err = %v, want normal closure", err)
	}
}

func TestHub_RejectsOrigin(t *testing.T) {
	_, ts := newTestServer(t, newFakeSource(), Config{AllowedOrigins: []string{"https://arz.live"}})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := map[string][]string{"Origin": {"https://evil.example"}}

	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("Dial succeeded, want origin rejection")
	}
	if resp == nil || resp.StatusCode != 403 {
		t.Errorf("response = %v, want 403", resp)
	}
}
