package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestServerBroadcastsToConnectedClient(t *testing.T) {
	s := NewServer()
	ts := httptest.NewServer(http.HandlerFunc(s.Handler))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer ws.Close()

	// Give Handler's registration a moment to land before broadcasting.
	deadline := time.Now().Add(time.Second)
	for {
		s.mu.Lock()
		n := len(s.conns)
		s.mu.Unlock()
		if n == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	s.Broadcast(Packet{ReceiverID: "r1", Value: 0x13, Bits: 6, ProtocolID: 1, DecodedAt: 123})

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var got Packet
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ReceiverID != "r1" || got.Value != 0x13 {
		t.Fatalf("got %+v, want ReceiverID=r1 Value=0x13", got)
	}
}

func TestServerBroadcastWithNoConnectionsIsNoop(t *testing.T) {
	s := NewServer()
	s.Broadcast(Packet{ReceiverID: "r1"})
}

func TestServerDropsConnectionAfterClose(t *testing.T) {
	s := NewServer()
	ts := httptest.NewServer(http.HandlerFunc(s.Handler))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	ws.Close()

	deadline := time.Now().Add(time.Second)
	for {
		s.mu.Lock()
		n := len(s.conns)
		s.mu.Unlock()
		if n == 0 || time.Now().After(deadline) {
			if n != 0 {
				t.Fatalf("connection not removed from registry after close, still have %d", n)
			}
			break
		}
		time.Sleep(time.Millisecond)
	}
}
