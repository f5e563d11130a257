// Package stream broadcasts decoded packets to connected diagnostic
// dashboards over a websocket, one goroutine's worth of write-mutex per
// connection.
package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Packet is one decoded message, broadcast to every connected client as a
// JSON frame.
type Packet struct {
	ReceiverID string `json:"receiver_id"`
	Value      uint32 `json:"value"`
	Bits       int    `json:"bits"`
	ProtocolID int    `json:"protocol_id"`
	DecodedAt  int64  `json:"decoded_at_unix_ms"`
}

// conn wraps a websocket connection with the write mutex gorilla requires
// for concurrent writers.
type conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func (c *conn) send(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

// Server is a broadcast hub: Handler accepts new connections, Broadcast
// fans a Packet out to every connection currently registered.
type Server struct {
	mu    sync.Mutex
	conns map[*conn]struct{}
}

// NewServer constructs an empty broadcast hub.
func NewServer() *Server {
	return &Server{conns: make(map[*conn]struct{})}
}

// Handler upgrades the request to a websocket and registers the
// connection until it errors or closes.
func (s *Server) Handler(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("rfswitch/stream: upgrade failed: %v", err)
		return
	}
	c := &conn{ws: ws}

	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		ws.Close()
	}()

	// Diagnostic connections are receive-nothing; keep reading to drain
	// control frames and detect client-initiated close.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends p to every connected client, dropping the connection on
// write error rather than retrying.
func (s *Server) Broadcast(p Packet) {
	payload, err := json.Marshal(p)
	if err != nil {
		log.Printf("rfswitch/stream: marshal failed: %v", err)
		return
	}

	s.mu.Lock()
	targets := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if err := c.send(payload); err != nil {
			s.mu.Lock()
			delete(s.conns, c)
			s.mu.Unlock()
			c.ws.Close()
		}
	}
}
