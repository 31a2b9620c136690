// Package monitor broadcasts decoded frames to connected websocket
// clients — a domain-stack enrichment beyond the distilled spec
// (SPEC_FULL.md §3), grounded on the broadcast-hub pattern used by the
// pack's dbehnke-dmr-nexus repo, built on gorilla/websocket.
package monitor

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/n7dwg/direwolf-go/internal/ax25"
	"github.com/n7dwg/direwolf-go/internal/dwlog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Hub fans out monitoring lines to every connected websocket client.
// It implements app.Sink.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan string
}

// NewHub builds an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan string)}
}

// Deliver satisfies app.Sink: broadcasts line to every connected client.
// channel and frame are accepted to match the Sink contract but this
// hub only forwards the rendered text line.
func (h *Hub) Deliver(_ int, line string, _ ax25.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, outbox := range h.clients {
		select {
		case outbox <- line:
		default:
			dwlog.Error.Printf("monitor: client %s outbox full, dropping", conn.RemoteAddr())
		}
	}
}

// ServeHTTP upgrades the connection and registers it as a broadcast
// recipient until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		dwlog.Error.Printf("monitor: upgrade failed: %v", err)
		return
	}
	outbox := make(chan string, 64)

	h.mu.Lock()
	h.clients[conn] = outbox
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Clients don't send anything meaningful, but reading is the only
	// way to notice they hung up; gorilla's control-frame handling runs
	// as a side effect of ReadMessage.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case line := <-outbox:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
