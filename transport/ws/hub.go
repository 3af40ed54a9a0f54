// Package ws implements a websocket fan-out hub: every connected client
// receives every message broadcast to it, non-blockingly, matching the
// live-dashboard use case of C360Studio-semstreams's output/websocket
// package (scaled down to this module's needs).
package ws

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans out Broadcast calls to every currently connected client,
// dropping slow clients instead of blocking the broadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
	logger  *slog.Logger
}

// NewHub builds an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{clients: make(map[*websocket.Conn]chan []byte), logger: logger}
}

// Handler upgrades an HTTP request to a websocket connection and registers
// the client with the hub until the connection closes.
func (h *Hub) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	out := make(chan []byte, 32)

	h.mu.Lock()
	h.clients[conn] = out
	h.mu.Unlock()

	go h.writeLoop(conn, out)
	go h.readLoop(conn, out)
}

func (h *Hub) readLoop(conn *websocket.Conn, out chan []byte) {
	defer h.remove(conn, out)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, out chan []byte) {
	for msg := range out {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn, out chan []byte) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(out)
	}
	h.mu.Unlock()
	_ = conn.Close()
}

// Broadcast delivers msg to every connected client. A client whose outbound
// buffer is full is dropped instead of stalling the other clients.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, out := range h.clients {
		select {
		case out <- msg:
		default:
			h.logger.Warn("ws client too slow, dropping message", "remote", conn.RemoteAddr())
		}
	}
}

// ClientCount reports the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
