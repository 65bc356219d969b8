// Package network pushes game events to connected websocket clients. The
// server process mirrors every state change notification out to UIs; clients
// never write state over the socket, they use the HTTP API.
package network

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/solhwan/pointclick/pkg/game"
)

const sendBuffer = 64

// Hub fans game events out to subscribers over per-client buffered
// channels. A slow client drops messages rather than stalling the game
// loop.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan game.Event
	logger      *slog.Logger
	upgrader    websocket.Upgrader
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]chan game.Event),
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Attach subscribes the hub to the manager's event stream and returns the
// unsubscribe function.
func (h *Hub) Attach(m *game.Manager) func() {
	return m.Subscribe(h.Broadcast)
}

// Register creates a private channel for a new client.
func (h *Hub) Register(clientID string) chan game.Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.subscribers[clientID]; ok {
		close(old)
	}

	ch := make(chan game.Event, sendBuffer)
	h.subscribers[clientID] = ch
	return ch
}

// Unregister removes and closes a client's channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[clientID]; ok {
		close(ch)
		delete(h.subscribers, clientID)
	}
}

// Broadcast sends the event to every subscriber without blocking.
func (h *Hub) Broadcast(ev game.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			h.logger.Debug("Dropping event for slow client", "client", id, "event", ev.Type)
		}
	}
}

// SubscriberCount reports how many clients are connected.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// ServeHTTP upgrades the connection and streams events until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "error", err)
		return
	}

	clientID := uuid.NewString()
	ch := h.Register(clientID)
	h.logger.Info("Websocket client connected", "client", clientID)

	defer func() {
		h.Unregister(clientID)
		conn.Close()
		h.logger.Info("Websocket client disconnected", "client", clientID)
	}()

	// Reader goroutine exists only to observe the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Debug("Websocket write failed", "client", clientID, "error", err)
				return
			}
		case <-done:
			return
		}
	}
}
