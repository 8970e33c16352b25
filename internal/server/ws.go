package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ayusman/halo/internal/app"
)

// eventBuffer bounds lock/release events waiting for the broadcaster.
const eventBuffer = 32

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Message is one WebSocket frame of the state feed.
type Message struct {
	Type     string        `json:"type"`
	ClientID string        `json:"clientId,omitempty"`
	State    *app.Snapshot `json:"state,omitempty"`
	Event    *app.Event    `json:"event,omitempty"`
}

// StateHandler broadcasts frame-loop snapshots and lock/release events via
// WebSocket.
type StateHandler struct {
	source   Source
	interval time.Duration
	events   chan app.Event
	done     chan struct{}
	once     sync.Once
	clients  map[string]*websocket.Conn
	mu       sync.RWMutex
}

// NewStateHandler creates a StateHandler that sends snapshots at most fps
// times per second.
func NewStateHandler(source Source, fps int) *StateHandler {
	if fps <= 0 {
		fps = DefaultStreamFPS
	}
	h := &StateHandler{
		source:   source,
		interval: time.Second / time.Duration(fps),
		events:   make(chan app.Event, eventBuffer),
		done:     make(chan struct{}),
		clients:  make(map[string]*websocket.Conn),
	}
	source.OnEvent(func(ev app.Event) {
		select {
		case h.events <- ev:
		default:
		}
	})
	go h.broadcast()
	return h
}

// Close stops broadcasting and disconnects every client.
func (h *StateHandler) Close() {
	h.once.Do(func() {
		close(h.done)
		h.mu.Lock()
		defer h.mu.Unlock()
		for id, conn := range h.clients {
			conn.Close()
			delete(h.clients, id)
		}
	})
}

// Clients returns the number of connected clients.
func (h *StateHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	snap := h.source.Snapshot()
	if err := conn.WriteJSON(Message{Type: "hello", ClientID: id, State: &snap}); err != nil {
		return
	}

	h.mu.Lock()
	h.clients[id] = conn
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, id)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends changed snapshots and every event to all clients. It is
// the only writer once a client is registered.
func (h *StateHandler) broadcast() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var lastTicks uint64
	for {
		var msg Message
		select {
		case <-h.done:
			return
		case ev := <-h.events:
			msg = Message{Type: "event", Event: &ev}
		case <-ticker.C:
			snap := h.source.Snapshot()
			if snap.Ticks == lastTicks {
				continue
			}
			lastTicks = snap.Ticks
			msg = Message{Type: "state", State: &snap}
		}

		h.send(msg)
	}
}

func (h *StateHandler) send(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range h.clients {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}
