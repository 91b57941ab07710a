package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/engine"
)

// eventsInterval is how often the status feed polls the engine.
const eventsInterval = 66 * time.Millisecond

const writeTimeout = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StatusSource provides engine snapshots.
type StatusSource interface {
	Status() engine.Status
}

// EventsHandler pushes engine status to websocket clients whenever it changes.
type EventsHandler struct {
	source  StatusSource
	clients map[*websocket.Conn]*sync.Mutex
	mu      sync.RWMutex
	done    chan struct{}
	once    sync.Once
}

// NewEventsHandler creates an EventsHandler and starts its broadcast loop.
func NewEventsHandler(source StatusSource) *EventsHandler {
	h := &EventsHandler{
		source:  source,
		clients: make(map[*websocket.Conn]*sync.Mutex),
		done:    make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP upgrades the request and sends the current status immediately.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	lock := &sync.Mutex{}
	if msg, err := json.Marshal(h.source.Status()); err == nil {
		if err := write(conn, lock, msg); err != nil {
			return
		}
	}

	h.mu.Lock()
	h.clients[conn] = lock
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Reads only detect the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventsHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcast loop. Connected clients are left to disconnect.
func (h *EventsHandler) Close() {
	h.once.Do(func() { close(h.done) })
}

// broadcast sends each new status to all connected clients.
func (h *EventsHandler) broadcast() {
	ticker := time.NewTicker(eventsInterval)
	defer ticker.Stop()

	var last time.Time
	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}
		st := h.source.Status()
		if st.UpdatedAt.Equal(last) {
			continue
		}
		last = st.UpdatedAt

		msg, err := json.Marshal(st)
		if err != nil {
			log.Printf("Failed to encode status: %v", err)
			continue
		}

		h.mu.RLock()
		for conn, lock := range h.clients {
			if err := write(conn, lock, msg); err != nil {
				conn.Close()
			}
		}
		h.mu.RUnlock()
	}
}

// write serializes writes to conn; gorilla connections allow one writer at a time.
func write(conn *websocket.Conn, lock *sync.Mutex, msg []byte) error {
	lock.Lock()
	defer lock.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, msg)
}
