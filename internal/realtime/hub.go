// Package realtime fans issue events out to connected websocket sessions.
// Delivery is best-effort and at-most-once per session; a client that was
// disconnected at publish time catches up with a full list refetch.
package realtime

import (
	"sync"

	"github.com/civicsync/civicsync/internal/events"
	"github.com/civicsync/civicsync/internal/logger"
)

// sessionBuffer bounds how far a slow consumer may fall behind before it is
// dropped from the registry.
const sessionBuffer = 16

// Hub is the subscriber registry. Subscriptions are added and removed only by
// the connection lifecycle; Publish tolerates concurrent connect/disconnect.
type Hub struct {
	mu       sync.Mutex
	sessions map[uint64]chan events.Event
	nextID   uint64
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[uint64]chan events.Event)}
}

// Subscribe registers a session and returns its event channel plus a cancel
// func. Cancel is idempotent and closes the channel, so a ranging consumer
// terminates cleanly.
func (h *Hub) Subscribe() (<-chan events.Event, func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	ch := make(chan events.Event, sessionBuffer)
	h.sessions[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.sessions[id]; ok {
				delete(h.sessions, id)
				close(ch)
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers ev to every currently subscribed session in FIFO order per
// session. A session whose buffer is full is dropped rather than blocking the
// publisher; that client is expected to refetch.
func (h *Hub) Publish(ev events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.sessions {
		select {
		case ch <- ev:
		default:
			delete(h.sessions, id)
			close(ch)
			logger.Warn("Dropped slow realtime session", map[string]interface{}{
				"session_id": id,
				"component":  "realtime",
			})
		}
	}
}

// Sessions returns the number of currently connected sessions.
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
