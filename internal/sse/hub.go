package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType defines the SSE event name.
type EventType string

const (
	EventPushAccepted EventType = "push.accepted"
	EventPushFailed   EventType = "push.failed"
)

// PushEvent is the payload broadcast to admin dashboards whenever a merchant
// push settles.
type PushEvent struct {
	Event        EventType `json:"event"`
	PushID       string    `json:"pushId"`
	CatalogID    string    `json:"catalogId"`
	Kind         string    `json:"kind"`
	ItemCount    int       `json:"itemCount"`
	Status       string    `json:"status"`
	IsSandbox    bool      `json:"isSandbox"`
	FailedReason *string   `json:"failedReason,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// subscriberBuffer is the per-subscriber event queue depth. A dashboard that
// falls further behind than this starts losing events rather than blocking
// the push path.
const subscriberBuffer = 64

// Subscriber is one connected admin dashboard stream.
type Subscriber struct {
	ID     string
	Events chan []byte
}

// Hub fans settled-push events out to all connected dashboard streams.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]*Subscriber),
	}
}

// Register adds a subscriber and returns it for streaming.
func (h *Hub) Register(id string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := &Subscriber{
		ID:     id,
		Events: make(chan []byte, subscriberBuffer),
	}
	h.subscribers[id] = s
	log.Info().Str("subscriber", id).Int("streams", len(h.subscribers)).Msg("sse stream registered")
	return s
}

// Unregister removes a subscriber and closes its channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.subscribers[id]; ok {
		close(s.Events)
		delete(h.subscribers, id)
		log.Info().Str("subscriber", id).Int("streams", len(h.subscribers)).Msg("sse stream closed")
	}
}

// Broadcast fans one event out to every subscriber. Never blocks: a full
// subscriber queue drops the event for that subscriber only.
func (h *Hub) Broadcast(event *PushEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("sse event marshal failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.subscribers {
		select {
		case s.Events <- data:
		default:
			log.Warn().Str("subscriber", s.ID).Msg("sse subscriber lagging, event dropped")
		}
	}
}

// SubscriberCount returns the number of connected streams.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
