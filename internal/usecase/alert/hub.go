package alert

import (
	"sync"

	"github.com/madhava-cloud/gateway/internal/domain"
	"github.com/madhava-cloud/gateway/internal/metrics"
)

// Hub fans dispatched alerts out to live subscribers. Subscribers whose Send
// fails are pruned on the spot.
type Hub struct {
	mu   sync.Mutex
	subs map[Subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[Subscriber]struct{})}
}

// Subscribe adds a subscriber to the broadcast set.
func (h *Hub) Subscribe(s Subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	metrics.AlertSubscribers.Inc()
}

// Unsubscribe removes a subscriber. Safe to call for an already-pruned one.
func (h *Hub) Unsubscribe(s Subscriber) {
	h.mu.Lock()
	_, ok := h.subs[s]
	delete(h.subs, s)
	h.mu.Unlock()
	if ok {
		metrics.AlertSubscribers.Dec()
	}
}

// Broadcast delivers the alert to every subscriber, dropping any whose Send
// fails so a dead connection cannot accumulate. Sends happen outside the
// lock: a slow subscriber must not stall Subscribe/Unsubscribe or delay the
// other deliveries behind the mutex.
func (h *Hub) Broadcast(a domain.Alert) {
	h.mu.Lock()
	subs := make([]Subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		if err := s.Send(a); err != nil {
			h.Unsubscribe(s)
		}
	}
}

// Count reports the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
