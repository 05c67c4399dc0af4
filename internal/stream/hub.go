package stream

import (
	"sync"
)

const subscriberBuffer = 8

// Hub fans out per-user payloads to connected dashboard clients. Delivery is
// best effort: a subscriber that cannot keep up drops messages rather than
// blocking the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint]map[chan []byte]struct{}
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		subs: make(map[uint]map[chan []byte]struct{}),
	}
}

// Subscribe registers a new subscriber for a user and returns its channel
func (h *Hub) Subscribe(userID uint) chan []byte {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan []byte]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel
func (h *Hub) Unsubscribe(userID uint, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subs[userID]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	if len(subs) == 0 {
		delete(h.subs, userID)
	}
	close(ch)
}

// Publish sends a payload to every subscriber of a user without blocking
func (h *Hub) Publish(userID uint, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[userID] {
		select {
		case ch <- payload:
		default:
		}
	}
}

// SubscriberCount returns the number of connected subscribers for a user
func (h *Hub) SubscriberCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
