// Package signal is the change-notification mechanism between controllers
// and the presentation layer: controllers broadcast after publishing a new
// state snapshot, subscribers re-read the snapshot when woken.
package signal

import "sync"

// Hub fans a coalescing wake-up signal out to subscribers. Notifications
// carry no payload; a slow subscriber sees at least one wake-up for any
// burst of changes.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan struct{})}
}

// Subscribe returns a wake-up channel and a cancel function. The channel
// is buffered; Broadcast never blocks on it.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan struct{}, 1)
	h.subs[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

func (h *Hub) Broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
