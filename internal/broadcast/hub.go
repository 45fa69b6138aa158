// Package broadcast fans commodity price events out to live subscribers.
// Delivery is at-most-once and best-effort: no acknowledgments, no replay. A
// subscriber that misses an update catches up through the full snapshot it
// receives on its next connect.
package broadcast

import (
	"sync"
)

// Event is one message pushed to subscribers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	EventInitial = "initial"
	EventUpdate  = "update"
)

// Hub is the registry of open subscriber connections. List mutation happens
// under the mutex from many connection lifecycles at once; publishing holds
// the same mutex so a concurrent disconnect cannot corrupt iteration.
type Hub struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]chan Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]chan Event)}
}

// Subscribe registers a new connection and returns its id and event channel.
// The channel is closed when the subscriber is removed.
func (h *Hub) Subscribe(buffer int) (uint64, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	ch := make(chan Event, buffer)
	h.subs[h.next] = ch
	return h.next, ch
}

// Unsubscribe removes a subscriber. Safe to call more than once.
func (h *Hub) Unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish pushes ev to every open subscriber and returns the delivered count.
// Sends never block: a subscriber whose buffer is full is treated as broken
// and pruned on the spot, rather than being health-checked up front.
func (h *Hub) Publish(ev Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delivered := 0
	for id, ch := range h.subs {
		select {
		case ch <- ev:
			delivered++
		default:
			delete(h.subs, id)
			close(ch)
		}
	}
	return delivered
}

// Len reports the number of open subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
