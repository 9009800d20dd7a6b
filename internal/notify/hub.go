package notify

import (
	"context"
	"sync"
)

// subscriberBuffer is how many undelivered notifications a subscriber may
// hold before further ones are dropped for it.
const subscriberBuffer = 16

// Hub fans notifications out to live per-project subscribers. Delivery is
// fire-and-forget: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Notification]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Notification]struct{})}
}

// Subscribe registers for notifications of projectID. The returned cancel
// func unregisters and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(projectID string) (<-chan Notification, func()) {
	ch := make(chan Notification, subscriberBuffer)

	h.mu.Lock()
	if h.subs[projectID] == nil {
		h.subs[projectID] = make(map[chan Notification]struct{})
	}
	h.subs[projectID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[projectID], ch)
			if len(h.subs[projectID]) == 0 {
				delete(h.subs, projectID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

func (h *Hub) Notify(_ context.Context, n Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[n.ProjectID] {
		select {
		case ch <- n:
		default:
		}
	}
}

// Subscribers returns the number of live subscribers for projectID.
func (h *Hub) Subscribers(projectID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[projectID])
}
