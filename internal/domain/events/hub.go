package events

import "sync"

// subscriberBuffer is sized so a briefly stalled SSE writer does not
// block appends; events beyond it are dropped for that subscriber, who
// can recover from the stream listing.
const subscriberBuffer = 16

// Hub fans committed events out to per-case live subscribers.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for one case's stream. The returned
// cancel func must be called when the listener goes away; it closes the
// channel.
func (h *Hub) Subscribe(caseULID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.subscribers[caseULID] == nil {
		h.subscribers[caseULID] = make(map[chan Event]struct{})
	}
	h.subscribers[caseULID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subscribers[caseULID]; ok {
			if _, present := set[ch]; present {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subscribers, caseULID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every live subscriber of its case.
// Delivery is best-effort: full subscriber buffers are skipped.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers[event.CaseULID] {
		select {
		case ch <- event:
		default:
		}
	}
}
