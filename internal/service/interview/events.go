package interview

import (
	"sync"

	model "github.com/shipwise/intake/internal/model/interview"
)

// Event is published for every turn committed to a session, so observers
// (websocket, SSE) can follow an interview live.
type Event struct {
	SessionID     string       `json:"sessionId"`
	Turn          model.Turn   `json:"turn"`
	Status        model.Status `json:"status"`
	QuestionIndex int          `json:"questionIndex"`
}

// Hub fans turn events out to per-session subscribers. Slow subscribers
// miss events rather than block the advance path.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers for a session's events. The returned cancel func must
// be called to release the subscription.
func (h *Hub) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan Event]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[sessionID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, sessionID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of its session.
func (h *Hub) Publish(evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[evt.SessionID] {
		select {
		case ch <- evt:
		default:
		}
	}
}
