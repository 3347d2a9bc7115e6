package interview

import "time"

// Status tracks the lifecycle of a session. The only transition is
// StatusActive -> StatusComplete.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusComplete Status = "COMPLETE"
)

// Turn roles. History strictly alternates, starting with the assistant's
// opening question.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single utterance in the conversation history.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Sentiment string    `json:"sentiment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session holds the mutable state of one interview conversation.
type Session struct {
	ID         string          `json:"id"`
	Definition string          `json:"definition"`
	History    []Turn          `json:"history"`
	Slots      map[string]bool `json:"slots"`
	Status     Status          `json:"status"`
	ArchiveID  string          `json:"archiveId,omitempty"`
	Summary    string          `json:"summary,omitempty"`
	Version    int64           `json:"version"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// QuestionIndex counts the user turns recorded so far. Right after Start it
// is 0; it advances by one with every accepted answer.
func (s *Session) QuestionIndex() int {
	return len(s.History) / 2
}

// Clone returns a deep copy so callers can mutate freely without aliasing
// stored state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.History = append([]Turn(nil), s.History...)
	cp.Slots = make(map[string]bool, len(s.Slots))
	for k, v := range s.Slots {
		cp.Slots[k] = v
	}
	return &cp
}
