package interview

import "time"

// Record is the immutable snapshot archived when an interview completes.
// It lives in separate storage from the mutable session state so a later
// start can never corrupt it.
type Record struct {
	ArchiveID  string          `json:"archiveId"`
	SessionID  string          `json:"sessionId"`
	Definition string          `json:"definition"`
	History    []Turn          `json:"history"`
	Slots      map[string]bool `json:"slots"`
	Summary    string          `json:"summary,omitempty"`
	StartedAt  time.Time       `json:"startedAt"`
	ArchivedAt time.Time       `json:"archivedAt"`
}

// NewRecord snapshots a completed session. The archival identifier is
// assigned by the archiver on write.
func NewRecord(s *Session, archivedAt time.Time) Record {
	cp := s.Clone()
	return Record{
		SessionID:  cp.ID,
		Definition: cp.Definition,
		History:    cp.History,
		Slots:      cp.Slots,
		Summary:    cp.Summary,
		StartedAt:  cp.CreatedAt,
		ArchivedAt: archivedAt,
	}
}
