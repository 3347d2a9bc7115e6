package store

import (
	"context"
	"sync"
	"time"

	"github.com/shipwise/intake/internal/model/interview"
)

// MemoryStore keeps session state in an in-memory map, suitable for tests
// and single-process deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*interview.Session
}

// NewMemoryStore bootstraps an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*interview.Session)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*interview.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return session.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, session *interview.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.sessions[session.ID]
	switch {
	case !exists && session.Version != 0:
		return ErrConflict
	case exists && stored.Version != session.Version:
		return ErrConflict
	}

	session.Version++
	session.UpdatedAt = time.Now().UTC()
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[sessionID]
	return ok, nil
}
