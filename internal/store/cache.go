package store

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shipwise/intake/internal/model/interview"
)

// CachedStore is a read-through LRU decorator over another Store. It keeps
// recently touched sessions in memory so the hot advance path skips a
// database read. Entries are cloned on the way in and out; cached state is
// never aliased to caller state.
type CachedStore struct {
	inner Store
	cache *lru.Cache[string, *interview.Session]
}

// NewCachedStore wraps inner with an LRU of the given size.
func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New[string, *interview.Session](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

func (s *CachedStore) Load(ctx context.Context, sessionID string) (*interview.Session, error) {
	if cached, ok := s.cache.Get(sessionID); ok {
		return cached.Clone(), nil
	}
	session, err := s.inner.Load(ctx, sessionID)
	if err != nil {
		// Corrupt loads carry the stored id and version so start can
		// reinitialize; that carrier must survive the decorator.
		if errors.Is(err, ErrCorrupt) {
			return session, err
		}
		return nil, err
	}
	s.cache.Add(sessionID, session.Clone())
	return session, nil
}

func (s *CachedStore) Save(ctx context.Context, session *interview.Session) error {
	if err := s.inner.Save(ctx, session); err != nil {
		// A conflicting write means the cached entry is stale too.
		if err == ErrConflict {
			s.cache.Remove(session.ID)
		}
		return err
	}
	s.cache.Add(session.ID, session.Clone())
	return nil
}

func (s *CachedStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	if s.cache.Contains(sessionID) {
		return true, nil
	}
	return s.inner.Exists(ctx, sessionID)
}
