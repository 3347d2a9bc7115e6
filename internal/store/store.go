// Package store persists per-session interview state behind a small
// keyed interface so the backing implementation is swappable.
package store

import (
	"context"
	"errors"

	"github.com/shipwise/intake/internal/model/interview"
)

var (
	// ErrNotFound means no state exists for the session id.
	ErrNotFound = errors.New("session not found")
	// ErrCorrupt means stored state exists but cannot be decoded.
	ErrCorrupt = errors.New("session state corrupt")
	// ErrConflict means the stored version advanced since the caller loaded.
	ErrConflict = errors.New("session version conflict")
)

// Store is the conversation store. Access is read-modify-write over the
// whole session state; Save performs an optimistic version check and
// rejects stale writes with ErrConflict. Version 0 means "create".
//
// When Load fails with ErrCorrupt it still returns a session carrying the
// stored id and version, so a caller that is allowed to reinitialize can
// overwrite the broken row through the normal version check.
type Store interface {
	Load(ctx context.Context, sessionID string) (*interview.Session, error)
	Save(ctx context.Context, session *interview.Session) error
	Exists(ctx context.Context, sessionID string) (bool, error)
}
