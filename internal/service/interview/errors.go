package interview

import "errors"

var (
	// ErrSessionNotFound means advance was called for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExists means start was called with an id that is already taken.
	ErrSessionExists = errors.New("session already exists")
	// ErrSessionComplete means the session is terminal; no further mutation
	// is permitted.
	ErrSessionComplete = errors.New("session already complete")
	// ErrMissingInput means the chat action arrived without an utterance.
	ErrMissingInput = errors.New("user response is required")
	// ErrGenerationFailed wraps any completion-backend failure. The session
	// state is untouched, so the caller may retry the same utterance.
	ErrGenerationFailed = errors.New("completion generation failed")
)
