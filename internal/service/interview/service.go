// Package interview implements the interview state machine: session
// creation, turn processing, slot fulfilment and finalization.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shipwise/intake/internal/analysis/sentiment"
	"github.com/shipwise/intake/internal/archive"
	"github.com/shipwise/intake/internal/logging"
	model "github.com/shipwise/intake/internal/model/interview"
	"github.com/shipwise/intake/internal/service/ai"
	"github.com/shipwise/intake/internal/store"
)

// Service owns the NEW -> ACTIVE -> COMPLETE lifecycle of interview
// sessions. All mutation goes through a per-session mutex plus the store's
// optimistic version check, so duplicate client retries cannot interleave.
type Service struct {
	def       model.Definition
	store     store.Store
	generator ai.Generator
	archiver  archive.Archiver
	hub       *Hub
	log       *logging.Logger

	locks sync.Map // session id -> *sync.Mutex
	now   func() time.Time
}

// NewService wires the state machine to its collaborators.
func NewService(def model.Definition, st store.Store, gen ai.Generator, arch archive.Archiver, log *logging.Logger) *Service {
	return &Service{
		def:       def,
		store:     st,
		generator: gen,
		archiver:  arch,
		hub:       NewHub(),
		log:       log.Sub("interview"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Definition returns the interview this service conducts.
func (s *Service) Definition() model.Definition {
	return s.def
}

// Hub exposes the turn event feed for live observers.
func (s *Service) Hub() *Hub {
	return s.hub
}

// StartResult is returned by Start.
type StartResult struct {
	SessionID     string
	Question      string
	QuestionIndex int
}

// Start creates a brand-new session opened by the definition's first
// question. Supplying an id that is already taken fails with
// ErrSessionExists; starting never resurrects or overwrites an existing
// interview. An empty id lets the service mint one.
func (s *Service) Start(ctx context.Context, sessionID string) (StartResult, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	unlock := s.lock(sessionID)
	defer unlock()

	version := int64(0)
	switch existing, err := s.store.Load(ctx, sessionID); {
	case err == nil:
		return StartResult{}, ErrSessionExists
	case errors.Is(err, store.ErrNotFound):
		// fresh id
	case errors.Is(err, store.ErrCorrupt):
		// Unreadable state is safe to reinitialize on start; the broken row
		// is overwritten through the normal version check.
		s.log.Warn().Str("session", sessionID).Msg("reinitializing corrupt session state")
		version = existing.Version
	default:
		return StartResult{}, fmt.Errorf("loading session: %w", err)
	}

	now := s.now()
	opening := model.Turn{
		Role:      model.RoleAssistant,
		Content:   s.def.OpeningQuestion,
		CreatedAt: now,
	}
	session := &model.Session{
		ID:         sessionID,
		Definition: s.def.Name,
		History:    []model.Turn{opening},
		Slots:      s.def.Slots.InitialSlots(),
		Status:     model.StatusActive,
		Version:    version,
		CreatedAt:  now,
	}

	if err := s.store.Save(ctx, session); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return StartResult{}, ErrSessionExists
		}
		return StartResult{}, fmt.Errorf("saving session: %w", err)
	}

	s.log.Info().Str("session", sessionID).Str("definition", s.def.Name).Msg("interview started")
	s.hub.Publish(Event{SessionID: sessionID, Turn: opening, Status: session.Status, QuestionIndex: 0})

	return StartResult{SessionID: sessionID, Question: s.def.OpeningQuestion, QuestionIndex: 0}, nil
}

// AdvanceResult is returned by Advance.
type AdvanceResult struct {
	Reply         string
	Status        model.Status
	QuestionIndex int
	Summary       string
}

// Complete reports whether this turn ended the interview.
func (r AdvanceResult) Complete() bool {
	return r.Status == model.StatusComplete
}

// Advance processes one user utterance: it appends the user turn, asks the
// completion service for the next assistant utterance, updates slot
// fulfilment, and decides continue vs. complete. The user turn, assistant
// turn, slot updates and status land in a single store write; a generation
// failure therefore leaves the persisted state untouched and the same
// utterance can be retried.
func (s *Service) Advance(ctx context.Context, sessionID, utterance string) (AdvanceResult, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return AdvanceResult{}, ErrMissingInput
	}

	unlock := s.lock(sessionID)
	defer unlock()

	session, err := s.store.Load(ctx, sessionID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return AdvanceResult{}, ErrSessionNotFound
	case err != nil:
		// Corrupt state mid-interview fails loudly; fabricating fresh state
		// here would break the history invariant.
		return AdvanceResult{}, fmt.Errorf("loading session: %w", err)
	}

	if session.Status == model.StatusComplete {
		return AdvanceResult{}, ErrSessionComplete
	}

	userTurn := model.Turn{
		Role:      model.RoleUser,
		Content:   utterance,
		Sentiment: string(sentiment.Analyze(utterance)),
		CreatedAt: s.now(),
	}

	next := session.Clone()
	next.History = append(next.History, userTurn)

	missing := s.def.Slots.Missing(next.Slots)
	reply, err := s.generator.Generate(ctx, s.def, next.History, missing)
	if err != nil {
		s.log.Error().Err(err).Str("session", sessionID).Msg("completion failed")
		return AdvanceResult{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	s.applySlotUpdates(next, missing, reply)

	completed := reply.Complete || s.def.Slots.AllFulfilled(next.Slots)
	text := reply.Text
	if completed {
		// Completion is caused by full fulfilment: an explicit completion
		// signal marks the remaining slots collected.
		for name := range next.Slots {
			next.Slots[name] = true
		}
		next.Status = model.StatusComplete
		next.Summary = reply.Summary
		if text == "" {
			text = s.def.ClosingMessage
		}
	}

	assistantTurn := model.Turn{Role: model.RoleAssistant, Content: text, CreatedAt: s.now()}
	next.History = append(next.History, assistantTurn)

	if err := s.store.Save(ctx, next); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return AdvanceResult{}, fmt.Errorf("saving session: %w", store.ErrConflict)
		}
		return AdvanceResult{}, fmt.Errorf("saving session: %w", err)
	}

	index := next.QuestionIndex()
	s.hub.Publish(Event{SessionID: sessionID, Turn: userTurn, Status: next.Status, QuestionIndex: index})
	s.hub.Publish(Event{SessionID: sessionID, Turn: assistantTurn, Status: next.Status, QuestionIndex: index})

	if completed {
		s.finalize(ctx, next)
		// The interview is terminal; drop its lock entry so the map does
		// not grow with every finished session. Late arrivals mint a fresh
		// mutex and are turned away by the COMPLETE status check.
		s.locks.Delete(sessionID)
	}

	return AdvanceResult{
		Reply:         text,
		Status:        next.Status,
		QuestionIndex: index,
		Summary:       next.Summary,
	}, nil
}

// Responses returns the current state of a session for inspection.
func (s *Service) Responses(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.store.Load(ctx, sessionID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrSessionNotFound
	case err != nil:
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return session, nil
}

// applySlotUpdates flips slots false -> true, never back. The first missing
// fill-on-answer slot is fulfilled deterministically by the utterance
// itself; the rest follow the completion service's judgement.
func (s *Service) applySlotUpdates(session *model.Session, missing []model.Slot, reply ai.Reply) {
	if len(missing) > 0 && missing[0].FillOnAnswer {
		session.Slots[missing[0].Name] = true
	}
	for _, name := range reply.FulfilledSlots {
		if s.def.Slots.Has(name) {
			session.Slots[name] = true
		}
	}
}

// finalize archives the completed session at most once. The archival id is
// recorded back on the session state so a repeated call returns the same
// record instead of writing a second one. Archive failure is reported in
// logs but does not revert completion.
func (s *Service) finalize(ctx context.Context, session *model.Session) string {
	if session.ArchiveID != "" {
		return session.ArchiveID
	}

	rec := model.NewRecord(session, s.now())
	id, err := s.archiver.Archive(ctx, rec)
	if err != nil {
		s.log.Error().Err(err).Str("session", session.ID).Msg("archiving failed; completion stands")
		return ""
	}

	session.ArchiveID = id
	if err := s.store.Save(ctx, session); err != nil {
		s.log.Warn().Err(err).Str("session", session.ID).Msg("recording archival id failed")
	}

	s.log.Info().Str("session", session.ID).Str("archiveId", id).Msg("interview finalized")
	return id
}

func (s *Service) lock(sessionID string) func() {
	val, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := val.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
