// Package ai adapts opaque text-completion backends to the structured
// contract the interview state machine consumes. Everything fragile about
// model output (JSON envelopes, sentinel phrases) is contained here.
package ai

import (
	"context"
	"fmt"

	"github.com/shipwise/intake/internal/config"
	"github.com/shipwise/intake/internal/logging"
	"github.com/shipwise/intake/internal/model/interview"
)

// Reply is the structured result of one completion call.
type Reply struct {
	// Text is the next assistant utterance: a follow-up question while the
	// interview continues, a closing message once it is done.
	Text string
	// FulfilledSlots names the required facts the model judges collected by
	// the conversation so far.
	FulfilledSlots []string
	// Complete signals the model considers the interview finished.
	Complete bool
	// Summary is a short recap, set only together with Complete.
	Summary string
}

// Generator is the completion service adapter: pure request/response, no
// hidden state. Implementations must respect ctx cancellation and return
// promptly on upstream failure; the caller treats every error as retryable.
type Generator interface {
	Generate(ctx context.Context, def interview.Definition, history []interview.Turn, missing []interview.Slot) (Reply, error)
}

// New builds the generator selected by configuration.
func New(ctx context.Context, cfg config.AIConfig, log *logging.Logger) (Generator, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiGenerator(ctx, cfg, log)
	case "ark", "":
		return NewArkGenerator(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", cfg.Provider)
	}
}
