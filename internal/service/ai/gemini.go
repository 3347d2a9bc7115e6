package ai

import (
	"context"
	"fmt"
	"time"

	genai "google.golang.org/genai"

	"github.com/shipwise/intake/internal/config"
	"github.com/shipwise/intake/internal/logging"
	"github.com/shipwise/intake/internal/model/interview"
)

// GeminiGenerator runs completions through the official genai client.
// Gemini can be pinned to application/json output, so no sentinel fallback
// is needed on this path.
type GeminiGenerator struct {
	cli     *genai.Client
	model   string
	timeout time.Duration
	log     *logging.Logger
}

// NewGeminiGenerator builds the client. The API key may also come from the
// environment the genai SDK reads itself.
func NewGeminiGenerator(ctx context.Context, cfg config.AIConfig, log *logging.Logger) (*GeminiGenerator, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if cfg.GeminiModel == "" {
		return nil, fmt.Errorf("gemini model is required")
	}

	return &GeminiGenerator{
		cli:     cli,
		model:   cfg.GeminiModel,
		timeout: cfg.Timeout,
		log:     log.Sub("ai"),
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, def interview.Definition, history []interview.Turn, missing []interview.Slot) (Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	full := buildSystemPrompt(def, missing) + "\n\nConversation so far:\n" + transcript(history)

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return Reply{}, fmt.Errorf("running gemini completion: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Reply{}, fmt.Errorf("gemini returned an empty candidate")
	}

	reply := parseReply(resp.Candidates[0].Content.Parts[0].Text)
	g.log.Debug().
		Str("definition", def.Name).
		Int("missing", len(missing)).
		Bool("complete", reply.Complete).
		Msg("generated reply")
	return reply, nil
}
