package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/shipwise/intake/internal/config"
	"github.com/shipwise/intake/internal/logging"
	"github.com/shipwise/intake/internal/model/interview"
)

// keep the prompt bounded on pathological sessions; interviews are short,
// so this is rarely hit
const historyLimit = 20

// ArkGenerator runs completions through an eino chain backed by an Ark
// chat model.
type ArkGenerator struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
	log     *logging.Logger
}

// NewArkGenerator compiles the prompt-template -> chat-model chain.
func NewArkGenerator(ctx context.Context, cfg config.AIConfig, log *logging.Logger) (*ArkGenerator, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile completion chain: %w", err)
	}

	return &ArkGenerator{
		chain:   runnable,
		timeout: cfg.Timeout,
		log:     log.Sub("ai"),
	}, nil
}

func (g *ArkGenerator) Generate(ctx context.Context, def interview.Definition, history []interview.Turn, missing []interview.Slot) (Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	query := ""
	prior := history
	if n := len(history); n > 0 && history[n-1].Role == interview.RoleUser {
		query = history[n-1].Content
		prior = history[:n-1]
	}

	input := map[string]any{
		"system":  buildSystemPrompt(def, missing),
		"history": toSchemaMessages(prior),
		"query":   query,
	}

	response, err := g.chain.Invoke(ctx, input)
	if err != nil {
		return Reply{}, fmt.Errorf("running completion chain: %w", err)
	}

	reply := parseReply(response.Content)
	g.log.Debug().
		Str("definition", def.Name).
		Int("missing", len(missing)).
		Bool("complete", reply.Complete).
		Msg("generated reply")
	return reply, nil
}

func toSchemaMessages(history []interview.Turn) []*schema.Message {
	if len(history) == 0 {
		return nil
	}

	startIdx := 0
	if len(history) > historyLimit {
		startIdx = len(history) - historyLimit
	}

	messages := make([]*schema.Message, 0, len(history)-startIdx)
	for _, turn := range history[startIdx:] {
		switch turn.Role {
		case interview.RoleUser:
			messages = append(messages, schema.UserMessage(turn.Content))
		case interview.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return messages
}
