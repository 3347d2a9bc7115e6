package ai

import (
	"encoding/json"
	"strings"
)

// completionSentinel is recognized for models that ignore the JSON envelope
// and fall back to the legacy free-text convention.
const completionSentinel = "INTERVIEW_COMPLETE"

type wireReply struct {
	Reply          string   `json:"reply"`
	FulfilledSlots []string `json:"fulfilled_slots"`
	Complete       bool     `json:"complete"`
	Summary        string   `json:"summary"`
}

// parseReply interprets raw model output. Preferred form is the JSON
// envelope requested by the system prompt; sentinel detection and plain
// text are fallbacks so a misbehaving model degrades to an ordinary
// follow-up question instead of an error.
func parseReply(raw string) Reply {
	text := strings.TrimSpace(raw)

	if candidate := stripCodeFence(text); strings.HasPrefix(candidate, "{") {
		var wire wireReply
		// An empty reply is still a usable envelope when it carries a
		// completion signal or slot updates; the caller substitutes the
		// closing message for missing text.
		if err := json.Unmarshal([]byte(candidate), &wire); err == nil &&
			(wire.Reply != "" || wire.Complete || len(wire.FulfilledSlots) > 0) {
			return Reply{
				Text:           wire.Reply,
				FulfilledSlots: wire.FulfilledSlots,
				Complete:       wire.Complete,
				Summary:        wire.Summary,
			}
		}
	}

	if idx := strings.Index(text, completionSentinel); idx >= 0 {
		summary := strings.TrimSpace(strings.TrimPrefix(text[idx+len(completionSentinel):], ":"))
		reply := Reply{Complete: true, Summary: summary}
		if summary != "" {
			reply.Text = summary
		} else {
			reply.Text = text
		}
		return reply
	}

	return Reply{Text: text}
}

// stripCodeFence unwraps ```json fenced blocks some models insist on.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
