package ai

import (
	"strings"

	"github.com/shipwise/intake/internal/model/interview"
)

// buildSystemPrompt briefs the model on the interview and on which required
// facts remain, and pins down the JSON envelope the reply must use.
func buildSystemPrompt(def interview.Definition, missing []interview.Slot) string {
	var b strings.Builder
	b.WriteString(def.SystemPrompt)

	if len(missing) > 0 {
		b.WriteString("\n\nFacts still missing:")
		for _, slot := range missing {
			b.WriteString("\n- ")
			b.WriteString(slot.Name)
			if slot.Hint != "" {
				b.WriteString(": ")
				b.WriteString(slot.Hint)
			}
		}
	} else {
		b.WriteString("\n\nEvery required fact has been collected. Conclude the interview.")
	}

	b.WriteString("\n\nRespond with a single JSON object and nothing else:\n")
	b.WriteString(`{"reply": "<your next question, or a closing message>", ` +
		`"fulfilled_slots": ["<names of required facts the conversation has now provided>"], ` +
		`"complete": <true once every required fact is collected>, ` +
		`"summary": "<one-paragraph recap, only when complete>"}`)
	return b.String()
}

// transcript renders history as plain text for backends that take a single
// prompt rather than a message list.
func transcript(history []interview.Turn) string {
	var b strings.Builder
	for _, turn := range history {
		switch turn.Role {
		case interview.RoleUser:
			b.WriteString("User: ")
		case interview.RoleAssistant:
			b.WriteString("Interviewer: ")
		}
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return b.String()
}
