package interview

import "fmt"

// Definition configures one interview: how it opens, how the completion
// service is briefed, and which facts it must collect. Running a different
// interview is a matter of loading a different definition, not new code.
type Definition struct {
	Name            string `json:"name" yaml:"name"`
	OpeningQuestion string `json:"openingQuestion" yaml:"opening_question"`
	SystemPrompt    string `json:"systemPrompt" yaml:"system_prompt"`
	ClosingMessage  string `json:"closingMessage" yaml:"closing_message"`
	Slots           Schema `json:"slots" yaml:"slots"`
}

// Validate checks structural requirements before a definition is used.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("definition name is required")
	}
	if d.OpeningQuestion == "" {
		return fmt.Errorf("definition %q: opening question is required", d.Name)
	}
	seen := make(map[string]struct{}, len(d.Slots))
	for _, slot := range d.Slots {
		if slot.Name == "" {
			return fmt.Errorf("definition %q: slot with empty name", d.Name)
		}
		if _, dup := seen[slot.Name]; dup {
			return fmt.Errorf("definition %q: duplicate slot %q", d.Name, slot.Name)
		}
		seen[slot.Name] = struct{}{}
	}
	return nil
}

// Default returns the shipping-intake interview the service ships with.
func Default() Definition {
	return Definition{
		Name:            "shipping-intake",
		OpeningQuestion: "What can I help you ship?",
		SystemPrompt: "You are interviewing someone about their project. " +
			"Based on their responses, ask ONE specific follow-up question that helps collect the facts still missing. " +
			"Be concise and friendly. Once every required fact has been collected, conclude the interview with a brief summary.",
		ClosingMessage: "Interview complete! Responses saved.",
		Slots: Schema{
			{Name: "name", Hint: "the person's name"},
			{Name: "email", Hint: "a contact email address"},
			{Name: "project", Hint: "what they are planning to ship", FillOnAnswer: true},
			{Name: "timeline", Hint: "the timeframe for the project"},
		},
	}
}
