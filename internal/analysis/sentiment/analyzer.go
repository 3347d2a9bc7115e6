// Package sentiment tags user answers with a coarse sentiment label.
// The tag is advisory metadata carried into the archived record; the
// interview state machine never branches on it.
package sentiment

import "strings"

// Label is the sentiment attached to a user turn.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

var keywordBuckets = map[Label][]string{
	Positive: {
		"great", "awesome", "amazing", "excited", "love", "happy", "perfect",
		"thanks", "thank you", "wonderful", "fantastic", "glad", "can't wait",
		"looking forward", "brilliant", "excellent",
	},
	Negative: {
		"worried", "concerned", "problem", "frustrated", "unhappy", "delay",
		"late", "urgent", "stress", "afraid", "annoyed", "angry", "bad",
		"difficult", "impossible", "disappointed", "broken",
	},
}

// Analyze scores an utterance against the keyword buckets and returns the
// dominant label. Exclamation marks nudge an otherwise tied result positive,
// matching how people actually type enthusiasm.
func Analyze(text string) Label {
	lowered := strings.ToLower(text)

	scores := map[Label]int{}
	for label, keywords := range keywordBuckets {
		for _, kw := range keywords {
			scores[label] += strings.Count(lowered, kw)
		}
	}
	if strings.Contains(text, "!") {
		scores[Positive]++
	}

	switch {
	case scores[Positive] == 0 && scores[Negative] == 0:
		return Neutral
	case scores[Positive] >= scores[Negative]:
		return Positive
	default:
		return Negative
	}
}
