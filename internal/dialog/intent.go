package dialog

import (
	"fmt"
	"strings"
)

// Intent is the three-way classification of the caller's latest utterance.
type Intent string

const (
	IntentInterested    Intent = "interested"
	IntentNotInterested Intent = "not_interested"
	IntentNeutral       Intent = "neutral"
)

// ParseIntent normalizes a raw model label against the closed set. Anything
// outside it, empty or multi-word included, coerces to neutral: the state
// machine must never branch on an unrecognized label.
func ParseIntent(raw string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case IntentInterested:
		return IntentInterested
	case IntentNotInterested:
		return IntentNotInterested
	default:
		return IntentNeutral
	}
}

// classifierPrompt instructs the model to label only the most recent caller
// message, one word, no prose.
func classifierPrompt(lastMsg string) string {
	return strings.TrimSpace(fmt.Sprintf(`
You are an intent classifier.
Based ONLY on the customer's last message:
%q
Classify intent strictly:
- "interested": clearly wants to proceed
- "not_interested": clearly declines
- "neutral": otherwise
Respond with one word: interested, not_interested, or neutral.`, lastMsg))
}
