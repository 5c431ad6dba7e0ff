package brain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// MockAdapter provides deterministic local completions when no model service
// is configured. Classification requests get a plausible label, everything
// else gets a short canned reply, so a keyless dev loop still exercises every
// controller branch.
type MockAdapter struct{}

func NewMockAdapter() *MockAdapter { return &MockAdapter{} }

func (a *MockAdapter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if isClassification(req) {
		return mockLabel(req), nil
	}

	last := lastUserContent(req)
	if last == "" {
		return "I am listening.", nil
	}
	return fmt.Sprintf("I hear you on %q. Could you tell me a bit more?", last), nil
}

func isClassification(req CompletionRequest) bool {
	for _, m := range req.Messages {
		if m.Role == "system" && strings.Contains(strings.ToLower(m.Content), "intent classifier") {
			return true
		}
	}
	return false
}

func mockLabel(req CompletionRequest) string {
	text := strings.ToLower(quotedUtterance(req.Messages[len(req.Messages)-1].Content))
	switch {
	case strings.Contains(text, "not interested") || strings.Contains(text, "stop calling"):
		return "not_interested"
	case strings.Contains(text, "interested") || strings.Contains(text, "sign me up"):
		return "interested"
	default:
		return "neutral"
	}
}

// quotedUtterance pulls the quoted customer message out of a classification
// prompt. The prompt's instruction lines spell out the labels themselves, so
// matching keywords against the whole prompt would label everything
// interested.
func quotedUtterance(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 2 || !strings.HasPrefix(line, `"`) || !strings.HasSuffix(line, `"`) {
			continue
		}
		if s, err := strconv.Unquote(line); err == nil {
			return s
		}
	}
	return prompt
}

func lastUserContent(req CompletionRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" && strings.TrimSpace(req.Messages[i].Content) != "" {
			return strings.TrimSpace(req.Messages[i].Content)
		}
	}
	return ""
}
