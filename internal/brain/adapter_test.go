package brain

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestNewAdapterModes(t *testing.T) {
	if _, err := NewAdapter(Config{Mode: "openai"}); err == nil {
		t.Fatalf("openai mode without key should fail")
	}

	a, err := NewAdapter(Config{Mode: "auto"})
	if err != nil {
		t.Fatalf("NewAdapter(auto) error = %v", err)
	}
	if _, ok := a.(*MockAdapter); !ok {
		t.Fatalf("auto without key = %T, want *MockAdapter", a)
	}

	a, err = NewAdapter(Config{Mode: "auto", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewAdapter(auto with key) error = %v", err)
	}
	if _, ok := a.(*OpenAIAdapter); !ok {
		t.Fatalf("auto with key = %T, want *OpenAIAdapter", a)
	}

	if _, err := NewAdapter(Config{Mode: "telepathy"}); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

func TestMockClassification(t *testing.T) {
	a := NewMockAdapter()
	// Mirrors the controller's classification prompt: the instruction lines
	// name every label, so only the quoted utterance may drive the result.
	classify := func(utterance string) string {
		prompt := fmt.Sprintf(`You are an intent classifier.
Based ONLY on the customer's last message:
%q
Classify intent strictly:
- "interested": clearly wants to proceed
- "not_interested": clearly declines
- "neutral": otherwise
Respond with one word: interested, not_interested, or neutral.`, utterance)
		out, err := a.Complete(context.Background(), CompletionRequest{
			Messages: []Message{{Role: "system", Content: prompt}},
		})
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		return out
	}

	if got := classify("no thanks, not interested, stop calling"); got != "not_interested" {
		t.Fatalf("label = %q, want not_interested", got)
	}
	if got := classify("yes I'm interested"); got != "interested" {
		t.Fatalf("label = %q, want interested", got)
	}
	if got := classify("what does it cost?"); got != "neutral" {
		t.Fatalf("label = %q, want neutral", got)
	}
	if got := classify("hmm let me think"); got != "neutral" {
		t.Fatalf("label = %q, want neutral", got)
	}
}

func TestMockReplyEchoesLastUserTurn(t *testing.T) {
	a := NewMockAdapter()
	out, err := a.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: "You are a sales rep."},
			{Role: "assistant", Content: "Hello!"},
			{Role: "user", Content: "tell me about pricing"},
		},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !strings.Contains(out, "pricing") {
		t.Fatalf("reply %q should mention the user's topic", out)
	}
}

func TestMockHonorsCanceledContext(t *testing.T) {
	a := NewMockAdapter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Complete(ctx, CompletionRequest{}); err == nil {
		t.Fatalf("Complete() with canceled context should fail")
	}
}
