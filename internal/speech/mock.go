package speech

import (
	"context"
	"sync"
)

// MockSynthesizer records synthesized lines and returns a stable audio path.
// Used when no ElevenLabs key is configured and in tests.
type MockSynthesizer struct {
	mu    sync.Mutex
	Lines []string
	Names []string
	Err   error
}

func NewMockSynthesizer() *MockSynthesizer { return &MockSynthesizer{} }

func (m *MockSynthesizer) Synthesize(ctx context.Context, text, name string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Lines = append(m.Lines, text)
	m.Names = append(m.Names, name)
	return "/audio/" + name + ".mp3", nil
}
