package tts

import (
	"context"
	"sync"

	"github.com/AlexanderWiman/verlo-websocket/domain/repositories"
)

// MockTextToSpeech is a test double. By default it returns the text bytes
// themselves as the "audio" so tests can verify fragment routing.
type MockTextToSpeech struct {
	Audio []byte
	Err   error
	// SynthesizeFunc, when set, overrides Audio/Err.
	SynthesizeFunc func(ctx context.Context, text, voiceID string) ([]byte, error)

	mu    sync.Mutex
	calls int
}

var _ repositories.TextToSpeech = (*MockTextToSpeech)(nil)

func (m *MockTextToSpeech) Synthesize(ctx context.Context, text string, voiceID string) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, voiceID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Audio != nil {
		return m.Audio, nil
	}
	return []byte(text), nil
}

// Calls reports how many times Synthesize was invoked.
func (m *MockTextToSpeech) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
