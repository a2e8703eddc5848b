package stt

import (
	"context"
	"sync"

	"github.com/AlexanderWiman/verlo-websocket/domain/repositories"
)

// MockSpeechToText is a test double that returns a fixed transcript or a
// custom function's result.
type MockSpeechToText struct {
	Transcript string
	Err        error
	// TranscribeFunc, when set, overrides Transcript/Err.
	TranscribeFunc func(ctx context.Context, audioData []byte, languageCode string) (string, error)

	mu    sync.Mutex
	calls int
}

var _ repositories.SpeechToText = (*MockSpeechToText)(nil)

func (m *MockSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, languageCode string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioData, languageCode)
	}
	return m.Transcript, m.Err
}

// Calls reports how many times TranscribeAudio was invoked.
func (m *MockSpeechToText) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
