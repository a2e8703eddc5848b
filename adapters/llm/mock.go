package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/AlexanderWiman/verlo-websocket/domain/repositories"
)

// MockTranslator is a test double. By default it echoes the input wrapped
// in a marker so tests can assert which path produced a value.
type MockTranslator struct {
	Translation string
	Err         error
	// TranslateFunc, when set, overrides Translation/Err.
	TranslateFunc func(ctx context.Context, text, fromLanguage, toLanguage string) (string, error)

	mu    sync.Mutex
	calls int
}

var _ repositories.Translator = (*MockTranslator)(nil)

func (m *MockTranslator) Translate(ctx context.Context, text string, fromLanguage string, toLanguage string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, fromLanguage, toLanguage)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if m.Translation != "" {
		return m.Translation, nil
	}
	return fmt.Sprintf("[%s->%s] %s", fromLanguage, toLanguage, text), nil
}

// Calls reports how many times Translate was invoked.
func (m *MockTranslator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
