package repositories

import "context"

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// TranscribeAudio converts audio data to text. The language code is a
	// hint for the recognizer, e.g. "sv" or "en".
	TranscribeAudio(ctx context.Context, audioData []byte, languageCode string) (string, error)
}
