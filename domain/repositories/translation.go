package repositories

import "context"

// Translator abstracts text translation between two languages.
type Translator interface {
	// Translate converts text from one language to another. Language
	// arguments are human-readable names ("Swedish", "English"), not codes.
	Translate(ctx context.Context, text string, fromLanguage string, toLanguage string) (string, error)
}
