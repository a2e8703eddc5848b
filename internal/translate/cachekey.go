package translate

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	// Normalized key text is capped so pathological transcripts cannot
	// produce unbounded keys.
	normalizedTextMaxLen = 120

	// Utterances of at most this many words are considered common phrases
	// and cached ten times longer.
	shortPhraseWordLimit = 5

	shortPhraseTTL = 24 * time.Hour
	longPhraseTTL  = time.Hour
)

// NormalizeText lower-cases text and strips everything that is not a
// Unicode letter or digit, truncating the result to 120 characters. Two
// transcripts differing only in casing, punctuation or spacing normalize
// to the same string, so transcription noise does not fragment the cache.
func NormalizeText(text string) string {
	var b strings.Builder
	count := 0
	for _, r := range strings.ToLower(text) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(r)
		count++
		if count == normalizedTextMaxLen {
			break
		}
	}
	return b.String()
}

// CacheKey derives the translation cache key for a language pair and
// source text. Keys are content-derived, never session-derived: two
// sessions translating identical text share one entry.
func CacheKey(fromLang, toLang, text string) string {
	return fmt.Sprintf("t:%s:%s:%s", fromLang, toLang, NormalizeText(text))
}

// CacheTTL selects the expiry for a new cache entry based on the original,
// untruncated text. The word-count boundary is inclusive at five.
func CacheTTL(text string) time.Duration {
	if len(strings.Fields(text)) <= shortPhraseWordLimit {
		return shortPhraseTTL
	}
	return longPhraseTTL
}
