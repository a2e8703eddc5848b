package translate

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{
		"Hej, hur mår du?",
		"HELLO WORLD!!!",
		"  spaced   out  text  ",
		"日本語のテキスト。",
		strings.Repeat("abc ", 100),
	}

	for _, input := range inputs {
		once := NormalizeText(input)
		twice := NormalizeText(once)
		if once != twice {
			t.Errorf("NormalizeText not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestNormalizeTextStripsPunctuationCaseAndSpacing(t *testing.T) {
	a := NormalizeText("Hej, hur mår du?")
	b := NormalizeText("hej hur mår du")
	c := NormalizeText("HEJ! HUR... MÅR DU")

	if a != b || b != c {
		t.Errorf("Texts differing only in case/punctuation/spacing should normalize equal: %q %q %q", a, b, c)
	}

	if a != "hejhurmårdu" {
		t.Errorf("Unexpected normalization result: %q", a)
	}
}

func TestNormalizeTextTruncates(t *testing.T) {
	long := strings.Repeat("a", 500)
	normalized := NormalizeText(long)

	if len([]rune(normalized)) != 120 {
		t.Errorf("Expected 120 characters, got %d", len([]rune(normalized)))
	}
}

func TestCacheKeyFormat(t *testing.T) {
	key := CacheKey("sv", "en", "Hej!")
	if key != "t:sv:en:hej" {
		t.Errorf("Unexpected cache key: %q", key)
	}
}

func TestCacheKeyCollidesOnTranscriptionNoise(t *testing.T) {
	a := CacheKey("sv", "en", "Hej, hur mår du?")
	b := CacheKey("sv", "en", "hej hur mår du")

	if a != b {
		t.Errorf("Keys should collide for transcription noise: %q != %q", a, b)
	}
}

func TestCacheKeyDistinguishesLanguagePairs(t *testing.T) {
	a := CacheKey("sv", "en", "hej")
	b := CacheKey("sv", "de", "hej")

	if a == b {
		t.Error("Keys for different language pairs should differ")
	}
}

func TestCacheTTLBoundary(t *testing.T) {
	tests := []struct {
		text string
		want time.Duration
	}{
		{"one two three four five", 24 * time.Hour},
		{"one two three four five six", time.Hour},
		{"hej", 24 * time.Hour},
		{"", 24 * time.Hour},
	}

	for _, tt := range tests {
		if got := CacheTTL(tt.text); got != tt.want {
			t.Errorf("CacheTTL(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
