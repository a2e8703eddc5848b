package translate

import "strings"

// DefaultMaxFragmentLen bounds fragment length for parallel synthesis.
const DefaultMaxFragmentLen = 40

// SplitText packs words greedily into fragments of at most maxLen
// characters. A single word longer than maxLen becomes its own oversized
// fragment; words are never split. Joining the result with single spaces
// reproduces the input modulo internal multi-spacing.
func SplitText(text string, maxLen int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	fragments := make([]string, 0, len(words))
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+len(word)+1 <= maxLen {
			current += " " + word
			continue
		}
		fragments = append(fragments, current)
		current = word
	}
	return append(fragments, current)
}
