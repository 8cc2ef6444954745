package application

import (
	"strings"
	"unicode/utf8"
)

// EstimateTokens approximates the tokenizer count of s. It returns the larger
// of the whitespace word count and one token per four runes, which tracks
// BPE tokenizers closely enough for an input guard.
func EstimateTokens(s string) int {
	words := len(strings.Fields(s))
	runes := utf8.RuneCountInString(s)
	chars := (runes + 3) / 4
	if words > chars {
		return words
	}
	return chars
}
