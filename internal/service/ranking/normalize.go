package ranking

import "strings"

// Normalize returns the canonical comparison form of text: surrounding
// whitespace trimmed and everything lower-cased. Internal spacing is left
// intact so multi-word phrases stay matchable as substrings.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
