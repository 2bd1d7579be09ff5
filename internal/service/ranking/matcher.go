package ranking

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Matches reports whether phrase occurs in haystack. Both arguments are
// expected in normalized form.
//
// Multi-word phrases match by substring containment: they are specific enough
// that containment cannot produce harmful false positives. Single tokens must
// match as whole words, so a short term like "app" never matches inside
// "approval". Token boundaries are any non-alphanumeric rune or the string
// edges. An empty phrase never matches.
func Matches(haystack, phrase string) bool {
	if phrase == "" {
		return false
	}
	if strings.Contains(phrase, " ") {
		return strings.Contains(haystack, phrase)
	}
	return containsWord(haystack, phrase)
}

func containsWord(haystack, word string) bool {
	for from := 0; ; {
		i := strings.Index(haystack[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		if boundaryBefore(haystack, start) && boundaryAfter(haystack, end) {
			return true
		}
		from = start + 1
	}
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return !isWordRune(r)
}

func boundaryAfter(s string, idx int) bool {
	if idx >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[idx:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
