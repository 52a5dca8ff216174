// Package intent turns a raw utterance into a resolved commodity intent.
//
// Every function here is pure: the same input always yields the same output.
package intent

import (
	"strings"
	"unicode"
)

// Normalize trims text and lower-cases its Latin letters. Runes from other
// scripts (Devanagari and the like) pass through untouched.
func Normalize(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Latin, r) {
			return unicode.ToLower(r)
		}
		return r
	}, strings.TrimSpace(text))
}
