package intent

import (
	"strings"

	"github.com/nadzzz/mandirate/internal/catalog"
)

// Kind classifies a resolution.
type Kind int

const (
	Unresolved Kind = iota
	Matched
	Greeting
)

func (k Kind) String() string {
	switch k {
	case Matched:
		return "matched"
	case Greeting:
		return "greeting"
	default:
		return "unresolved"
	}
}

// Resolution is the outcome of matching one normalized utterance.
type Resolution struct {
	Kind  Kind
	Entry catalog.Entry // set when Kind == Matched
	Alias string        // the alias that won
}

// queryVocabulary holds words users put around a commodity name that contain
// a Latin alias ("price" contains "rice"). They are blanked before scanning.
var queryVocabulary = []string{"prices", "price", "priced", "pricing"}

var greetings = []string{"namaste", "namaskar", "hello", "hi there", "नमस्ते", "नमस्कार"}

// Matcher finds which catalog entry an utterance refers to.
type Matcher struct {
	cat     *catalog.Catalog
	aliases []catalog.Alias
}

// NewMatcher creates a matcher over an immutable catalog.
func NewMatcher(cat *catalog.Catalog) *Matcher {
	return &Matcher{cat: cat, aliases: cat.Aliases()}
}

// Catalog returns the catalog the matcher scans.
func (m *Matcher) Catalog() *catalog.Catalog { return m.cat }

// Match resolves normalized text. Every alias contained in the text is a
// candidate; the longest alias wins and ties go to the entry (then alias)
// declared first in the catalog.
func (m *Matcher) Match(normalized string) Resolution {
	latinText := maskVocabulary(normalized)

	best := -1
	for i, a := range m.aliases {
		haystack := normalized
		if a.Latin {
			haystack = latinText
		}
		if !strings.Contains(haystack, a.Text) {
			continue
		}
		if best < 0 || longer(a, m.aliases[best]) {
			best = i
		}
	}

	if best >= 0 {
		a := m.aliases[best]
		return Resolution{Kind: Matched, Entry: m.cat.At(a.Entry), Alias: a.Text}
	}

	for _, g := range greetings {
		if strings.Contains(normalized, g) {
			return Resolution{Kind: Greeting, Alias: g}
		}
	}
	return Resolution{Kind: Unresolved}
}

// longer reports whether a beats b: strictly longer in runes, or equally long
// and declared earlier. Aliases arrive in catalog order, so an equal-length
// later candidate never wins.
func longer(a, b catalog.Alias) bool {
	return len([]rune(a.Text)) > len([]rune(b.Text))
}

// maskVocabulary blanks query words so their letters cannot satisfy an alias.
// Byte length is preserved.
func maskVocabulary(s string) string {
	for _, w := range queryVocabulary {
		if strings.Contains(s, w) {
			s = strings.ReplaceAll(s, w, strings.Repeat(" ", len(w)))
		}
	}
	return s
}
