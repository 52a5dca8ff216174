// Package reply composes the localized text answer for a resolved intent.
//
// Templates are selected by the target language only, never by the language
// the question was asked in. Composition never fails: anything that is not a
// matched commodity gets a fixed localized string.
package reply

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/mandirate/internal/catalog"
	"github.com/nadzzz/mandirate/internal/intent"
	"github.com/nadzzz/mandirate/internal/lang"
)

// Input is everything the composer needs for one reply.
type Input struct {
	Resolution intent.Resolution
	Normalized string
	Quantity   int
	UnitPrice  decimal.Decimal
	Target     lang.Code
}

// Output is a composed reply.
type Output struct {
	Text       string
	IsPrice    bool
	WantsTotal bool
	Total      decimal.Decimal // zero unless WantsTotal
}

// WantsTotal reports whether normalized text asks for a total cost. Triggers
// count only as whole words: "kul" inside "bilkul" does not.
func WantsTotal(normalized string) bool {
	for _, t := range totalTriggers {
		if containsWord(normalized, t) {
			return true
		}
	}
	return false
}

// containsWord reports whether word occurs in s with no letter or combining
// mark directly on either side. Marks matter for Devanagari, where a vowel
// sign or virama joins characters into one word.
func containsWord(s, word string) bool {
	for start := 0; start < len(s); {
		i := strings.Index(s[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)

		before, _ := utf8.DecodeLastRuneInString(s[:i])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		start = i + size
	}
	return false
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsMark(r))
}

// Compose renders the reply for in.
func Compose(in Input) Output {
	target := in.Target
	book, ok := phrasebooks[target]
	if !ok {
		target = lang.Default
		book = phrasebooks[target]
	}

	switch in.Resolution.Kind {
	case intent.Matched:
	case intent.Greeting:
		return Output{Text: book.Greeting}
	default:
		return Output{Text: book.Apology}
	}

	e := in.Resolution.Entry
	name := e.Name(target)
	unit := unitLabel(book, e.Unit)
	price := in.UnitPrice
	if price.IsZero() {
		price = e.UnitPrice
	}

	if !WantsTotal(in.Normalized) {
		return Output{
			Text:    fmt.Sprintf(book.Rate, name, price.String(), unit),
			IsPrice: true,
		}
	}

	qty := in.Quantity
	if qty <= 0 {
		qty = intent.DefaultQuantity
	}
	total := price.Mul(decimal.NewFromInt(int64(qty)))
	return Output{
		Text:       fmt.Sprintf(book.Total, qty, unit, name, total.String(), price.String(), unit),
		IsPrice:    true,
		WantsTotal: true,
		Total:      total,
	}
}

func unitLabel(book phrasebook, u catalog.Unit) string {
	if l, ok := book.Units[string(u)]; ok {
		return l
	}
	return string(u)
}
