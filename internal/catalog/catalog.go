// Package catalog holds the immutable commodity reference data: canonical
// keys, multilingual aliases and baseline unit prices.
//
// A Catalog is validated once at construction. Duplicate aliases are a
// configuration defect and abort construction rather than shadowing an entry.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/mandirate/internal/lang"
)

// Key is the canonical, language-independent identifier of a commodity.
type Key string

const (
	Potato Key = "potato"
	Onion  Key = "onion"
	Tomato Key = "tomato"
	Rice   Key = "rice"
	Dal    Key = "dal"
)

// Unit is the quantity unit a price is quoted in.
type Unit string

const Kilogram Unit = "kg"

var (
	ErrDuplicateKey   = errors.New("duplicate commodity key")
	ErrDuplicateAlias = errors.New("duplicate alias")
	ErrEmptyAlias     = errors.New("empty alias")
	ErrInvalidEntry   = errors.New("invalid catalog entry")
)

// Entry is one commodity in the catalog.
type Entry struct {
	Key Key

	// Aliases are the surface strings that resolve to this entry, in
	// declaration order. Latin aliases are stored lower-cased.
	Aliases []string

	// UnitPrice is the baseline price per Unit, currency-agnostic.
	UnitPrice decimal.Decimal

	Unit Unit

	// Names are the display names used in replies, per language.
	Names map[lang.Code]string
}

// Name returns the display name in the given language, falling back to English.
func (e Entry) Name(code lang.Code) string {
	if n, ok := e.Names[code]; ok && n != "" {
		return n
	}
	return e.Names[lang.English]
}

// Alias is one alias together with the position of its entry in the catalog.
type Alias struct {
	Text  string
	Latin bool
	Entry int // index into Entries()
	Order int // index within the entry's aliases
}

// Catalog is the immutable commodity table.
type Catalog struct {
	entries []Entry
	byKey   map[Key]int
	byAlias map[string]int
	aliases []Alias
}

// New validates entries and builds a Catalog.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byKey:   make(map[Key]int, len(entries)),
		byAlias: make(map[string]int),
	}

	for _, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrInvalidEntry)
		}
		if _, dup := c.byKey[e.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, e.Key)
		}
		if !e.UnitPrice.IsPositive() {
			return nil, fmt.Errorf("%w: %s has non-positive price %s", ErrInvalidEntry, e.Key, e.UnitPrice)
		}
		if e.Names[lang.English] == "" {
			return nil, fmt.Errorf("%w: %s has no English name", ErrInvalidEntry, e.Key)
		}
		if e.Unit == "" {
			e.Unit = Kilogram
		}

		idx := len(c.entries)
		folded := make([]string, 0, len(e.Aliases))
		for order, raw := range e.Aliases {
			a := FoldAlias(raw)
			if a == "" {
				return nil, fmt.Errorf("%w: %s alias #%d", ErrEmptyAlias, e.Key, order)
			}
			if owner, dup := c.byAlias[a]; dup {
				return nil, fmt.Errorf("%w: %q on %s and %s", ErrDuplicateAlias, a, c.entries[owner].Key, e.Key)
			}
			// Aliases claimed earlier by this same entry are not yet in c.entries.
			for _, prev := range folded {
				if prev == a {
					return nil, fmt.Errorf("%w: %q repeated on %s", ErrDuplicateAlias, a, e.Key)
				}
			}
			folded = append(folded, a)
			c.aliases = append(c.aliases, Alias{Text: a, Latin: IsLatin(a), Entry: idx, Order: order})
		}
		for _, a := range folded {
			c.byAlias[a] = idx
		}

		e.Aliases = folded
		c.byKey[e.Key] = idx
		c.entries = append(c.entries, e)
	}

	return c, nil
}

// MustNew is New that panics on a configuration defect.
func MustNew(entries ...Entry) *Catalog {
	c, err := New(entries...)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

// Entries returns the entries in declaration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Entry looks up an entry by canonical key.
func (c *Catalog) Entry(key Key) (Entry, bool) {
	idx, ok := c.byKey[key]
	if !ok {
		return Entry{}, false
	}
	return c.entries[idx], true
}

// At returns the entry at a declaration index, as referenced by Alias.Entry.
func (c *Catalog) At(idx int) Entry {
	return c.entries[idx]
}

// LookupAlias returns the entry owning exactly this alias. Latin aliases are
// compared case-insensitively.
func (c *Catalog) LookupAlias(alias string) (Entry, bool) {
	idx, ok := c.byAlias[FoldAlias(alias)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[idx], true
}

// Aliases returns every alias in catalog order: entry by entry, then alias by alias.
func (c *Catalog) Aliases() []Alias {
	out := make([]Alias, len(c.aliases))
	copy(out, c.aliases)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// FoldAlias trims an alias and lower-cases its Latin letters only.
func FoldAlias(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Latin, r) {
			return unicode.ToLower(r)
		}
		return r
	}, s)
}

// IsLatin reports whether every letter in s belongs to the Latin script.
// Strings without letters count as Latin.
func IsLatin(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.Is(unicode.Latin, r) {
			return false
		}
	}
	return true
}
