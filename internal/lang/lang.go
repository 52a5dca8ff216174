// Package lang defines the closed set of languages the assistant replies in.
package lang

import (
	"strings"

	"golang.org/x/text/language"
)

// Code is an ISO-639-1 language code supported by the reply templates.
type Code string

const (
	English Code = "en"
	Hindi   Code = "hi"
)

// Default is used whenever a caller omits a language or names one we do not support.
const Default = English

// Supported lists every language with reply templates, default first.
var Supported = []Code{English, Hindi}

var (
	supportedTags = []language.Tag{language.English, language.Hindi}
	matcher       = language.NewMatcher(supportedTags)
)

// Parse maps a BCP-47 tag ("hi", "hi-IN", "en-US") onto a supported Code.
// It reports false for empty input, malformed tags and unsupported languages.
func Parse(s string) (Code, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return "", false
	}
	base, _ := supportedTags[idx].Base()
	return Code(base.String()), true
}

// Resolve is Parse with a fallback for anything unsupported.
func Resolve(s string, fallback Code) Code {
	if c, ok := Parse(s); ok {
		return c
	}
	return fallback
}

// Valid reports whether c is one of the supported codes.
func (c Code) Valid() bool {
	for _, s := range Supported {
		if c == s {
			return true
		}
	}
	return false
}

func (c Code) String() string { return string(c) }
