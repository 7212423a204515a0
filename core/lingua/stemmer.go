// Package lingua provides the locale-aware tokenize-and-stem capability the
// command matcher uses for keyword recognition, plus the date extraction
// helper built on top of it.
package lingua

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

// Stemmer normalizes free text into an ordered sequence of stems for a locale.
type Stemmer interface {
	Stem(locale, text string) []string
}

// Snowball stems tokens with the snowball algorithm family.
// Locales without a snowball language fall back to plain lowercase tokens.
type Snowball struct{}

// NewSnowball returns a ready-to-use snowball stemmer.
func NewSnowball() *Snowball {
	return &Snowball{}
}

// snowballLanguages maps primary BCP 47 subtags to snowball language names.
var snowballLanguages = map[string]string{
	"en": "english",
	"ru": "russian",
	"es": "spanish",
	"fr": "french",
	"sv": "swedish",
	"no": "norwegian",
	"hu": "hungarian",
}

// Stem lowercases, tokenizes on non-alphanumeric runes, and stems each token.
// Tokens the algorithm rejects are kept in their lowercase surface form so a
// partially foreign message still matches literal keywords.
func (s *Snowball) Stem(locale, text string) []string {
	tokens := Tokenize(text)
	lang, ok := snowballLanguages[primarySubtag(locale)]
	if !ok {
		return tokens
	}
	stems := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		stemmed, err := snowball.Stem(tok, lang, false)
		if err != nil || stemmed == "" {
			stems = append(stems, tok)
			continue
		}
		stems = append(stems, stemmed)
	}
	return stems
}

// Tokenize splits text into lowercase word tokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}

func primarySubtag(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	return locale
}
