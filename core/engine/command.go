package engine

import (
	"context"
	"regexp"
	"strings"
)

// Handler executes a matched command. It reports whether it consumed the
// message; a handler that declines lets the transport fall back to its
// default reply.
type Handler func(ctx *Context) (bool, error)

// Context carries everything a handler may need for one message.
type Context struct {
	// Ctx is the request context of the dispatch.
	Ctx context.Context
	// Dispatcher grants access to Await and Reply.
	Dispatcher *Dispatcher
	// Message is the inbound event being handled.
	Message Message
	// Match holds the per-variant submatches; nil for callback continuations.
	Match MatchResult
	// Session is the mutable conversational state; never nil during handling.
	Session *Session
}

// Pattern is one matcher within a syntax variant. Match returns the
// submatches (regex capture groups, or the matched text for stem
// predicates) and whether the pattern matched.
type Pattern interface {
	Match(text, locale string) ([]string, bool)
}

// Syntax is one alternative pattern-set of a command. The variant succeeds
// only when every pattern in it matches.
type Syntax []Pattern

// Command is a registered command definition. Commands are registered once
// at startup and are immutable afterwards.
type Command struct {
	// Name uniquely identifies the command within its table.
	Name string
	// Priority orders evaluation; lower values are evaluated first.
	Priority int
	// Variants are tried in order; any fully-matching variant makes the
	// command match.
	Variants []Syntax
	// Handler runs when the command wins matching.
	Handler Handler

	// seq is the registration order, used to break priority ties.
	seq int
}

// MatchResult records the evaluation of one command against a message: one
// entry per syntax variant, nil meaning the variant did not match, otherwise
// one submatch slice per pattern of the variant.
type MatchResult [][][]string

// Matched reports whether any variant matched.
func (r MatchResult) Matched() bool {
	for _, v := range r {
		if v != nil {
			return true
		}
	}
	return false
}

// First returns the submatches of the first matched variant and its index,
// or (nil, -1) when nothing matched.
func (r MatchResult) First() ([][]string, int) {
	for i, v := range r {
		if v != nil {
			return v, i
		}
	}
	return nil, -1
}

// Group returns capture group g of pattern p in the first matched variant,
// or "" when out of range. Group 0 is the whole pattern match.
func (r MatchResult) Group(p, g int) string {
	subs, _ := r.First()
	if p < 0 || p >= len(subs) {
		return ""
	}
	if g < 0 || g >= len(subs[p]) {
		return ""
	}
	return subs[p][g]
}

type regexPattern struct {
	re *regexp.Regexp
}

// Regex builds a case-insensitive regular expression pattern. The
// expression must compile; command syntax is startup configuration, so a
// bad expression panics the same way template.Must does.
func Regex(expr string) Pattern {
	if !strings.HasPrefix(expr, "(?i)") {
		expr = "(?i)" + expr
	}
	return &regexPattern{re: regexp.MustCompile(expr)}
}

func (p *regexPattern) Match(text, _ string) ([]string, bool) {
	subs := p.re.FindStringSubmatch(text)
	if subs == nil {
		return nil, false
	}
	return subs, true
}

type stemPattern struct {
	tok    Tokenizer
	phrase string
	any    bool
}

// StemsAll builds a pattern that matches when every stem of phrase appears
// among the stems of the message text.
func StemsAll(tok Tokenizer, phrase string) Pattern {
	return &stemPattern{tok: tok, phrase: phrase}
}

// StemsAny builds a pattern that matches when at least one stem of phrase
// appears among the stems of the message text.
func StemsAny(tok Tokenizer, phrase string) Pattern {
	return &stemPattern{tok: tok, phrase: phrase, any: true}
}

func (p *stemPattern) Match(text, locale string) ([]string, bool) {
	want := p.tok.Stem(locale, p.phrase)
	if len(want) == 0 {
		return nil, false
	}
	stems := p.tok.Stem(locale, text)
	have := make(map[string]struct{}, len(stems))
	for _, s := range stems {
		have[s] = struct{}{}
	}
	if p.any {
		for _, w := range want {
			if _, ok := have[w]; ok {
				return []string{text}, true
			}
		}
		return nil, false
	}
	for _, w := range want {
		if _, ok := have[w]; !ok {
			return nil, false
		}
	}
	return []string{text}, true
}

// evaluate runs every variant of the command against the normalized text.
func (c *Command) evaluate(text, locale string) MatchResult {
	res := make(MatchResult, len(c.Variants))
	for i, variant := range c.Variants {
		subs := make([][]string, 0, len(variant))
		ok := true
		for _, pat := range variant {
			s, matched := pat.Match(text, locale)
			if !matched {
				ok = false
				break
			}
			subs = append(subs, s)
		}
		if ok && len(variant) > 0 {
			res[i] = subs
		}
	}
	return res
}
