package engine

import (
	"strings"
	"testing"
)

// wordsTokenizer is a trivial stemmer for tests: lowercase whitespace split.
type wordsTokenizer struct{}

func (wordsTokenizer) Stem(_ string, text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func noopHandler(*Context) (bool, error) { return true, nil }

func cmd(name string, priority int, patterns ...Pattern) Command {
	return Command{
		Name:     name,
		Priority: priority,
		Variants: []Syntax{Syntax(patterns)},
		Handler:  noopHandler,
	}
}

func TestMatchStrictPriorityWins(t *testing.T) {
	table := NewTable(ModeStrict)
	table.Register(cmd("broad", 20, Regex(`.*`)))
	table.Register(cmd("start", 10, Regex(`^/start\b`)))

	got, _, err := table.Match("/start now", "en")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got.Name != "start" {
		t.Fatalf("winner = %s, expected start", got.Name)
	}
}

func TestMatchStrictRegistrationOrderBreaksTies(t *testing.T) {
	table := NewTable(ModeStrict)
	table.Register(cmd("first", 5, Regex(`^hello`)))
	table.Register(cmd("second", 5, Regex(`^hello`)))

	got, _, err := table.Match("hello there", "en")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got.Name != "first" {
		t.Fatalf("winner = %s, expected first", got.Name)
	}
}

func TestMatchExclusiveAmbiguous(t *testing.T) {
	table := NewTable(ModeExclusive)
	table.Register(cmd("a", 10, Regex(`ping`)))
	table.Register(cmd("b", 20, Regex(`ping`)))

	if _, _, err := table.Match("ping", "en"); err != ErrAmbiguous {
		t.Fatalf("err = %v, expected ErrAmbiguous", err)
	}
}

func TestMatchExclusiveSingleWinner(t *testing.T) {
	table := NewTable(ModeExclusive)
	table.Register(cmd("a", 10, Regex(`^ping$`)))
	table.Register(cmd("b", 20, Regex(`^pong$`)))

	got, _, err := table.Match("Pong", "en")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got.Name != "b" {
		t.Fatalf("winner = %s, expected b", got.Name)
	}
}

func TestMatchNoMatch(t *testing.T) {
	table := NewTable(ModeStrict)
	table.Register(cmd("start", 10, Regex(`^/start$`)))

	if _, _, err := table.Match("what", "en"); err != ErrNoMatch {
		t.Fatalf("err = %v, expected ErrNoMatch", err)
	}
}

func TestMatchVariantConjunction(t *testing.T) {
	tok := wordsTokenizer{}
	table := NewTable(ModeStrict)
	table.Register(Command{
		Name:     "remind",
		Priority: 10,
		Variants: []Syntax{
			{StemsAll(tok, "remind me"), Regex(`\b(\d{1,2}:\d{2})\b`)},
			{Regex(`^/remind\b`)},
		},
		Handler: noopHandler,
	})

	// First variant needs both the stems and the time pattern.
	if _, _, err := table.Match("remind me later", "en"); err != ErrNoMatch {
		t.Fatalf("err = %v, expected ErrNoMatch", err)
	}

	got, match, err := table.Match("please remind me at 18:30", "en")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got.Name != "remind" {
		t.Fatalf("winner = %s", got.Name)
	}
	if _, idx := match.First(); idx != 0 {
		t.Fatalf("variant = %d, expected 0", idx)
	}
	if g := match.Group(1, 1); g != "18:30" {
		t.Fatalf("group = %q, expected 18:30", g)
	}
}

func TestMatchCaseInsensitive(t *testing.T) {
	table := NewTable(ModeStrict)
	table.Register(cmd("start", 10, Regex(`^/start$`)))

	got, _, err := table.Match("  /START  ", "en")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got.Name != "start" {
		t.Fatalf("winner = %s, expected start", got.Name)
	}
}

func TestRegisterSkipsInvalidAndDuplicate(t *testing.T) {
	table := NewTable(ModeStrict)
	table.Register(Command{Name: "", Handler: noopHandler, Variants: []Syntax{{Regex(`x`)}}})
	table.Register(Command{Name: "no-handler", Variants: []Syntax{{Regex(`x`)}}})
	table.Register(cmd("dup", 10, Regex(`^a$`)))
	table.Register(cmd("dup", 20, Regex(`^b$`)))

	if table.Len() != 1 {
		t.Fatalf("len = %d, expected 1", table.Len())
	}
	got, _, err := table.Match("a", "en")
	if err != nil || got.Name != "dup" {
		t.Fatalf("match = %v, %v", got, err)
	}
	// The duplicate's syntax must not have been registered.
	if _, _, err := table.Match("b", "en"); err != ErrNoMatch {
		t.Fatalf("err = %v, expected ErrNoMatch", err)
	}
}
