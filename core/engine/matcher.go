package engine

import (
	"errors"
	"strings"
)

var (
	// ErrNoMatch reports that no registered command matched the message.
	// It is a control outcome, not a failure.
	ErrNoMatch = errors.New("engine: no command matched")
	// ErrAmbiguous reports that two different commands fully matched under
	// exclusive mode. The caller may fall back to a default handler.
	ErrAmbiguous = errors.New("engine: ambiguous match")
)

// Match evaluates the message text against the table and returns the
// winning command with its match result.
//
// Commands are scanned in priority order, registration order breaking
// ties. In strict mode the first command with any fully-matched variant
// wins immediately. In exclusive mode the scan continues: a second
// fully-matching command turns the whole evaluation into ErrAmbiguous.
func (t *Table) Match(text, locale string) (*Command, MatchResult, error) {
	// Case-insensitive normalization is applied once up front; patterns
	// see the same normalized text.
	normalized := strings.ToLower(strings.TrimSpace(text))

	var (
		winner    *Command
		winnerRes MatchResult
	)
	for _, cmd := range t.ordered() {
		res := cmd.evaluate(normalized, locale)
		if !res.Matched() {
			continue
		}
		if t.mode == ModeStrict {
			return cmd, res, nil
		}
		if winner != nil {
			return nil, nil, ErrAmbiguous
		}
		winner = cmd
		winnerRes = res
	}
	if winner == nil {
		return nil, nil, ErrNoMatch
	}
	return winner, winnerRes, nil
}
