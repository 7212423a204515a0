package engine

import (
	"context"
	"log/slog"
	"sort"

	"github.com/m3rciful/convocore/core/logger"
)

// Mode selects how overlapping command matches are resolved.
type Mode int

const (
	// ModeStrict returns the first fully-matching command in priority
	// order; lower-priority commands are never evaluated.
	ModeStrict Mode = iota
	// ModeExclusive rejects the message as ambiguous when two different
	// commands fully match.
	ModeExclusive
)

func (m Mode) String() string {
	if m == ModeExclusive {
		return "exclusive"
	}
	return "strict"
}

// Table is the ordered, read-mostly collection of registered commands.
// Registration happens once at startup; the table is not safe for
// concurrent registration but is safe for concurrent matching afterwards.
type Table struct {
	mode    Mode
	cmds    []*Command
	seen    map[string]struct{}
	nextSeq int
}

// NewTable creates an empty command table with the given resolution mode.
func NewTable(mode Mode) *Table {
	return &Table{
		mode: mode,
		seen: make(map[string]struct{}),
	}
}

// Mode returns the table's resolution mode.
func (t *Table) Mode() Mode {
	return t.mode
}

// Register adds a command definition. Invalid definitions are skipped with
// a warning rather than failing startup, matching how route registration
// behaves elsewhere in the core.
func (t *Table) Register(cmd Command) {
	if t == nil || cmd.Name == "" || cmd.Handler == nil || len(cmd.Variants) == 0 {
		logger.Warn(context.Background(), "engine", "register.command.skip",
			slog.String("command", cmd.Name),
			slog.String("cause", "invalid"),
		)
		return
	}
	if _, exists := t.seen[cmd.Name]; exists {
		logger.Warn(context.Background(), "engine", "register.command.duplicate",
			slog.String("command", cmd.Name),
		)
		return
	}
	c := cmd
	c.seq = t.nextSeq
	t.nextSeq++
	t.seen[cmd.Name] = struct{}{}
	t.cmds = append(t.cmds, &c)
	// Keep cmds sorted on every registration so matching never mutates
	// the table and stays safe for concurrent reads.
	sort.SliceStable(t.cmds, func(i, j int) bool {
		if t.cmds[i].Priority != t.cmds[j].Priority {
			return t.cmds[i].Priority < t.cmds[j].Priority
		}
		return t.cmds[i].seq < t.cmds[j].seq
	})
}

// Len reports the number of registered commands.
func (t *Table) Len() int {
	return len(t.cmds)
}

// Names returns the registered command names in evaluation order.
func (t *Table) Names() []string {
	ordered := t.ordered()
	names := make([]string, 0, len(ordered))
	for _, c := range ordered {
		names = append(names, c.Name)
	}
	return names
}

// ordered returns commands in evaluation order: priority ascending with
// registration-order tie-break.
func (t *Table) ordered() []*Command {
	return t.cmds
}
