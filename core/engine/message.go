// Package engine implements the message dispatch and conversational session
// core: command matching with priorities and strict/exclusive ambiguity
// resolution, single-use callback continuations, and the bridge between
// in-memory sessions and their durable store.
package engine

import "context"

// Identity is the platform identity an inbound message is addressed from.
// Meta carries the raw identity metadata the platform attached to the
// update; it is refreshed into the session on every message.
type Identity struct {
	ID   string
	Meta map[string]any
}

// Message is one inbound chat event.
type Message struct {
	Identity Identity
	Text     string
	Locale   string
}

// Replier delivers outbound content. Delivery is fire-and-forget from the
// engine's perspective; retries are the transport's concern.
type Replier interface {
	Send(ctx context.Context, identity Identity, content string) error
}

// Tokenizer is the external tokenize-and-stem capability consumed by
// stem-set patterns.
type Tokenizer interface {
	Stem(locale, text string) []string
}

// ReplierFunc adapts a function to the Replier interface.
type ReplierFunc func(ctx context.Context, identity Identity, content string) error

// Send calls the underlying function.
func (f ReplierFunc) Send(ctx context.Context, identity Identity, content string) error {
	return f(ctx, identity, content)
}
