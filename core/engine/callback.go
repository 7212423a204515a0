package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/convocore/core/logger"
)

// Continuation is a single-use handler registered to run on the next
// message from the same session, bypassing command matching.
type Continuation func(ctx *Context) (bool, error)

type callbackEntry struct {
	fn      Continuation
	expires time.Time
	// owner is the session key the token was issued for, so a sweep can
	// clear the pending-token index too.
	owner string
}

// CallbackRegistry owns the token-to-continuation mapping. It is
// process-wide and keyed by token, not by user, so tokens must never be
// guessable or reused across sessions. The pending token of each session
// is indexed by the session identity rather than stored on the Session
// value: sessions are rebuilt from the repository on every message, and a
// continuation must survive that rehydration. Entries are removed on first
// consume; abandoned entries are collected by Sweep after their TTL.
type CallbackRegistry struct {
	mu      sync.Mutex
	entries map[string]callbackEntry
	// pending maps a session key to its outstanding token; at most one
	// continuation per session.
	pending map[string]string
	ttl     time.Duration
}

// DefaultCallbackTTL bounds the lifetime of unconsumed tokens when no TTL
// is configured.
const DefaultCallbackTTL = time.Hour

// NewCallbackRegistry creates an empty registry with the given token TTL.
func NewCallbackRegistry(ttl time.Duration) *CallbackRegistry {
	if ttl <= 0 {
		ttl = DefaultCallbackTTL
	}
	return &CallbackRegistry{
		entries: make(map[string]callbackEntry),
		pending: make(map[string]string),
		ttl:     ttl,
	}
}

// newToken returns a 32-character alphanumeric token. Collision resistance
// matters; cryptographic strength does not.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// sessionKey identifies one session across rehydrations.
func sessionKey(sess *Session) string {
	return sess.Bot + "\x00" + sess.PlatformID
}

// Register stores the continuation under a fresh token and records it as
// the session's pending continuation, replacing any token the session
// previously held.
func (r *CallbackRegistry) Register(sess *Session, fn Continuation) string {
	token := newToken()
	key := sessionKey(sess)

	r.mu.Lock()
	if prev, ok := r.pending[key]; ok {
		delete(r.entries, prev)
	}
	r.entries[token] = callbackEntry{
		fn:      fn,
		expires: time.Now().Add(r.ttl),
		owner:   key,
	}
	r.pending[key] = token
	r.mu.Unlock()
	return token
}

// Consume removes and returns the session's pending continuation, the
// lookup and the removal happening atomically. It returns nil when the
// session holds no token or the token already expired; a missing token is
// not an error, the message simply proceeds to command matching.
func (r *CallbackRegistry) Consume(sess *Session) Continuation {
	key := sessionKey(sess)

	r.mu.Lock()
	token, ok := r.pending[key]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.pending, key)
	entry, ok := r.entries[token]
	if ok {
		delete(r.entries, token)
	}
	r.mu.Unlock()

	if !ok {
		return nil
	}
	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		return nil
	}
	return entry.fn
}

// Len reports the number of pending continuations.
func (r *CallbackRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep removes abandoned entries whose TTL elapsed and returns how many
// were dropped. Sessions holding a swept token observe it as already
// consumed, which is the documented not-found behaviour.
func (r *CallbackRegistry) Sweep(ctx context.Context) int {
	now := time.Now()
	r.mu.Lock()
	removed := 0
	for token, entry := range r.entries {
		if now.After(entry.expires) {
			delete(r.entries, token)
			if r.pending[entry.owner] == token {
				delete(r.pending, entry.owner)
			}
			removed++
		}
	}
	remaining := len(r.entries)
	r.mu.Unlock()

	if removed > 0 {
		logger.Debug(ctx, "engine.callback", "callback.sweep",
			slog.Int("tokens", removed),
			slog.Int("count", remaining),
		)
	}
	return removed
}
