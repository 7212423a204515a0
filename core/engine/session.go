package engine

import (
	"github.com/m3rciful/convocore/core/storage"
)

// Payload is the handler-defined conversational state of a session. Values
// are schema-on-read: handlers know what they stored, the engine only
// guarantees the whole document is persisted atomically.
type Payload map[string]any

// Set stores a value under key.
func (p Payload) Set(key string, value any) {
	p[key] = value
}

// Delete removes a key.
func (p Payload) Delete(key string) {
	delete(p, key)
}

// Get retrieves a raw value by key.
func (p Payload) Get(key string) (any, bool) {
	v, ok := p[key]
	return v, ok
}

// GetString retrieves a value by key and asserts it as string.
func (p Payload) GetString(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt64 retrieves a value by key as int64. JSON round trips store
// numbers as float64, so both representations are accepted.
func (p Payload) GetInt64(key string) (int64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// GetBool retrieves a value by key and asserts it as bool.
func (p Payload) GetBool(key string) (bool, bool) {
	v, ok := p[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Session is the per-user conversational state scoped to one bot instance.
type Session struct {
	// PlatformID is the platform user identifier the session belongs to.
	PlatformID string
	// Bot is the engine instance name the session is scoped to.
	Bot string
	// User is the linked user identity, nil when unlinked or dangling.
	User *storage.UserRecord
	// Info is the raw identity metadata from the platform, refreshed on
	// every message.
	Info map[string]any
	// Payload is the handler-owned conversational state.
	Payload Payload

	// record carries repository-owned fields (id, timestamps) between
	// find and save; nil for transient sessions.
	record *storage.SessionRecord
}

// NewSession builds a transient session with an empty payload.
func NewSession(bot, platformID string) *Session {
	return &Session{
		PlatformID: platformID,
		Bot:        bot,
		Info:       map[string]any{},
		Payload:    Payload{},
	}
}

// Transient reports whether the session has never been persisted.
func (s *Session) Transient() bool {
	return s.record == nil
}
