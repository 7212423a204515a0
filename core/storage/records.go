// Package storage declares the persistence contracts the session engine
// depends on. Implementations live in subpackages; the engine itself only
// sees these interfaces and never a concrete driver.
package storage

import (
	"context"
	"time"
)

// SessionRecord is the durable shape of one conversational session.
// Timestamps are owned by the repository, not by the engine.
type SessionRecord struct {
	ID         int64
	Bot        string
	PlatformID string
	// UserID links the session to a user record; 0 means unlinked.
	UserID    int64
	Payload   map[string]any
	Info      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserRecord is a registered user identity the session may link to.
type UserRecord struct {
	ID         int64
	PlatformID string
	Name       string
	Locale     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SessionRepository is the CRUD contract for durable sessions.
type SessionRepository interface {
	// FindByPlatformID returns all sessions stored for the platform identity
	// within one bot instance. Most callers expect zero or one entries.
	FindByPlatformID(ctx context.Context, bot, platformID string) ([]SessionRecord, error)
	// Save inserts or updates the whole record. The stored payload must
	// reflect the record as passed, never a partial merge.
	Save(ctx context.Context, rec *SessionRecord) error
	// Delete removes one session record.
	Delete(ctx context.Context, rec *SessionRecord) error
	// DeleteExpired removes sessions whose last activity is older than
	// timeout and reports how many were removed.
	DeleteExpired(ctx context.Context, bot string, timeout time.Duration) (int64, error)
}

// UserRepository resolves linked user identities.
type UserRepository interface {
	Find(ctx context.Context, id int64) ([]UserRecord, error)
}
