// Package memory provides in-memory repository implementations for tests
// and session-less development runs.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/m3rciful/convocore/core/storage"
)

// SessionRepo keeps session records in a mutex-guarded map.
type SessionRepo struct {
	mu      sync.RWMutex
	nextID  int64
	records map[string]*storage.SessionRecord // key: bot + "\x00" + platform id
}

// NewSessionRepo builds an empty in-memory session repository.
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{records: make(map[string]*storage.SessionRecord)}
}

func key(bot, platformID string) string {
	return bot + "\x00" + platformID
}

// FindByPlatformID returns copies of the stored sessions for the identity.
func (r *SessionRepo) FindByPlatformID(_ context.Context, bot, platformID string) ([]storage.SessionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[key(bot, platformID)]
	if !ok {
		return nil, nil
	}
	cp, err := copyRecord(rec)
	if err != nil {
		return nil, err
	}
	return []storage.SessionRecord{*cp}, nil
}

// Save stores a deep copy of the record so later in-memory mutation of the
// session payload cannot leak into the persisted state.
func (r *SessionRepo) Save(_ context.Context, rec *storage.SessionRecord) error {
	if rec == nil {
		return fmt.Errorf("nil session record")
	}
	cp, err := copyRecord(rec)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if existing, ok := r.records[key(rec.Bot, rec.PlatformID)]; ok {
		cp.ID = existing.ID
		cp.CreatedAt = existing.CreatedAt
	} else {
		r.nextID++
		cp.ID = r.nextID
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	r.records[key(rec.Bot, rec.PlatformID)] = cp

	rec.ID = cp.ID
	rec.CreatedAt = cp.CreatedAt
	rec.UpdatedAt = cp.UpdatedAt
	return nil
}

// Delete removes the record; deleting an absent record is not an error.
func (r *SessionRepo) Delete(_ context.Context, rec *storage.SessionRecord) error {
	if rec == nil {
		return fmt.Errorf("nil session record")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, key(rec.Bot, rec.PlatformID))
	return nil
}

// DeleteExpired removes sessions idle longer than timeout.
func (r *SessionRepo) DeleteExpired(_ context.Context, bot string, timeout time.Duration) (int64, error) {
	cutoff := time.Now().Add(-timeout)
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for k, rec := range r.records {
		if rec.Bot == bot && rec.UpdatedAt.Before(cutoff) {
			delete(r.records, k)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored sessions, for tests.
func (r *SessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func copyRecord(rec *storage.SessionRecord) (*storage.SessionRecord, error) {
	cp := *rec
	payload, err := copyMap(rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("copy session payload: %w", err)
	}
	info, err := copyMap(rec.Info)
	if err != nil {
		return nil, fmt.Errorf("copy session info: %w", err)
	}
	cp.Payload = payload
	cp.Info = info
	return &cp, nil
}

// copyMap deep-copies via JSON, which also keeps the stored shape identical
// to what a JSONB round trip would produce.
func copyMap(m map[string]any) (map[string]any, error) {
	if m == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(m))
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserRepo keeps user records in memory.
type UserRepo struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]storage.UserRecord
}

// NewUserRepo builds an empty in-memory user repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[int64]storage.UserRecord)}
}

// Add stores a user and returns its assigned id.
func (r *UserRepo) Add(rec storage.UserRecord) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ID == 0 {
		r.nextID++
		rec.ID = r.nextID
	} else if rec.ID > r.nextID {
		r.nextID = rec.ID
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.users[rec.ID] = rec
	return rec.ID
}

// Find returns zero or one user records for the given id.
func (r *UserRepo) Find(_ context.Context, id int64) ([]storage.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return []storage.UserRecord{rec}, nil
}
