package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/convocore/core/logger"
	"github.com/m3rciful/convocore/core/storage"
)

// ErrInvalidIdentity is returned when a session is requested for an empty
// platform identity.
var ErrInvalidIdentity = errors.New("engine: empty platform identity")

// Bridge translates between live sessions and their durable records. A nil
// session repository turns the bridge into a purely in-memory layer: every
// session is transient and Save is a no-op.
type Bridge struct {
	bot      string
	sessions storage.SessionRepository
	users    storage.UserRepository
	timeout  time.Duration
}

// NewBridge creates a bridge scoped to one bot instance. sessions and users
// may be nil when the engine runs without persistence. timeout bounds the
// idle lifetime enforced by Expire.
func NewBridge(bot string, sessions storage.SessionRepository, users storage.UserRepository, timeout time.Duration) *Bridge {
	return &Bridge{bot: bot, sessions: sessions, users: users, timeout: timeout}
}

// Create builds a fresh transient session for the identity, seeding Info
// from the identity metadata. The session is not persisted until Save.
func (b *Bridge) Create(identity Identity) (*Session, error) {
	if identity.ID == "" {
		return nil, ErrInvalidIdentity
	}
	sess := NewSession(b.bot, identity.ID)
	for k, v := range identity.Meta {
		sess.Info[k] = v
	}
	return sess, nil
}

// Find loads the stored session for the identity, or creates a transient
// one when nothing is stored. A linked user that no longer exists is
// treated as unlinked, not as an error.
func (b *Bridge) Find(ctx context.Context, identity Identity) (*Session, error) {
	if identity.ID == "" {
		return nil, ErrInvalidIdentity
	}
	if b.sessions == nil {
		return b.Create(identity)
	}

	recs, err := b.sessions.FindByPlatformID(ctx, b.bot, identity.ID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return b.Create(identity)
	}
	rec := recs[0]

	sess := NewSession(b.bot, identity.ID)
	sess.record = &rec
	if rec.Payload != nil {
		sess.Payload = Payload(rec.Payload)
	}
	if rec.Info != nil {
		sess.Info = rec.Info
	}
	for k, v := range identity.Meta {
		sess.Info[k] = v
	}

	if rec.UserID != 0 && b.users != nil {
		users, err := b.users.Find(ctx, rec.UserID)
		if err != nil {
			return nil, err
		}
		if len(users) > 0 {
			u := users[0]
			sess.User = &u
		} else {
			logger.Warn(ctx, "engine.session", "session.user.dangling",
				slog.String("platform_id", identity.ID),
				slog.Int64("user_id", rec.UserID),
			)
		}
	}
	return sess, nil
}

// Save persists the whole session document. The stored payload always
// reflects the in-memory payload as a unit; there is no partial merge.
// With no repository configured Save succeeds without doing anything.
func (b *Bridge) Save(ctx context.Context, sess *Session) error {
	if b.sessions == nil || sess == nil {
		return nil
	}

	rec := sess.record
	if rec == nil {
		rec = &storage.SessionRecord{
			Bot:        sess.Bot,
			PlatformID: sess.PlatformID,
		}
	}
	rec.Payload = map[string]any(sess.Payload)
	rec.Info = sess.Info
	if sess.User != nil {
		rec.UserID = sess.User.ID
	} else {
		rec.UserID = 0
	}

	if err := b.sessions.Save(ctx, rec); err != nil {
		return err
	}
	sess.record = rec
	return nil
}

// Delete removes the stored session, if any. The in-memory session becomes
// transient again.
func (b *Bridge) Delete(ctx context.Context, sess *Session) error {
	if b.sessions == nil || sess == nil || sess.record == nil {
		return nil
	}
	if err := b.sessions.Delete(ctx, sess.record); err != nil {
		return err
	}
	sess.record = nil
	return nil
}

// Expire removes sessions idle longer than the configured timeout and
// reports how many were dropped. A zero timeout disables expiration.
func (b *Bridge) Expire(ctx context.Context) (int64, error) {
	if b.sessions == nil || b.timeout <= 0 {
		return 0, nil
	}
	started := time.Now()
	n, err := b.sessions.DeleteExpired(ctx, b.bot, b.timeout)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info(ctx, "engine.session", "session.expire",
			slog.Int64("sessions", n),
			slog.Duration("duration", logger.Took(started)),
		)
	}
	return n, nil
}
