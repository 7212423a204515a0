package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/m3rciful/convocore/core/logger"
	"github.com/m3rciful/convocore/core/storage"
	"log/slog"
)

// SessionRepo persists sessions to a Postgres sessions table.
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo wraps the shared connection pool.
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

type sessionRow struct {
	ID         int64          `db:"id"`
	Bot        string         `db:"bot"`
	PlatformID string         `db:"platform_id"`
	UserID     sql.NullInt64  `db:"user_id"`
	Payload    types.JSONText `db:"payload"`
	Info       types.JSONText `db:"info"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r sessionRow) record() (storage.SessionRecord, error) {
	rec := storage.SessionRecord{
		ID:         r.ID,
		Bot:        r.Bot,
		PlatformID: r.PlatformID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.UserID.Valid {
		rec.UserID = r.UserID.Int64
	}
	if len(r.Payload) > 0 {
		if err := json.Unmarshal(r.Payload, &rec.Payload); err != nil {
			return rec, fmt.Errorf("decode session payload: %w", err)
		}
	}
	if rec.Payload == nil {
		rec.Payload = map[string]any{}
	}
	if len(r.Info) > 0 {
		if err := json.Unmarshal(r.Info, &rec.Info); err != nil {
			return rec, fmt.Errorf("decode session info: %w", err)
		}
	}
	if rec.Info == nil {
		rec.Info = map[string]any{}
	}
	return rec, nil
}

// FindByPlatformID returns the sessions stored for one platform identity.
func (r *SessionRepo) FindByPlatformID(ctx context.Context, bot, platformID string) ([]storage.SessionRecord, error) {
	var rows []sessionRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, bot, platform_id, user_id, payload, info, created_at, updated_at
		   FROM sessions
		  WHERE bot = $1 AND platform_id = $2
		  ORDER BY id`,
		bot, platformID,
	)
	if err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}
	out := make([]storage.SessionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Save upserts the whole record keyed by (bot, platform_id).
// updated_at is bumped by the database on every save.
func (r *SessionRepo) Save(ctx context.Context, rec *storage.SessionRecord) error {
	if rec == nil {
		return fmt.Errorf("nil session record")
	}
	payload, err := json.Marshal(orEmpty(rec.Payload))
	if err != nil {
		return fmt.Errorf("encode session payload: %w", err)
	}
	info, err := json.Marshal(orEmpty(rec.Info))
	if err != nil {
		return fmt.Errorf("encode session info: %w", err)
	}
	var userID sql.NullInt64
	if rec.UserID != 0 {
		userID = sql.NullInt64{Int64: rec.UserID, Valid: true}
	}

	row := r.db.QueryRowxContext(ctx,
		`INSERT INTO sessions (bot, platform_id, user_id, payload, info)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (bot, platform_id) DO UPDATE
		    SET user_id = EXCLUDED.user_id,
		        payload = EXCLUDED.payload,
		        info = EXCLUDED.info,
		        updated_at = now()
		 RETURNING id, created_at, updated_at`,
		rec.Bot, rec.PlatformID, userID, types.JSONText(payload), types.JSONText(info),
	)
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes one session record by id.
func (r *SessionRepo) Delete(ctx context.Context, rec *storage.SessionRecord) error {
	if rec == nil {
		return fmt.Errorf("nil session record")
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, rec.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions of the bot whose last activity is older than timeout.
func (r *SessionRepo) DeleteExpired(ctx context.Context, bot string, timeout time.Duration) (int64, error) {
	start := time.Now()
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE bot = $1 AND updated_at < now() - ($2 * interval '1 second')`,
		bot, int64(timeout/time.Second),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired sessions rows affected: %w", err)
	}
	logger.DB.Debug("expired sessions removed",
		slog.String("event", "session.expire"),
		slog.String("bot", bot),
		slog.Int64("sessions", n),
		slog.Duration("duration", logger.Took(start)),
	)
	return n, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
