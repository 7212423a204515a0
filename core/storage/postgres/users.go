package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/convocore/core/storage"
)

// UserRepo resolves user records from a Postgres users table.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo wraps the shared connection pool.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

type userRow struct {
	ID         int64     `db:"id"`
	PlatformID string    `db:"platform_id"`
	Name       string    `db:"name"`
	Locale     string    `db:"locale"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Find returns zero or one user records for the given id.
func (r *UserRepo) Find(ctx context.Context, id int64) ([]storage.UserRecord, error) {
	var rows []userRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, platform_id, name, locale, created_at, updated_at
		   FROM users
		  WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	out := make([]storage.UserRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, storage.UserRecord(row))
	}
	return out, nil
}
