package userdir

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Directory answers whether a user id exists. Account management lives in a
// separate service; this process only validates ids at the connection boundary.
type Directory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// SQLDirectory is a read-only view over the relational user store.
type SQLDirectory struct {
	db *sqlx.DB
}

func Open(dsn string) (*SQLDirectory, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLDirectory{db: db}, nil
}

func (d *SQLDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	var n int
	if err := d.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM users WHERE id = ?`, userID); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *SQLDirectory) Close() error {
	return d.db.Close()
}
