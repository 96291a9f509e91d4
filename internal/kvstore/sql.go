package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"photojournal/internal/database"
)

type sqlQueries struct {
	get    string
	set    string
	remove string
}

var queries = map[database.Dialect]sqlQueries{
	database.Postgres: {
		get: `SELECT value FROM kv_blobs WHERE key = $1`,
		set: `
		INSERT INTO kv_blobs (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`,
		remove: `DELETE FROM kv_blobs WHERE key = $1`,
	},
	database.SQLite: {
		get: `SELECT value FROM kv_blobs WHERE key = ?`,
		set: `
		INSERT INTO kv_blobs (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`,
		remove: `DELETE FROM kv_blobs WHERE key = ?`,
	},
}

// SQLStore keeps blobs in the kv_blobs table. Each call is a single statement,
// so a value is always replaced whole.
type SQLStore struct {
	db  *sql.DB
	q   sqlQueries
	now func() time.Time
}

// NewSQL returns a Store over db speaking dialect. The kv_blobs table must exist
// (see migration.EnsureMigrated).
func NewSQL(db *sql.DB, dialect database.Dialect) (*SQLStore, error) {
	q, ok := queries[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}
	return &SQLStore{db: db, q: q, now: time.Now}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := s.db.QueryRowContext(ctx, s.q.get, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.q.set, key, value, s.now().UTC())
	return err
}

// Remove deletes the row. A missing row is not an error.
func (s *SQLStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.q.remove, key)
	return err
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
