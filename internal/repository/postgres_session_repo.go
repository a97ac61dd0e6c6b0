package repository

import (
	"context"
	"database/sql"
	"errors"

	"swipeinterview/internal/model"
)

const createKVTable = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const selectKV = `SELECT value FROM kv WHERE key = $1`

const upsertKV = `
INSERT INTO kv (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value, updated_at = now()`

type postgresSessionStore struct {
	db *sql.DB
}

// NewPostgresSessionStore keeps the collection in a single jsonb row of the
// kv table. The db handle must be opened with the "postgres" driver.
func NewPostgresSessionStore(db *sql.DB) SessionStore {
	return &postgresSessionStore{
		db: db,
	}
}

// EnsureKVSchema creates the kv table if it does not exist
func EnsureKVSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, createKVTable)
	return err
}

func (s *postgresSessionStore) Load(ctx context.Context) ([]*model.Session, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, selectKV, SessionsKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSessions(data)
}

func (s *postgresSessionStore) Save(ctx context.Context, sessions []*model.Session) error {
	data, err := encodeSessions(sessions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, upsertKV, SessionsKey, string(data))
	return err
}
