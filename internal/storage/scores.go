package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ScoreStore persists score values in the scores table. It satisfies
// score.Store.
type ScoreStore struct{ db *DB }

func (d *DB) Scores() *ScoreStore { return &ScoreStore{db: d} }

func (s *ScoreStore) Load(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.SQL.QueryRowContext(ctx, s.db.rebind(`SELECT value FROM scores WHERE key=?`), key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *ScoreStore) Save(ctx context.Context, key, value string) error {
	_, err := s.db.SQL.ExecContext(ctx, s.db.rebind(`
        INSERT INTO scores (key, value, updated_at) VALUES (?, ?, ?)
        ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		key, value, formatTime(time.Now()),
	)
	return err
}
