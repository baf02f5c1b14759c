package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateUser inserts an account. Usernames compare case-insensitively;
// a clash returns ErrUsernameTaken.
func (d *DB) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	var exists int
	err := d.SQL.QueryRowContext(ctx, d.rebind(`SELECT 1 FROM users WHERE lower(username)=lower(?)`), username).Scan(&exists)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if _, err := d.SQL.ExecContext(ctx,
		d.rebind(`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`),
		u.ID, u.Username, u.PasswordHash, formatTime(u.CreatedAt),
	); err != nil {
		return nil, err
	}
	return u, nil
}

// UserByUsername looks an account up case-insensitively.
func (d *DB) UserByUsername(ctx context.Context, username string) (*User, error) {
	return d.scanUser(d.SQL.QueryRowContext(ctx,
		d.rebind(`SELECT id, username, password_hash, created_at FROM users WHERE lower(username)=lower(?)`), username))
}

func (d *DB) UserByID(ctx context.Context, id string) (*User, error) {
	return d.scanUser(d.SQL.QueryRowContext(ctx,
		d.rebind(`SELECT id, username, password_hash, created_at FROM users WHERE id=?`), id))
}

func (d *DB) scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}
