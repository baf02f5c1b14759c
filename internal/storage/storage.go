// internal/storage/storage.go
//
// Database helpers for the Hangman server.
// Responsibilities:
//   - Opening SQLite (default) with safe defaults (WAL, busy timeout,
//     foreign keys), or PostgreSQL when the URL says so.
//   - Applying embedded migrations from sql/*.sql (idempotent, recorded in
//     _migrations).
//   - Rebinding `?` placeholders to `$n` for PostgreSQL so every query is
//     written once.

package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed sql/*.sql
var migrations embed.FS

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username taken")
)

const (
	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"
)

// DB wraps *sql.DB with the driver it was opened with.
type DB struct {
	SQL    *sql.DB
	driver string
}

// IsPostgres reports whether url selects the PostgreSQL driver.
func IsPostgres(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// Open connects to url: a postgres:// URL, or a SQLite file path which is
// created (with its parent directory) if missing.
func Open(url string) (*DB, error) {
	if url == "" {
		return nil, errors.New("database URL is required")
	}
	if IsPostgres(url) {
		db, err := sql.Open(driverPostgres, url)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		log.Info().Str("driver", driverPostgres).Msg("database connected")
		return &DB{SQL: db, driver: driverPostgres}, nil
	}

	dir := filepath.Dir(url)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open(driverSQLite, url+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	log.Info().Str("driver", driverSQLite).Str("path", url).Msg("database opened")
	return &DB{SQL: db, driver: driverSQLite}, nil
}

// Close closes the pool.
func (d *DB) Close() error { return d.SQL.Close() }

// Driver is "sqlite3" or "postgres".
func (d *DB) Driver() string { return d.driver }

// rebind rewrites `?` placeholders as `$1..$n` for PostgreSQL.
func (d *DB) rebind(q string) string {
	if d.driver != driverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Migrate applies every embedded sql/*.sql file not yet recorded in
// _migrations, in lexical order, each inside its own transaction.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.SQL.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		name := filepath.Base(f)
		var done int
		err := d.SQL.QueryRowContext(ctx, d.rebind(`SELECT 1 FROM _migrations WHERE name=?`), name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", name).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		tx, err := d.SQL.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, d.rebind(`INSERT INTO _migrations(name) VALUES (?)`), name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
		log.Info().Str("migration", name).Msg("applied")
	}
	return nil
}

// timestamps are stored as RFC3339 UTC text so they sort lexically on both
// drivers.
func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
