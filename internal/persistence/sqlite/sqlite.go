package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// DB wraps an SQLite database handle with transaction and migration support.
// All repositories in this package share one DB.
type DB struct {
	db *sql.DB
}

// Open establishes a connection to the SQLite database identified by dsn and
// applies the pragmas the scheduler relies on (foreign keys, WAL, busy
// timeout). A single writer connection keeps SQLite's locking model simple.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return &DB{db: db}, nil
}

// Close releases the underlying database handle.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Ping verifies the database connection.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// migrations holds the ordered schema steps. The applied count is tracked via
// PRAGMA user_version so restarts only run new steps.
var migrations = []string{
	`CREATE TABLE subjects (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL UNIQUE,
		department_id TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE instructors (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
		display_name  TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		is_admin      INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE sessions (
		id            TEXT PRIMARY KEY,
		subject_id    TEXT NOT NULL REFERENCES subjects(id),
		instructor_id TEXT NOT NULL REFERENCES instructors(id),
		room          TEXT NOT NULL,
		start_minutes INTEGER NOT NULL,
		end_minutes   INTEGER NOT NULL,
		department_id TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		CHECK (start_minutes >= 0 AND end_minutes < 1440 AND start_minutes < end_minutes)
	)`,
	`CREATE TABLE session_days (
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		weekday    INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		PRIMARY KEY (session_id, weekday)
	)`,
	`CREATE TABLE auth_sessions (
		id         TEXT PRIMARY KEY,
		token      TEXT NOT NULL UNIQUE,
		user_id    TEXT NOT NULL REFERENCES instructors(id),
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		revoked_at TEXT
	)`,
	`CREATE INDEX idx_sessions_instructor ON sessions(instructor_id)`,
	`CREATE INDEX idx_sessions_subject ON sessions(subject_id)`,
}

// Migrate applies pending schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	var version int
	if err := d.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this binary supports (%d)", version, len(migrations))
	}

	for step := version; step < len(migrations); step++ {
		err := d.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, migrations[step]); err != nil {
				return fmt.Errorf("migration step %d failed: %w", step+1, err)
			}
			// PRAGMA does not accept bind parameters.
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", step+1)); err != nil {
				return fmt.Errorf("failed to record schema version %d: %w", step+1, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// TransactionFunc is a unit of work executed within a transaction.
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction runs fn inside a transaction, rolling back on error or
// panic and committing otherwise.
func (d *DB) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// mapError translates SQLite driver errors into persistence sentinels so the
// application layer never sees driver specifics.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case containsAny(msg, "UNIQUE constraint failed", "PRIMARY KEY constraint failed"):
		return persistence.ErrDuplicate
	case containsAny(msg, "FOREIGN KEY constraint failed"):
		return persistence.ErrForeignKeyViolation
	case containsAny(msg, "CHECK constraint failed"):
		return persistence.ErrConstraintViolation
	}
	return err
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// formatTime renders timestamps as UTC RFC3339 so lexicographic comparison in
// SQL matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return ts, nil
}
