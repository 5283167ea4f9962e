package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/classroom-scheduler/internal/persistence"
	"github.com/example/classroom-scheduler/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Sessions     persistence.SessionRepository
	Subjects     persistence.SubjectRepository
	Instructors  persistence.InstructorRepository
	AuthSessions persistence.AuthSessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "timetable.db")

	db, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := db.Migrate(context.Background()); err != nil {
		_ = db.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Sessions:     sqlite.NewSessionRepository(db),
		Subjects:     sqlite.NewSubjectRepository(db),
		Instructors:  sqlite.NewInstructorRepository(db),
		AuthSessions: sqlite.NewAuthSessionRepository(db),
		cleanup: func() {
			_ = db.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
