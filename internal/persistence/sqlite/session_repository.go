package sqlite

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository on SQLite. A
// session is stored as one logical record; its recurring weekdays live in the
// session_days child table so the day set stays a set at the schema level.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates an SQLite-backed session repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateSession inserts a session together with its weekday rows.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (id, subject_id, instructor_id, room, start_minutes, end_minutes, department_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			session.ID,
			session.SubjectID,
			session.InstructorID,
			session.Room,
			session.StartMinutes,
			session.EndMinutes,
			session.DepartmentID,
			formatTime(session.CreatedAt),
			formatTime(session.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		return insertDays(ctx, tx, session.ID, session.Days)
	})
}

// UpdateSession rewrites a session and replaces its weekday rows. The stored
// department and creation timestamp are immutable.
func (r *SessionRepository) UpdateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" {
		return persistence.ErrNotFound
	}

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var departmentID, createdAt string
		err := tx.QueryRowContext(ctx, "SELECT department_id, created_at FROM sessions WHERE id = ?", session.ID).
			Scan(&departmentID, &createdAt)
		if err != nil {
			if err == sql.ErrNoRows {
				return persistence.ErrNotFound
			}
			return mapError(err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE sessions
			SET subject_id = ?, instructor_id = ?, room = ?, start_minutes = ?, end_minutes = ?, updated_at = ?
			WHERE id = ?`,
			session.SubjectID,
			session.InstructorID,
			session.Room,
			session.StartMinutes,
			session.EndMinutes,
			formatTime(session.UpdatedAt),
			session.ID,
		)
		if err != nil {
			return mapError(err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM session_days WHERE session_id = ?", session.ID); err != nil {
			return mapError(err)
		}
		return insertDays(ctx, tx, session.ID, session.Days)
	})
}

// GetSession retrieves one session with its weekday set.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	if id == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	row := r.db.db.QueryRowContext(ctx, `
		SELECT id, subject_id, instructor_id, room, start_minutes, end_minutes, department_id, created_at, updated_at
		FROM sessions
		WHERE id = ?`, id)

	session, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, mapError(err)
	}

	days, err := r.loadDays(ctx, id)
	if err != nil {
		return persistence.Session{}, err
	}
	session.Days = days
	return session, nil
}

// ListSessions returns sessions matching the filter ordered by creation time
// then identifier.
func (r *SessionRepository) ListSessions(ctx context.Context, filter persistence.SessionFilter) ([]persistence.Session, error) {
	query := `
		SELECT id, subject_id, instructor_id, room, start_minutes, end_minutes, department_id, created_at, updated_at
		FROM sessions`

	var conditions []string
	var args []any
	if filter.InstructorID != "" {
		conditions = append(conditions, "instructor_id = ?")
		args = append(args, filter.InstructorID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, "subject_id = ?")
		args = append(args, filter.SubjectID)
	}
	if filter.DepartmentID != "" {
		conditions = append(conditions, "department_id = ?")
		args = append(args, filter.DepartmentID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var sessions []persistence.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, mapError(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range sessions {
		days, err := r.loadDays(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Days = days
	}
	return sessions, nil
}

// DeleteSession removes a session; its weekday rows cascade.
func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var session persistence.Session
	var createdAt, updatedAt string
	err := row.Scan(
		&session.ID,
		&session.SubjectID,
		&session.InstructorID,
		&session.Room,
		&session.StartMinutes,
		&session.EndMinutes,
		&session.DepartmentID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, err
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

func insertDays(ctx context.Context, tx *sql.Tx, sessionID string, days []time.Weekday) error {
	seen := make(map[time.Weekday]struct{}, len(days))
	for _, day := range days {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO session_days (session_id, weekday) VALUES (?, ?)",
			sessionID, int(day)); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *SessionRepository) loadDays(ctx context.Context, sessionID string) ([]time.Weekday, error) {
	rows, err := r.db.db.QueryContext(ctx,
		"SELECT weekday FROM session_days WHERE session_id = ?", sessionID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var days []time.Weekday
	for rows.Next() {
		var day int
		if err := rows.Scan(&day); err != nil {
			return nil, mapError(err)
		}
		days = append(days, time.Weekday(day))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	// Monday-first canonical order for deterministic round-trips.
	sort.Slice(days, func(i, j int) bool {
		return mondayIndex(days[i]) < mondayIndex(days[j])
	})
	return days, nil
}

func mondayIndex(day time.Weekday) int {
	return (int(day) + 6) % 7
}
