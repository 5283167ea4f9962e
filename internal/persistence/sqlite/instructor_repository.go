package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// InstructorRepository implements persistence.InstructorRepository on SQLite.
type InstructorRepository struct {
	db *DB
}

// NewInstructorRepository creates an SQLite-backed instructor repository.
func NewInstructorRepository(db *DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// CreateInstructor inserts a new instructor account.
func (r *InstructorRepository) CreateInstructor(ctx context.Context, instructor persistence.Instructor) error {
	if instructor.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.db.db.ExecContext(ctx, `
		INSERT INTO instructors (id, email, display_name, password_hash, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		instructor.ID,
		instructor.Email,
		instructor.DisplayName,
		instructor.PasswordHash,
		boolToInt(instructor.IsAdmin),
		formatTime(instructor.CreatedAt),
		formatTime(instructor.UpdatedAt),
	)
	return mapError(err)
}

// UpdateInstructor rewrites an existing instructor account.
func (r *InstructorRepository) UpdateInstructor(ctx context.Context, instructor persistence.Instructor) error {
	result, err := r.db.db.ExecContext(ctx, `
		UPDATE instructors
		SET email = ?, display_name = ?, password_hash = ?, is_admin = ?, updated_at = ?
		WHERE id = ?`,
		instructor.Email,
		instructor.DisplayName,
		instructor.PasswordHash,
		boolToInt(instructor.IsAdmin),
		formatTime(instructor.UpdatedAt),
		instructor.ID,
	)
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
}

// GetInstructor retrieves an instructor by ID.
func (r *InstructorRepository) GetInstructor(ctx context.Context, id string) (persistence.Instructor, error) {
	if id == "" {
		return persistence.Instructor{}, persistence.ErrNotFound
	}
	return r.getBy(ctx, "id = ?", id)
}

// GetInstructorByEmail retrieves an instructor by email, case-insensitively.
func (r *InstructorRepository) GetInstructorByEmail(ctx context.Context, email string) (persistence.Instructor, error) {
	if email == "" {
		return persistence.Instructor{}, persistence.ErrNotFound
	}
	return r.getBy(ctx, "email = ? COLLATE NOCASE", email)
}

// ListInstructors returns all instructors ordered by creation time.
func (r *InstructorRepository) ListInstructors(ctx context.Context) ([]persistence.Instructor, error) {
	rows, err := r.db.db.QueryContext(ctx, `
		SELECT id, email, display_name, password_hash, is_admin, created_at, updated_at
		FROM instructors ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var instructors []persistence.Instructor
	for rows.Next() {
		instructor, err := scanInstructor(rows)
		if err != nil {
			return nil, err
		}
		instructors = append(instructors, instructor)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return instructors, nil
}

// DeleteInstructor removes an instructor by ID. Sessions referencing the
// instructor keep the record alive through the foreign key.
func (r *InstructorRepository) DeleteInstructor(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM auth_sessions WHERE user_id = ?", id); err != nil {
			return mapError(err)
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM instructors WHERE id = ?", id)
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

func (r *InstructorRepository) getBy(ctx context.Context, where string, arg any) (persistence.Instructor, error) {
	row := r.db.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, is_admin, created_at, updated_at
		FROM instructors WHERE `+where, arg)

	instructor, err := scanInstructor(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Instructor{}, persistence.ErrNotFound
		}
		return persistence.Instructor{}, mapError(err)
	}
	return instructor, nil
}

func scanInstructor(row rowScanner) (persistence.Instructor, error) {
	var instructor persistence.Instructor
	var isAdmin int
	var createdAt, updatedAt string
	err := row.Scan(
		&instructor.ID,
		&instructor.Email,
		&instructor.DisplayName,
		&instructor.PasswordHash,
		&isAdmin,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Instructor{}, err
	}
	instructor.IsAdmin = isAdmin != 0
	if instructor.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Instructor{}, err
	}
	if instructor.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Instructor{}, err
	}
	return instructor, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
