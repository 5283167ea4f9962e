package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// SubjectRepository implements persistence.SubjectRepository on SQLite.
type SubjectRepository struct {
	db *DB
}

// NewSubjectRepository creates an SQLite-backed subject repository.
func NewSubjectRepository(db *DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// CreateSubject inserts a new subject.
func (r *SubjectRepository) CreateSubject(ctx context.Context, subject persistence.Subject) error {
	if subject.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.db.db.ExecContext(ctx, `
		INSERT INTO subjects (id, name, department_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		subject.ID,
		subject.Name,
		subject.DepartmentID,
		formatTime(subject.CreatedAt),
		formatTime(subject.UpdatedAt),
	)
	return mapError(err)
}

// UpdateSubject rewrites an existing subject.
func (r *SubjectRepository) UpdateSubject(ctx context.Context, subject persistence.Subject) error {
	result, err := r.db.db.ExecContext(ctx, `
		UPDATE subjects
		SET name = ?, department_id = ?, updated_at = ?
		WHERE id = ?`,
		subject.Name,
		subject.DepartmentID,
		formatTime(subject.UpdatedAt),
		subject.ID,
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

// GetSubject retrieves a subject by ID.
func (r *SubjectRepository) GetSubject(ctx context.Context, id string) (persistence.Subject, error) {
	if id == "" {
		return persistence.Subject{}, persistence.ErrNotFound
	}

	var subject persistence.Subject
	var createdAt, updatedAt string
	err := r.db.db.QueryRowContext(ctx, `
		SELECT id, name, department_id, created_at, updated_at
		FROM subjects WHERE id = ?`, id).
		Scan(&subject.ID, &subject.Name, &subject.DepartmentID, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Subject{}, persistence.ErrNotFound
		}
		return persistence.Subject{}, mapError(err)
	}

	if subject.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Subject{}, err
	}
	if subject.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Subject{}, err
	}
	return subject, nil
}

// ListSubjects returns all subjects ordered by name.
func (r *SubjectRepository) ListSubjects(ctx context.Context) ([]persistence.Subject, error) {
	rows, err := r.db.db.QueryContext(ctx, `
		SELECT id, name, department_id, created_at, updated_at
		FROM subjects ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var subjects []persistence.Subject
	for rows.Next() {
		var subject persistence.Subject
		var createdAt, updatedAt string
		if err := rows.Scan(&subject.ID, &subject.Name, &subject.DepartmentID, &createdAt, &updatedAt); err != nil {
			return nil, mapError(err)
		}
		if subject.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if subject.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return subjects, nil
}

// DeleteSubject removes a subject by ID. Sessions referencing the subject
// keep it alive through the foreign key, surfacing ErrForeignKeyViolation.
func (r *SubjectRepository) DeleteSubject(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.db.db.ExecContext(ctx, "DELETE FROM subjects WHERE id = ?", id)
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
