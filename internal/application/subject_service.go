package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// SubjectRepository captures the persistence operations needed by the subject service.
type SubjectRepository interface {
	CreateSubject(ctx context.Context, subject Subject) (Subject, error)
	GetSubject(ctx context.Context, id string) (Subject, error)
	UpdateSubject(ctx context.Context, subject Subject) (Subject, error)
	DeleteSubject(ctx context.Context, id string) error
	ListSubjects(ctx context.Context) ([]Subject, error)
}

// SubjectService orchestrates validation, authorization, and persistence
// for the subject catalog.
type SubjectService struct {
	subjects    SubjectRepository
	idGenerator func() string
	now         func() time.Time
}

// NewSubjectService wires dependencies for the subject service.
func NewSubjectService(subjects SubjectRepository, idGenerator func() string, now func() time.Time) *SubjectService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SubjectService{subjects: subjects, idGenerator: idGenerator, now: now}
}

// CreateSubject validates input and persists a new subject for administrators.
func (s *SubjectService) CreateSubject(ctx context.Context, params CreateSubjectParams) (Subject, error) {
	if s == nil {
		return Subject{}, fmt.Errorf("SubjectService is nil")
	}
	if !params.Principal.IsAdmin {
		return Subject{}, ErrUnauthorized
	}

	normalized := normalizeSubjectInput(params.Input)
	vErr := validateSubjectInput(normalized)
	if vErr.HasErrors() {
		return Subject{}, vErr
	}

	subject := Subject{
		ID:           s.idGenerator(),
		Name:         normalized.Name,
		DepartmentID: normalized.DepartmentID,
		CreatedAt:    s.now(),
	}
	subject.UpdatedAt = subject.CreatedAt

	if s.subjects == nil {
		return subject, nil
	}

	persisted, err := s.subjects.CreateSubject(ctx, subject)
	if err != nil {
		return Subject{}, mapSubjectRepoError(err)
	}

	return persisted, nil
}

// UpdateSubject validates input and updates an existing subject for administrators.
func (s *SubjectService) UpdateSubject(ctx context.Context, params UpdateSubjectParams) (Subject, error) {
	if s == nil {
		return Subject{}, fmt.Errorf("SubjectService is nil")
	}
	if !params.Principal.IsAdmin {
		return Subject{}, ErrUnauthorized
	}
	if s.subjects == nil {
		return Subject{}, fmt.Errorf("subject repository not configured")
	}

	existing, err := s.subjects.GetSubject(ctx, params.SubjectID)
	if err != nil {
		return Subject{}, mapSubjectRepoError(err)
	}

	normalized := normalizeSubjectInput(params.Input)
	vErr := validateSubjectInput(normalized)
	if vErr.HasErrors() {
		return Subject{}, vErr
	}

	updated := existing
	updated.Name = normalized.Name
	updated.DepartmentID = normalized.DepartmentID
	updated.UpdatedAt = s.now()

	persisted, err := s.subjects.UpdateSubject(ctx, updated)
	if err != nil {
		return Subject{}, mapSubjectRepoError(err)
	}

	return persisted, nil
}

// DeleteSubject removes a subject when requested by an administrator.
func (s *SubjectService) DeleteSubject(ctx context.Context, principal Principal, subjectID string) error {
	if s == nil {
		return fmt.Errorf("SubjectService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.subjects == nil {
		return fmt.Errorf("subject repository not configured")
	}

	if err := s.subjects.DeleteSubject(ctx, subjectID); err != nil {
		return mapSubjectRepoError(err)
	}

	return nil
}

// ListSubjects returns the catalog sorted by name for any authenticated caller.
func (s *SubjectService) ListSubjects(ctx context.Context, principal Principal) ([]Subject, error) {
	if s == nil {
		return nil, fmt.Errorf("SubjectService is nil")
	}
	if principal.UserID == "" && !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	if s.subjects == nil {
		return nil, nil
	}

	subjects, err := s.subjects.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Subject, len(subjects))
	copy(out, subjects)

	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Name, out[j].Name) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})

	return out, nil
}

func normalizeSubjectInput(input SubjectInput) SubjectInput {
	return SubjectInput{
		Name:         strings.TrimSpace(input.Name),
		DepartmentID: strings.TrimSpace(input.DepartmentID),
	}
}

func validateSubjectInput(input SubjectInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if input.DepartmentID == "" {
		vErr.add("department_id", "department is required")
	}

	return vErr
}

func mapSubjectRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("subject_id", "subject is still referenced by sessions")
		return vErr
	}
	return err
}
