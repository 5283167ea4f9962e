package application

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// InstructorRepository captures the persistence operations needed by the instructor service.
type InstructorRepository interface {
	CreateInstructor(ctx context.Context, instructor Instructor, passwordHash string) (Instructor, error)
	GetInstructor(ctx context.Context, id string) (Instructor, error)
	UpdateInstructor(ctx context.Context, instructor Instructor) (Instructor, error)
	DeleteInstructor(ctx context.Context, id string) error
	ListInstructors(ctx context.Context) ([]Instructor, error)
}

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

// InstructorService orchestrates validation, authorization, and persistence
// for teaching accounts.
type InstructorService struct {
	instructors  InstructorRepository
	hashPassword PasswordHasher
	idGenerator  func() string
	now          func() time.Time
}

// NewInstructorService wires dependencies for the instructor service.
func NewInstructorService(instructors InstructorRepository, hashPassword PasswordHasher, idGenerator func() string, now func() time.Time) *InstructorService {
	if hashPassword == nil {
		hashPassword = func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &InstructorService{
		instructors:  instructors,
		hashPassword: hashPassword,
		idGenerator:  idGenerator,
		now:          now,
	}
}

// CreateInstructor validates input, hashes the initial password, and persists
// a new account for administrators.
func (s *InstructorService) CreateInstructor(ctx context.Context, params CreateInstructorParams) (Instructor, error) {
	if s == nil {
		return Instructor{}, fmt.Errorf("InstructorService is nil")
	}
	if !params.Principal.IsAdmin {
		return Instructor{}, ErrUnauthorized
	}

	normalized := normalizeInstructorInput(params.Input)
	vErr := validateInstructorInput(normalized, true)
	if vErr.HasErrors() {
		return Instructor{}, vErr
	}

	hash, err := s.hashPassword(normalized.Password)
	if err != nil {
		return Instructor{}, err
	}

	instructor := Instructor{
		ID:          s.idGenerator(),
		Email:       normalized.Email,
		DisplayName: normalized.DisplayName,
		IsAdmin:     normalized.IsAdmin,
		CreatedAt:   s.now(),
	}
	instructor.UpdatedAt = instructor.CreatedAt

	if s.instructors == nil {
		return instructor, nil
	}

	persisted, err := s.instructors.CreateInstructor(ctx, instructor, hash)
	if err != nil {
		return Instructor{}, mapInstructorRepoError(err)
	}

	return persisted, nil
}

// UpdateInstructor validates input and updates an existing account for administrators.
// The password is not changed through this path.
func (s *InstructorService) UpdateInstructor(ctx context.Context, params UpdateInstructorParams) (Instructor, error) {
	if s == nil {
		return Instructor{}, fmt.Errorf("InstructorService is nil")
	}
	if !params.Principal.IsAdmin {
		return Instructor{}, ErrUnauthorized
	}
	if s.instructors == nil {
		return Instructor{}, fmt.Errorf("instructor repository not configured")
	}

	existing, err := s.instructors.GetInstructor(ctx, params.InstructorID)
	if err != nil {
		return Instructor{}, mapInstructorRepoError(err)
	}

	normalized := normalizeInstructorInput(params.Input)
	vErr := validateInstructorInput(normalized, false)
	if vErr.HasErrors() {
		return Instructor{}, vErr
	}

	updated := existing
	updated.Email = normalized.Email
	updated.DisplayName = normalized.DisplayName
	updated.IsAdmin = normalized.IsAdmin
	updated.UpdatedAt = s.now()

	persisted, err := s.instructors.UpdateInstructor(ctx, updated)
	if err != nil {
		return Instructor{}, mapInstructorRepoError(err)
	}

	return persisted, nil
}

// DeleteInstructor removes an account when requested by an administrator.
func (s *InstructorService) DeleteInstructor(ctx context.Context, principal Principal, instructorID string) error {
	if s == nil {
		return fmt.Errorf("InstructorService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.instructors == nil {
		return fmt.Errorf("instructor repository not configured")
	}

	if err := s.instructors.DeleteInstructor(ctx, instructorID); err != nil {
		return mapInstructorRepoError(err)
	}

	return nil
}

// ListInstructors returns all accounts for administrators.
func (s *InstructorService) ListInstructors(ctx context.Context, principal Principal) ([]Instructor, error) {
	if s == nil {
		return nil, fmt.Errorf("InstructorService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	if s.instructors == nil {
		return nil, nil
	}

	instructors, err := s.instructors.ListInstructors(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Instructor, len(instructors))
	copy(out, instructors)

	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Email, out[j].Email) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Email) < strings.ToLower(out[j].Email)
	})

	return out, nil
}

func normalizeInstructorInput(input InstructorInput) InstructorInput {
	return InstructorInput{
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Password:    input.Password,
		IsAdmin:     input.IsAdmin,
	}
}

func validateInstructorInput(input InstructorInput, requirePassword bool) *ValidationError {
	vErr := &ValidationError{}

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if input.DisplayName == "" {
		vErr.add("display_name", "display name is required")
	}

	if requirePassword {
		if input.Password == "" {
			vErr.add("password", "password is required")
		} else if len(input.Password) < 8 {
			vErr.add("password", "password must be at least 8 characters")
		}
	}

	return vErr
}

func mapInstructorRepoError(err error) error {
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
		vErr.add("instructor_id", "instructor is still referenced by sessions")
		return vErr
	}
	return err
}
