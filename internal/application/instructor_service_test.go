package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/classroom-scheduler/internal/persistence"
)

type instructorRepoStub struct {
	createErr   error
	created     Instructor
	createdHash string

	getInstructor Instructor
	getErr        error

	updateErr error
	updated   Instructor

	deleteErr error
	deletedID string

	list    []Instructor
	listErr error
}

func (r *instructorRepoStub) CreateInstructor(ctx context.Context, instructor Instructor, passwordHash string) (Instructor, error) {
	if r.createErr != nil {
		return Instructor{}, r.createErr
	}
	r.created = instructor
	r.createdHash = passwordHash
	return instructor, nil
}

func (r *instructorRepoStub) GetInstructor(ctx context.Context, id string) (Instructor, error) {
	if r.getErr != nil {
		return Instructor{}, r.getErr
	}
	if r.getInstructor.ID == "" {
		return Instructor{}, ErrNotFound
	}
	return r.getInstructor, nil
}

func (r *instructorRepoStub) UpdateInstructor(ctx context.Context, instructor Instructor) (Instructor, error) {
	if r.updateErr != nil {
		return Instructor{}, r.updateErr
	}
	r.updated = instructor
	return instructor, nil
}

func (r *instructorRepoStub) DeleteInstructor(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedID = id
	return nil
}

func (r *instructorRepoStub) ListInstructors(ctx context.Context) ([]Instructor, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]Instructor, len(r.list))
	copy(out, r.list)
	return out, nil
}

func TestInstructorService_CreateInstructor(t *testing.T) {
	validInput := InstructorInput{
		Email:       "Teacher@Example.com",
		DisplayName: "  Taro Yamada  ",
		Password:    "correct horse",
	}

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewInstructorService(nil, nil, nil, nil)

		_, err := svc.CreateInstructor(context.Background(), CreateInstructorParams{
			Principal: Principal{UserID: "instructor-1"},
			Input:     validInput,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates email, display name, and password", func(t *testing.T) {
		svc := NewInstructorService(nil, nil, nil, nil)

		_, err := svc.CreateInstructor(context.Background(), CreateInstructorParams{
			Principal: Principal{IsAdmin: true},
			Input:     InstructorInput{Email: "not-an-email", DisplayName: "", Password: "short"},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"email", "display_name", "password"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("hashes the password and normalizes the email", func(t *testing.T) {
		repo := &instructorRepoStub{}
		hasher := func(password string) (string, error) { return "hashed:" + password, nil }
		svc := NewInstructorService(repo, hasher, func() string { return "instructor-1" }, fixedNow)

		created, err := svc.CreateInstructor(context.Background(), CreateInstructorParams{
			Principal: Principal{IsAdmin: true},
			Input:     validInput,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.Email != "teacher@example.com" {
			t.Fatalf("expected lowercased email, got %q", created.Email)
		}
		if created.DisplayName != "Taro Yamada" {
			t.Fatalf("expected trimmed display name, got %q", created.DisplayName)
		}
		if repo.createdHash != "hashed:correct horse" {
			t.Fatalf("expected hashed password, got %q", repo.createdHash)
		}
	})

	t.Run("uses argon2id by default", func(t *testing.T) {
		repo := &instructorRepoStub{}
		svc := NewInstructorService(repo, nil, func() string { return "instructor-1" }, fixedNow)

		if _, err := svc.CreateInstructor(context.Background(), CreateInstructorParams{
			Principal: Principal{IsAdmin: true},
			Input:     validInput,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
		if !strings.HasPrefix(repo.createdHash, "$argon2id$") {
			t.Fatalf("expected argon2id hash, got %q", repo.createdHash)
		}
	})

	t.Run("maps duplicate emails to ErrAlreadyExists", func(t *testing.T) {
		repo := &instructorRepoStub{createErr: persistence.ErrDuplicate}
		svc := NewInstructorService(repo, nil, nil, nil)

		_, err := svc.CreateInstructor(context.Background(), CreateInstructorParams{
			Principal: Principal{IsAdmin: true},
			Input:     validInput,
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestInstructorService_UpdateInstructor(t *testing.T) {
	t.Run("preserves identity fields and refreshes the timestamp", func(t *testing.T) {
		existing := Instructor{
			ID:        "instructor-1",
			Email:     "old@example.com",
			CreatedAt: fixedNow().AddDate(0, -1, 0),
			UpdatedAt: fixedNow().AddDate(0, -1, 0),
		}
		repo := &instructorRepoStub{getInstructor: existing}
		svc := NewInstructorService(repo, nil, nil, fixedNow)

		updated, err := svc.UpdateInstructor(context.Background(), UpdateInstructorParams{
			Principal:    Principal{IsAdmin: true},
			InstructorID: "instructor-1",
			Input:        InstructorInput{Email: "new@example.com", DisplayName: "New Name"},
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.ID != "instructor-1" {
			t.Fatalf("identity must not change, got %q", updated.ID)
		}
		if !updated.CreatedAt.Equal(existing.CreatedAt) {
			t.Fatalf("created timestamp must be preserved")
		}
		if !updated.UpdatedAt.Equal(fixedNow()) {
			t.Fatalf("expected refreshed updated timestamp, got %v", updated.UpdatedAt)
		}
	})

	t.Run("returns ErrNotFound for unknown accounts", func(t *testing.T) {
		repo := &instructorRepoStub{getErr: persistence.ErrNotFound}
		svc := NewInstructorService(repo, nil, nil, nil)

		_, err := svc.UpdateInstructor(context.Background(), UpdateInstructorParams{
			Principal:    Principal{IsAdmin: true},
			InstructorID: "missing",
			Input:        InstructorInput{Email: "a@example.com", DisplayName: "A"},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestInstructorService_ListInstructors(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewInstructorService(&instructorRepoStub{}, nil, nil, nil)

		_, err := svc.ListInstructors(context.Background(), Principal{UserID: "instructor-1"})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("sorts accounts by email", func(t *testing.T) {
		repo := &instructorRepoStub{list: []Instructor{
			{ID: "i2", Email: "zeta@example.com"},
			{ID: "i1", Email: "Alpha@example.com"},
		}}
		svc := NewInstructorService(repo, nil, nil, nil)

		instructors, err := svc.ListInstructors(context.Background(), Principal{IsAdmin: true})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if instructors[0].ID != "i1" || instructors[1].ID != "i2" {
			t.Fatalf("unexpected order %+v", instructors)
		}
	})
}
