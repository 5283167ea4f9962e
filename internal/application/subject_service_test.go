package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/classroom-scheduler/internal/persistence"
)

type subjectRepoStub struct {
	createErr error
	created   Subject

	getSubject Subject
	getErr     error

	updateErr error
	updated   Subject

	deleteErr error
	deletedID string

	list    []Subject
	listErr error
}

func (r *subjectRepoStub) CreateSubject(ctx context.Context, subject Subject) (Subject, error) {
	if r.createErr != nil {
		return Subject{}, r.createErr
	}
	r.created = subject
	return subject, nil
}

func (r *subjectRepoStub) GetSubject(ctx context.Context, id string) (Subject, error) {
	if r.getErr != nil {
		return Subject{}, r.getErr
	}
	if r.getSubject.ID == "" {
		return Subject{}, ErrNotFound
	}
	return r.getSubject, nil
}

func (r *subjectRepoStub) UpdateSubject(ctx context.Context, subject Subject) (Subject, error) {
	if r.updateErr != nil {
		return Subject{}, r.updateErr
	}
	r.updated = subject
	return subject, nil
}

func (r *subjectRepoStub) DeleteSubject(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedID = id
	return nil
}

func (r *subjectRepoStub) ListSubjects(ctx context.Context) ([]Subject, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]Subject, len(r.list))
	copy(out, r.list)
	return out, nil
}

func TestSubjectService_CreateSubject(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewSubjectService(nil, nil, nil)

		_, err := svc.CreateSubject(context.Background(), CreateSubjectParams{
			Principal: Principal{UserID: "instructor-1"},
			Input:     SubjectInput{Name: "Algebra", DepartmentID: "dept-math"},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewSubjectService(nil, nil, nil)

		_, err := svc.CreateSubject(context.Background(), CreateSubjectParams{
			Principal: Principal{IsAdmin: true},
			Input:     SubjectInput{Name: "  ", DepartmentID: ""},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["name"]; !ok {
			t.Fatalf("expected name validation error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["department_id"]; !ok {
			t.Fatalf("expected department_id validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("persists normalized input", func(t *testing.T) {
		repo := &subjectRepoStub{}
		svc := NewSubjectService(repo, func() string { return "subject-1" }, fixedNow)

		created, err := svc.CreateSubject(context.Background(), CreateSubjectParams{
			Principal: Principal{IsAdmin: true},
			Input:     SubjectInput{Name: "  Algebra  ", DepartmentID: " dept-math "},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.Name != "Algebra" || created.DepartmentID != "dept-math" {
			t.Fatalf("expected trimmed fields, got %+v", created)
		}
		if repo.created.ID != "subject-1" {
			t.Fatalf("expected generated id, got %q", repo.created.ID)
		}
	})

	t.Run("maps duplicate names to ErrAlreadyExists", func(t *testing.T) {
		repo := &subjectRepoStub{createErr: persistence.ErrDuplicate}
		svc := NewSubjectService(repo, nil, nil)

		_, err := svc.CreateSubject(context.Background(), CreateSubjectParams{
			Principal: Principal{IsAdmin: true},
			Input:     SubjectInput{Name: "Algebra", DepartmentID: "dept-math"},
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestSubjectService_ListSubjects(t *testing.T) {
	t.Run("sorts by name case insensitively", func(t *testing.T) {
		repo := &subjectRepoStub{list: []Subject{
			{ID: "s2", Name: "physics"},
			{ID: "s1", Name: "Algebra"},
			{ID: "s3", Name: "Chemistry"},
		}}
		svc := NewSubjectService(repo, nil, nil)

		subjects, err := svc.ListSubjects(context.Background(), Principal{UserID: "instructor-1"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		got := make([]string, len(subjects))
		for i, subject := range subjects {
			got[i] = subject.Name
		}
		want := []string{"Algebra", "Chemistry", "physics"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected order %v, got %v", want, got)
			}
		}
	})

	t.Run("rejects anonymous callers", func(t *testing.T) {
		svc := NewSubjectService(&subjectRepoStub{}, nil, nil)

		_, err := svc.ListSubjects(context.Background(), Principal{})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestSubjectService_DeleteSubject(t *testing.T) {
	t.Run("surfaces referential integrity as validation", func(t *testing.T) {
		repo := &subjectRepoStub{deleteErr: persistence.ErrForeignKeyViolation}
		svc := NewSubjectService(repo, nil, nil)

		err := svc.DeleteSubject(context.Background(), Principal{IsAdmin: true}, "subject-1")

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("maps missing subjects to ErrNotFound", func(t *testing.T) {
		repo := &subjectRepoStub{deleteErr: persistence.ErrNotFound}
		svc := NewSubjectService(repo, nil, nil)

		if err := svc.DeleteSubject(context.Background(), Principal{IsAdmin: true}, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
