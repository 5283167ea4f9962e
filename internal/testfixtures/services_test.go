package testfixtures

import (
	"context"
	"testing"

	"github.com/example/classroom-scheduler/internal/application"
)

type capturingSubjectRepo struct {
	created application.Subject
}

func (c *capturingSubjectRepo) CreateSubject(ctx context.Context, subject application.Subject) (application.Subject, error) {
	c.created = subject
	return subject, nil
}

func (c *capturingSubjectRepo) GetSubject(ctx context.Context, id string) (application.Subject, error) {
	return application.Subject{}, application.ErrNotFound
}

func (c *capturingSubjectRepo) UpdateSubject(ctx context.Context, subject application.Subject) (application.Subject, error) {
	return subject, nil
}

func (c *capturingSubjectRepo) DeleteSubject(ctx context.Context, id string) error {
	return nil
}

func (c *capturingSubjectRepo) ListSubjects(ctx context.Context) ([]application.Subject, error) {
	return nil, nil
}

func TestServiceFactoryNewSubjectService(t *testing.T) {
	factory := NewServiceFactory()
	repo := &capturingSubjectRepo{}

	svc := factory.NewSubjectService(SubjectServiceDeps{Subjects: repo})
	principal := application.Principal{UserID: "admin", IsAdmin: true}
	input := application.SubjectInput{Name: "Algebra", DepartmentID: "dept-math"}

	subject, err := svc.CreateSubject(context.Background(), application.CreateSubjectParams{Principal: principal, Input: input})
	if err != nil {
		t.Fatalf("CreateSubject returned error: %v", err)
	}

	if subject.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", subject.ID)
	}
	if repo.created.ID != subject.ID {
		t.Fatalf("repository received unexpected ID: %q", repo.created.ID)
	}
	if !subject.CreatedAt.Equal(factory.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Now(), subject.CreatedAt)
	}
}
