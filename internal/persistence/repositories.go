package persistence

import (
	"context"
	"time"
)

// SessionFilter narrows session queries.
type SessionFilter struct {
	InstructorID string
	SubjectID    string
	DepartmentID string
}

// SessionRepository stores recurring class sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	UpdateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// SubjectRepository exposes CRUD operations for subjects.
type SubjectRepository interface {
	CreateSubject(ctx context.Context, subject Subject) error
	UpdateSubject(ctx context.Context, subject Subject) error
	GetSubject(ctx context.Context, id string) (Subject, error)
	ListSubjects(ctx context.Context) ([]Subject, error)
	DeleteSubject(ctx context.Context, id string) error
}

// InstructorRepository exposes CRUD operations for instructor accounts.
type InstructorRepository interface {
	CreateInstructor(ctx context.Context, instructor Instructor) error
	UpdateInstructor(ctx context.Context, instructor Instructor) error
	GetInstructor(ctx context.Context, id string) (Instructor, error)
	GetInstructorByEmail(ctx context.Context, email string) (Instructor, error)
	ListInstructors(ctx context.Context) ([]Instructor, error)
	DeleteInstructor(ctx context.Context, id string) error
}

// AuthSessionRepository stores authentication session state.
type AuthSessionRepository interface {
	CreateAuthSession(ctx context.Context, session AuthSession) (AuthSession, error)
	GetAuthSession(ctx context.Context, token string) (AuthSession, error)
	RevokeAuthSession(ctx context.Context, token string, revokedAt time.Time) (AuthSession, error)
	DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error
}
