package application

import (
	"time"

	"github.com/example/classroom-scheduler/internal/recurrence"
	"github.com/example/classroom-scheduler/internal/timetable"
)

// Principal represents the authenticated instructor invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// SessionInput captures caller provided session fields before validation.
// Days are lowercase English weekday names and the clock fields use "HH:MM".
type SessionInput struct {
	SubjectID    string
	InstructorID string
	Room         string
	Days         []string
	StartTime    string
	EndTime      string
}

// Session represents a persisted recurring class session.
type Session struct {
	ID           string
	SubjectID    string
	InstructorID string
	Room         string
	Days         timetable.DaySet
	Window       timetable.TimeInterval
	DepartmentID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateSessionParams wraps the data required to create a session.
type CreateSessionParams struct {
	Principal Principal
	Input     SessionInput
}

// UpdateSessionParams wraps the data required to update an existing session.
type UpdateSessionParams struct {
	Principal Principal
	SessionID string
	Input     SessionInput
}

// ListWeekParams wraps the data required to materialize a week of occurrences.
type ListWeekParams struct {
	Principal    Principal
	WeekStart    time.Time
	InstructorID string
	SubjectID    string
}

// WeekView bundles the sessions matching a listing query with their concrete
// occurrences for the requested week.
type WeekView struct {
	WeekStart   time.Time
	Sessions    []Session
	Occurrences []recurrence.Occurrence
}

// SubjectInput captures caller provided subject fields.
type SubjectInput struct {
	Name         string
	DepartmentID string
}

// Subject represents a catalog entry sessions are taught under.
type Subject struct {
	ID           string
	Name         string
	DepartmentID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateSubjectParams wraps the data required to create a subject.
type CreateSubjectParams struct {
	Principal Principal
	Input     SubjectInput
}

// UpdateSubjectParams wraps the data required to update a subject.
type UpdateSubjectParams struct {
	Principal Principal
	SubjectID string
	Input     SubjectInput
}

// InstructorInput captures caller provided instructor attributes.
type InstructorInput struct {
	Email       string
	DisplayName string
	Password    string
	IsAdmin     bool
}

// Instructor represents a teaching account exposed by the application services.
type Instructor struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateInstructorParams wraps the data required to create an instructor.
type CreateInstructorParams struct {
	Principal Principal
	Input     InstructorInput
}

// UpdateInstructorParams wraps the data required to update an instructor.
type UpdateInstructorParams struct {
	Principal    Principal
	InstructorID string
	Input        InstructorInput
}

// InstructorCredentials models the authentication attributes persisted for an instructor.
type InstructorCredentials struct {
	Instructor   Instructor
	PasswordHash string
}

// AuthSession represents an authenticated session issued to an instructor.
type AuthSession struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate an instructor.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	Instructor Instructor
	Session    AuthSession
}
