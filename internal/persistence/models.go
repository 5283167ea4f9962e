package persistence

import "time"

// Session represents a recurring class booking stored in persistence. Days
// holds the weekday tags the session recurs on; StartMinutes/EndMinutes bound
// the daily time window in minutes since midnight.
type Session struct {
	ID           string
	SubjectID    string
	InstructorID string
	Room         string
	Days         []time.Weekday
	StartMinutes int
	EndMinutes   int
	DepartmentID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Subject represents a catalog entry for a taught subject and its owning
// department.
type Subject struct {
	ID           string
	Name         string
	DepartmentID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Instructor represents a teaching staff account.
type Instructor struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthSession represents an authentication session issued to an instructor.
type AuthSession struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
