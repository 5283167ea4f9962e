package application

import (
	"errors"
	"fmt"

	"github.com/example/classroom-scheduler/internal/timetable"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a uniqueness constraint rejects a write.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned when an authentication attempt fails.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when an auth token is past its expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when an auth token has been revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
	// ErrAccountLocked is returned when repeated failed logins have locked an account.
	ErrAccountLocked = errors.New("application: account locked")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// ConflictError reports that a candidate session collides with persisted
// sessions. Each record names the colliding session, the contested resource,
// and the weekdays on which the collision occurs.
type ConflictError struct {
	Conflicts []timetable.Conflict
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	if c == nil || len(c.Conflicts) == 0 {
		return "scheduling conflict"
	}
	return fmt.Sprintf("scheduling conflict with %d session(s)", len(c.Conflicts))
}
