package http

import (
	"context"
	"log/slog"

	"github.com/example/classroom-scheduler/internal/application"
	"github.com/example/classroom-scheduler/internal/logging"
)

type contextKey string

const (
	principalContextKey    contextKey = "principal"
	sessionIDContextKey    contextKey = "session_id"
	subjectIDContextKey    contextKey = "subject_id"
	instructorIDContextKey contextKey = "instructor_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithSessionID injects the session identifier resolved from the request path.
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, sessionID)
}

// SessionIDFromContext extracts a session identifier previously associated with the context.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDContextKey).(string)
	return id, ok
}

// ContextWithSubjectID injects the subject identifier resolved from the request path.
func ContextWithSubjectID(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, subjectIDContextKey, subjectID)
}

// SubjectIDFromContext extracts a subject identifier previously associated with the context.
func SubjectIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(subjectIDContextKey).(string)
	return id, ok
}

// ContextWithInstructorID injects the instructor identifier resolved from the request path.
func ContextWithInstructorID(ctx context.Context, instructorID string) context.Context {
	return context.WithValue(ctx, instructorIDContextKey, instructorID)
}

// InstructorIDFromContext extracts an instructor identifier previously associated with the context.
func InstructorIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(instructorIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches a request scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts a logger previously attached to the context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
