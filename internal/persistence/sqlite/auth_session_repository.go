package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// AuthSessionRepository implements persistence.AuthSessionRepository on SQLite.
type AuthSessionRepository struct {
	db *DB
}

// NewAuthSessionRepository creates an SQLite-backed auth session repository.
func NewAuthSessionRepository(db *DB) *AuthSessionRepository {
	return &AuthSessionRepository{db: db}
}

// CreateAuthSession inserts an issued session token.
func (r *AuthSessionRepository) CreateAuthSession(ctx context.Context, session persistence.AuthSession) (persistence.AuthSession, error) {
	if session.ID == "" || session.Token == "" {
		return persistence.AuthSession{}, persistence.ErrConstraintViolation
	}

	_, err := r.db.db.ExecContext(ctx, `
		INSERT INTO auth_sessions (id, token, user_id, expires_at, created_at, updated_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		session.ID,
		session.Token,
		session.UserID,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	)
	if err != nil {
		return persistence.AuthSession{}, mapError(err)
	}
	return r.GetAuthSession(ctx, session.Token)
}

// GetAuthSession retrieves a session by its opaque token.
func (r *AuthSessionRepository) GetAuthSession(ctx context.Context, token string) (persistence.AuthSession, error) {
	if token == "" {
		return persistence.AuthSession{}, persistence.ErrNotFound
	}

	var session persistence.AuthSession
	var expiresAt, createdAt, updatedAt string
	var revokedAt sql.NullString
	err := r.db.db.QueryRowContext(ctx, `
		SELECT id, token, user_id, expires_at, created_at, updated_at, revoked_at
		FROM auth_sessions WHERE token = ?`, token).
		Scan(&session.ID, &session.Token, &session.UserID, &expiresAt, &createdAt, &updatedAt, &revokedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.AuthSession{}, persistence.ErrNotFound
		}
		return persistence.AuthSession{}, mapError(err)
	}

	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.AuthSession{}, err
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.AuthSession{}, err
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.AuthSession{}, err
	}
	if revokedAt.Valid {
		ts, err := parseTime(revokedAt.String)
		if err != nil {
			return persistence.AuthSession{}, err
		}
		session.RevokedAt = &ts
	}
	return session, nil
}

// RevokeAuthSession marks a session revoked and returns the updated record.
func (r *AuthSessionRepository) RevokeAuthSession(ctx context.Context, token string, revokedAt time.Time) (persistence.AuthSession, error) {
	result, err := r.db.db.ExecContext(ctx, `
		UPDATE auth_sessions SET revoked_at = ?, updated_at = ? WHERE token = ?`,
		formatTime(revokedAt),
		formatTime(revokedAt),
		token,
	)
	if err != nil {
		return persistence.AuthSession{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.AuthSession{}, err
	}
	if affected == 0 {
		return persistence.AuthSession{}, persistence.ErrNotFound
	}
	return r.GetAuthSession(ctx, token)
}

// DeleteExpiredAuthSessions removes sessions that expired before reference.
func (r *AuthSessionRepository) DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error {
	_, err := r.db.db.ExecContext(ctx,
		"DELETE FROM auth_sessions WHERE expires_at < ?", formatTime(reference))
	return mapError(err)
}
