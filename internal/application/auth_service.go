package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CredentialStore exposes credential lookup operations required by the auth service.
type CredentialStore interface {
	GetInstructorCredentialsByEmail(ctx context.Context, email string) (InstructorCredentials, error)
	GetInstructor(ctx context.Context, id string) (Instructor, error)
}

// AuthSessionRepository captures the persistence interactions for issued tokens.
type AuthSessionRepository interface {
	CreateAuthSession(ctx context.Context, session AuthSession) (AuthSession, error)
	GetAuthSession(ctx context.Context, token string) (AuthSession, error)
	RevokeAuthSession(ctx context.Context, token string, revokedAt time.Time) (AuthSession, error)
	DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService coordinates authentication flows such as login, token
// validation, and logout.
type AuthService struct {
	credentials    CredentialStore
	sessions       AuthSessionRepository
	verifyPassword PasswordVerifier
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	lockout        *loginLockout
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, sessions AuthSessionRepository, verify PasswordVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(credentials, sessions, verify, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials CredentialStore, sessions AuthSessionRepository, verify PasswordVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		sessions:       sessions,
		verifyPassword: verify,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		lockout:        newLoginLockout(0, 0, now),
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate validates credentials and issues a new session token.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	password := params.Password

	logger := s.loggerWith(ctx, "Authenticate",
		"email", email,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"user_id", result.Instructor.ID,
			"session_id", result.Session.ID,
		).InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	if s.lockout.locked(email) {
		err = ErrAccountLocked
		return
	}

	var creds InstructorCredentials
	creds, err = s.credentials.GetInstructorCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.lockout.recordFailure(email)
			err = ErrInvalidCredentials
			return
		}
		return
	}

	if err = s.verifyPassword(creds.PasswordHash, password); err != nil {
		s.lockout.recordFailure(email)
		err = ErrInvalidCredentials
		return
	}

	s.lockout.reset(email)

	now := s.now()
	id := s.tokenGenerator()
	token := s.tokenGenerator()
	if token == "" {
		token = id
	}

	session := AuthSession{
		ID:        id,
		UserID:    creds.Instructor.ID,
		Token:     token,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if s.sessions != nil {
		if err = s.sessions.DeleteExpiredAuthSessions(ctx, now); err != nil {
			return
		}

		var persisted AuthSession
		persisted, err = s.sessions.CreateAuthSession(ctx, session)
		if err != nil {
			return
		}
		session = persisted
	}

	result = AuthenticateResult{
		Instructor: creds.Instructor,
		Session:    session,
	}
	return
}

// ValidateToken resolves a bearer token to the principal it was issued to.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	token = strings.TrimSpace(token)
	if token == "" {
		err = ErrInvalidCredentials
		return
	}

	var session AuthSession
	session, err = s.sessions.GetAuthSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if session.RevokedAt != nil {
		err = ErrSessionRevoked
		return
	}
	if !s.now().Before(session.ExpiresAt) {
		err = ErrSessionExpired
		return
	}

	if s.credentials == nil {
		principal = Principal{UserID: session.UserID}
		return
	}

	var instructor Instructor
	instructor, err = s.credentials.GetInstructor(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	principal = Principal{UserID: instructor.ID, IsAdmin: instructor.IsAdmin}
	return
}

// Logout revokes the session identified by the token. Revoking an unknown
// token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) (err error) {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	logger := s.loggerWith(ctx, "Logout")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "logout succeeded")
	}()

	token = strings.TrimSpace(token)
	if token == "" {
		err = ErrInvalidCredentials
		return
	}

	if _, rerr := s.sessions.RevokeAuthSession(ctx, token, s.now()); rerr != nil {
		if errors.Is(rerr, ErrNotFound) {
			return nil
		}
		err = rerr
		return
	}

	return nil
}
