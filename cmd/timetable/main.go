package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/classroom-scheduler/internal/application"
	"github.com/example/classroom-scheduler/internal/config"
	httptransport "github.com/example/classroom-scheduler/internal/http"
	"github.com/example/classroom-scheduler/internal/persistence"
	"github.com/example/classroom-scheduler/internal/persistence/sqlite"
	"github.com/example/classroom-scheduler/internal/timetable"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := db.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	// Tokens are opaque and validated against storage; the HMAC keyed by the
	// session secret makes them tamper-evident in logs and backups.
	tokenGenerator := func() string {
		raw := uuid.NewString()
		mac := hmac.New(sha256.New, []byte(cfg.SessionSecret))
		mac.Write([]byte(raw))
		return strings.ReplaceAll(raw, "-", "") + hex.EncodeToString(mac.Sum(nil))
	}
	now := time.Now

	sessionRepo := newSessionRepositoryAdapter(sqlite.NewSessionRepository(db))
	subjectRepo := newSubjectRepositoryAdapter(sqlite.NewSubjectRepository(db))
	instructorRepo := newInstructorRepositoryAdapter(sqlite.NewInstructorRepository(db))
	instructorDirectory := newInstructorDirectoryAdapter(sqlite.NewInstructorRepository(db))
	credentialStore := newCredentialStoreAdapter(sqlite.NewInstructorRepository(db))
	authSessionRepo := newAuthSessionRepositoryAdapter(sqlite.NewAuthSessionRepository(db))

	schedulingService := application.NewSchedulingServiceWithLogger(sessionRepo, subjectRepo, instructorDirectory, idGenerator, now, logger)
	schedulingService.ConfigureWeekCache(cfg.WeekCacheTTL, 0)
	subjectService := application.NewSubjectService(subjectRepo, idGenerator, now)
	instructorService := application.NewInstructorService(instructorRepo, nil, idGenerator, now)
	authService := application.NewAuthServiceWithLogger(credentialStore, authSessionRepo, nil, tokenGenerator, now, cfg.SessionTTL, logger)

	authHandler := httptransport.NewAuthHandler(authService, logger)
	sessionHandler := httptransport.NewSessionHandler(schedulingService, logger)
	subjectHandler := httptransport.NewSubjectHandler(subjectService, logger)
	instructorHandler := httptransport.NewInstructorHandler(instructorService, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:        authHandler,
		Sessions:    sessionHandler,
		Subjects:    subjectHandler,
		Instructors: instructorHandler,
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.URL.Path, "/login") {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("timetable API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	if err := a.repo.CreateSession(ctx, toPersistenceSession(session)); err != nil {
		return application.Session{}, err
	}
	return session, nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, id string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored)
}

func (a *sessionRepositoryAdapter) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	if err := a.repo.UpdateSession(ctx, toPersistenceSession(session)); err != nil {
		return application.Session{}, err
	}
	return session, nil
}

func (a *sessionRepositoryAdapter) DeleteSession(ctx context.Context, id string) error {
	return a.repo.DeleteSession(ctx, id)
}

func (a *sessionRepositoryAdapter) ListSessions(ctx context.Context, filter application.SessionRepositoryFilter) ([]application.Session, error) {
	models, err := a.repo.ListSessions(ctx, persistence.SessionFilter{
		InstructorID: filter.InstructorID,
		SubjectID:    filter.SubjectID,
		DepartmentID: filter.DepartmentID,
	})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	sessions := make([]application.Session, 0, len(models))
	for _, model := range models {
		session, err := toApplicationSession(model)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

type subjectRepositoryAdapter struct {
	repo persistence.SubjectRepository
}

func newSubjectRepositoryAdapter(repo persistence.SubjectRepository) *subjectRepositoryAdapter {
	return &subjectRepositoryAdapter{repo: repo}
}

func (a *subjectRepositoryAdapter) CreateSubject(ctx context.Context, subject application.Subject) (application.Subject, error) {
	if err := a.repo.CreateSubject(ctx, toPersistenceSubject(subject)); err != nil {
		return application.Subject{}, err
	}
	return subject, nil
}

func (a *subjectRepositoryAdapter) GetSubject(ctx context.Context, id string) (application.Subject, error) {
	stored, err := a.repo.GetSubject(ctx, id)
	if err != nil {
		return application.Subject{}, err
	}
	return toApplicationSubject(stored), nil
}

func (a *subjectRepositoryAdapter) UpdateSubject(ctx context.Context, subject application.Subject) (application.Subject, error) {
	if err := a.repo.UpdateSubject(ctx, toPersistenceSubject(subject)); err != nil {
		return application.Subject{}, err
	}
	return subject, nil
}

func (a *subjectRepositoryAdapter) DeleteSubject(ctx context.Context, id string) error {
	return a.repo.DeleteSubject(ctx, id)
}

func (a *subjectRepositoryAdapter) ListSubjects(ctx context.Context) ([]application.Subject, error) {
	models, err := a.repo.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	subjects := make([]application.Subject, 0, len(models))
	for _, model := range models {
		subjects = append(subjects, toApplicationSubject(model))
	}
	return subjects, nil
}

type instructorRepositoryAdapter struct {
	repo persistence.InstructorRepository
}

func newInstructorRepositoryAdapter(repo persistence.InstructorRepository) *instructorRepositoryAdapter {
	return &instructorRepositoryAdapter{repo: repo}
}

func (a *instructorRepositoryAdapter) CreateInstructor(ctx context.Context, instructor application.Instructor, passwordHash string) (application.Instructor, error) {
	if err := a.repo.CreateInstructor(ctx, toPersistenceInstructor(instructor, passwordHash)); err != nil {
		return application.Instructor{}, err
	}
	return instructor, nil
}

func (a *instructorRepositoryAdapter) GetInstructor(ctx context.Context, id string) (application.Instructor, error) {
	stored, err := a.repo.GetInstructor(ctx, id)
	if err != nil {
		return application.Instructor{}, err
	}
	return toApplicationInstructor(stored), nil
}

func (a *instructorRepositoryAdapter) UpdateInstructor(ctx context.Context, instructor application.Instructor) (application.Instructor, error) {
	// Updates never touch the password, so the stored hash is carried over.
	current, err := a.repo.GetInstructor(ctx, instructor.ID)
	if err != nil {
		return application.Instructor{}, err
	}
	if err := a.repo.UpdateInstructor(ctx, toPersistenceInstructor(instructor, current.PasswordHash)); err != nil {
		return application.Instructor{}, err
	}
	return instructor, nil
}

func (a *instructorRepositoryAdapter) DeleteInstructor(ctx context.Context, id string) error {
	return a.repo.DeleteInstructor(ctx, id)
}

func (a *instructorRepositoryAdapter) ListInstructors(ctx context.Context) ([]application.Instructor, error) {
	models, err := a.repo.ListInstructors(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	instructors := make([]application.Instructor, 0, len(models))
	for _, model := range models {
		instructors = append(instructors, toApplicationInstructor(model))
	}
	return instructors, nil
}

type instructorDirectoryAdapter struct {
	repo persistence.InstructorRepository
}

func newInstructorDirectoryAdapter(repo persistence.InstructorRepository) *instructorDirectoryAdapter {
	return &instructorDirectoryAdapter{repo: repo}
}

func (a *instructorDirectoryAdapter) InstructorExists(ctx context.Context, id string) (bool, error) {
	if _, err := a.repo.GetInstructor(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type credentialStoreAdapter struct {
	repo persistence.InstructorRepository
}

func newCredentialStoreAdapter(repo persistence.InstructorRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetInstructorCredentialsByEmail(ctx context.Context, email string) (application.InstructorCredentials, error) {
	stored, err := a.repo.GetInstructorByEmail(ctx, email)
	if err != nil {
		return application.InstructorCredentials{}, mapAuthError(err)
	}
	return application.InstructorCredentials{
		Instructor:   toApplicationInstructor(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *credentialStoreAdapter) GetInstructor(ctx context.Context, id string) (application.Instructor, error) {
	stored, err := a.repo.GetInstructor(ctx, id)
	if err != nil {
		return application.Instructor{}, mapAuthError(err)
	}
	return toApplicationInstructor(stored), nil
}

type authSessionRepositoryAdapter struct {
	repo persistence.AuthSessionRepository
}

func newAuthSessionRepositoryAdapter(repo persistence.AuthSessionRepository) *authSessionRepositoryAdapter {
	return &authSessionRepositoryAdapter{repo: repo}
}

func (a *authSessionRepositoryAdapter) CreateAuthSession(ctx context.Context, session application.AuthSession) (application.AuthSession, error) {
	stored, err := a.repo.CreateAuthSession(ctx, toPersistenceAuthSession(session))
	if err != nil {
		return application.AuthSession{}, mapAuthError(err)
	}
	return toApplicationAuthSession(stored), nil
}

func (a *authSessionRepositoryAdapter) GetAuthSession(ctx context.Context, token string) (application.AuthSession, error) {
	stored, err := a.repo.GetAuthSession(ctx, token)
	if err != nil {
		return application.AuthSession{}, mapAuthError(err)
	}
	return toApplicationAuthSession(stored), nil
}

func (a *authSessionRepositoryAdapter) RevokeAuthSession(ctx context.Context, token string, revokedAt time.Time) (application.AuthSession, error) {
	stored, err := a.repo.RevokeAuthSession(ctx, token, revokedAt)
	if err != nil {
		return application.AuthSession{}, mapAuthError(err)
	}
	return toApplicationAuthSession(stored), nil
}

func (a *authSessionRepositoryAdapter) DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredAuthSessions(ctx, reference)
}

// mapAuthError translates persistence sentinels for the auth service, which
// only understands application level errors.
func mapAuthError(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return application.ErrNotFound
	}
	return err
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:           session.ID,
		SubjectID:    session.SubjectID,
		InstructorID: session.InstructorID,
		Room:         session.Room,
		Days:         session.Days.Ordered(),
		StartMinutes: session.Window.Start,
		EndMinutes:   session.Window.End,
		DepartmentID: session.DepartmentID,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) (application.Session, error) {
	days, err := timetable.NewDaySet(model.Days...)
	if err != nil {
		return application.Session{}, fmt.Errorf("stored session %s has invalid days: %w", model.ID, err)
	}
	window, err := timetable.NewTimeInterval(model.StartMinutes, model.EndMinutes)
	if err != nil {
		return application.Session{}, fmt.Errorf("stored session %s has invalid window: %w", model.ID, err)
	}
	return application.Session{
		ID:           model.ID,
		SubjectID:    model.SubjectID,
		InstructorID: model.InstructorID,
		Room:         model.Room,
		Days:         days,
		Window:       window,
		DepartmentID: model.DepartmentID,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}, nil
}

func toPersistenceSubject(subject application.Subject) persistence.Subject {
	return persistence.Subject{
		ID:           subject.ID,
		Name:         subject.Name,
		DepartmentID: subject.DepartmentID,
		CreatedAt:    subject.CreatedAt,
		UpdatedAt:    subject.UpdatedAt,
	}
}

func toApplicationSubject(model persistence.Subject) application.Subject {
	return application.Subject{
		ID:           model.ID,
		Name:         model.Name,
		DepartmentID: model.DepartmentID,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceInstructor(instructor application.Instructor, passwordHash string) persistence.Instructor {
	return persistence.Instructor{
		ID:           instructor.ID,
		Email:        instructor.Email,
		DisplayName:  instructor.DisplayName,
		PasswordHash: passwordHash,
		IsAdmin:      instructor.IsAdmin,
		CreatedAt:    instructor.CreatedAt,
		UpdatedAt:    instructor.UpdatedAt,
	}
}

func toApplicationInstructor(model persistence.Instructor) application.Instructor {
	return application.Instructor{
		ID:          model.ID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		IsAdmin:     model.IsAdmin,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceAuthSession(session application.AuthSession) persistence.AuthSession {
	return persistence.AuthSession{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func toApplicationAuthSession(model persistence.AuthSession) application.AuthSession {
	return application.AuthSession{
		ID:        model.ID,
		UserID:    model.UserID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
