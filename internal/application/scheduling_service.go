package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/classroom-scheduler/internal/persistence"
	"github.com/example/classroom-scheduler/internal/recurrence"
	"github.com/example/classroom-scheduler/internal/timetable"
)

// SessionRepository captures the persistence interactions needed by the service.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	DeleteSession(ctx context.Context, id string) error
	ListSessions(ctx context.Context, filter SessionRepositoryFilter) ([]Session, error)
}

// SessionRepositoryFilter narrows queries issued to the session repository.
type SessionRepositoryFilter struct {
	InstructorID string
	SubjectID    string
	DepartmentID string
}

// SubjectCatalog exposes subject lookup operations.
type SubjectCatalog interface {
	GetSubject(ctx context.Context, id string) (Subject, error)
}

// InstructorDirectory exposes instructor lookup operations.
type InstructorDirectory interface {
	InstructorExists(ctx context.Context, id string) (bool, error)
}

// SchedulingService orchestrates validation, conflict detection, and
// persistence for recurring class sessions.
type SchedulingService struct {
	sessions    SessionRepository
	subjects    SubjectCatalog
	instructors InstructorDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
	weekCache   *weekViewCache
}

// NewSchedulingService wires dependencies for session operations.
func NewSchedulingService(sessions SessionRepository, subjects SubjectCatalog, instructors InstructorDirectory, idGenerator func() string, now func() time.Time) *SchedulingService {
	return NewSchedulingServiceWithLogger(sessions, subjects, instructors, idGenerator, now, nil)
}

// NewSchedulingServiceWithLogger constructs a SchedulingService with a specified logger.
func NewSchedulingServiceWithLogger(sessions SessionRepository, subjects SubjectCatalog, instructors InstructorDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SchedulingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SchedulingService{
		sessions:    sessions,
		subjects:    subjects,
		instructors: instructors,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
		weekCache:   newWeekViewCache(0, 0, now),
	}
}

// ConfigureWeekCache replaces the week view cache with one using the given
// TTL and entry limit. Zero values fall back to the defaults. Call before
// serving requests; the swap is not synchronized with concurrent readers.
func (s *SchedulingService) ConfigureWeekCache(ttl time.Duration, maxEntries int) {
	if s == nil {
		return
	}
	s.weekCache = newWeekViewCache(ttl, maxEntries, s.now)
}

func (s *SchedulingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SchedulingService", operation, attrs...)
}

// CreateSession validates the request, rejects conflicting sessions, and
// delegates to persistence.
func (s *SchedulingService) CreateSession(ctx context.Context, params CreateSessionParams) (result Session, err error) {
	if s == nil {
		err = fmt.Errorf("SchedulingService is nil")
		return
	}

	input := params.Input
	principal := params.Principal

	if input.InstructorID == "" {
		input.InstructorID = principal.UserID
	}

	logger := s.loggerWith(ctx, "CreateSession",
		"subject_id", input.SubjectID,
		"instructor_id", input.InstructorID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", result.ID).InfoContext(ctx, "session created")
	}()

	if input.InstructorID != principal.UserID && !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	days, window, vErr := parseSessionInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var subject Subject
	subject, err = s.resolveSubject(ctx, input.SubjectID)
	if err != nil {
		return
	}

	if err = s.ensureInstructorExists(ctx, input.InstructorID); err != nil {
		return
	}

	createdAt := s.now()
	session := Session{
		ID:           s.idGenerator(),
		SubjectID:    input.SubjectID,
		InstructorID: input.InstructorID,
		Room:         strings.TrimSpace(input.Room),
		Days:         days,
		Window:       window,
		DepartmentID: subject.DepartmentID,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}

	if s.sessions == nil {
		result = session
		return
	}

	if err = s.rejectConflicts(ctx, session, ""); err != nil {
		return
	}

	persisted, perr := s.sessions.CreateSession(ctx, session)
	if perr != nil {
		err = mapSessionRepoError(perr)
		return
	}

	s.weekCache.Invalidate()
	result = persisted
	return
}

// UpdateSession applies validation and authorization before updating
// persistence state. The persisted session is excluded from conflict
// detection so it never collides with itself.
func (s *SchedulingService) UpdateSession(ctx context.Context, params UpdateSessionParams) (result Session, err error) {
	if s == nil {
		err = fmt.Errorf("SchedulingService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateSession", "session_id", params.SessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session updated")
	}()

	existing, gerr := s.sessions.GetSession(ctx, params.SessionID)
	if gerr != nil {
		err = mapSessionRepoError(gerr)
		return
	}

	principal := params.Principal
	input := params.Input

	if existing.InstructorID != principal.UserID && !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if input.InstructorID == "" {
		input.InstructorID = existing.InstructorID
	}
	if input.InstructorID != principal.UserID && !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	days, window, vErr := parseSessionInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var subject Subject
	subject, err = s.resolveSubject(ctx, input.SubjectID)
	if err != nil {
		return
	}
	if subject.DepartmentID != existing.DepartmentID {
		inner := &ValidationError{}
		inner.add("subject_id", "subject belongs to a different department")
		err = inner
		return
	}

	if err = s.ensureInstructorExists(ctx, input.InstructorID); err != nil {
		return
	}

	updated := existing
	updated.SubjectID = input.SubjectID
	updated.InstructorID = input.InstructorID
	updated.Room = strings.TrimSpace(input.Room)
	updated.Days = days
	updated.Window = window
	updated.UpdatedAt = s.now()

	if err = s.rejectConflicts(ctx, updated, existing.ID); err != nil {
		return
	}

	persisted, perr := s.sessions.UpdateSession(ctx, updated)
	if perr != nil {
		err = mapSessionRepoError(perr)
		return
	}

	s.weekCache.Invalidate()
	result = persisted
	return
}

// DeleteSession ensures authorization before delegating to persistence.
func (s *SchedulingService) DeleteSession(ctx context.Context, principal Principal, sessionID string) (err error) {
	if s == nil {
		return fmt.Errorf("SchedulingService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteSession", "session_id", sessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session deleted")
	}()

	existing, gerr := s.sessions.GetSession(ctx, sessionID)
	if gerr != nil {
		err = mapSessionRepoError(gerr)
		return
	}

	if existing.InstructorID != principal.UserID && !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if derr := s.sessions.DeleteSession(ctx, sessionID); derr != nil {
		err = mapSessionRepoError(derr)
		return
	}

	s.weekCache.Invalidate()
	return nil
}

// GetSession fetches a single session by identifier.
func (s *SchedulingService) GetSession(ctx context.Context, id string) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("SchedulingService is nil")
	}
	if s.sessions == nil {
		return Session{}, fmt.Errorf("session repository not configured")
	}
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return Session{}, mapSessionRepoError(err)
	}
	return session, nil
}

// ListWeek enumerates the sessions matching the filter and expands each one
// into concrete occurrences for the requested Monday anchored week.
func (s *SchedulingService) ListWeek(ctx context.Context, params ListWeekParams) (WeekView, error) {
	if s == nil {
		return WeekView{}, fmt.Errorf("SchedulingService is nil")
	}
	if s.sessions == nil {
		return WeekView{}, fmt.Errorf("session repository not configured")
	}

	if params.WeekStart.IsZero() || !params.WeekStart.Equal(recurrence.WeekStartFor(params.WeekStart)) {
		vErr := &ValidationError{}
		vErr.add("week", "week must start on Monday at midnight")
		return WeekView{}, vErr
	}

	key := buildWeekViewCacheKey(params)
	if view, ok := s.weekCache.Get(key); ok {
		return view, nil
	}

	filter := SessionRepositoryFilter{
		InstructorID: params.InstructorID,
		SubjectID:    params.SubjectID,
	}

	sessions, err := s.sessions.ListSessions(ctx, filter)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			return WeekView{WeekStart: params.WeekStart}, nil
		}
		return WeekView{}, err
	}

	ordered := make([]Session, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	defs := make([]recurrence.Definition, 0, len(ordered))
	for _, session := range ordered {
		defs = append(defs, recurrence.Definition{
			SessionID: session.ID,
			Days:      session.Days,
			Window:    session.Window,
		})
	}

	occurrences, err := recurrence.MaterializeAll(defs, params.WeekStart)
	if err != nil {
		return WeekView{}, err
	}

	view := WeekView{
		WeekStart:   params.WeekStart,
		Sessions:    ordered,
		Occurrences: occurrences,
	}
	s.weekCache.Store(key, view)
	return view, nil
}

func (s *SchedulingService) resolveSubject(ctx context.Context, subjectID string) (Subject, error) {
	if s.subjects == nil {
		return Subject{}, nil
	}
	subject, err := s.subjects.GetSubject(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			vErr := &ValidationError{}
			vErr.add("subject_id", "subject does not exist")
			return Subject{}, vErr
		}
		return Subject{}, err
	}
	return subject, nil
}

func (s *SchedulingService) ensureInstructorExists(ctx context.Context, instructorID string) error {
	if s.instructors == nil {
		return nil
	}
	exists, err := s.instructors.InstructorExists(ctx, instructorID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("instructor_id", "instructor does not exist")
	return vErr
}

// rejectConflicts snapshots the persisted sessions and fails with a
// ConflictError when the candidate collides with any of them. The check and
// the subsequent write are not atomic; concurrent writers may interleave.
func (s *SchedulingService) rejectConflicts(ctx context.Context, candidate Session, excludeID string) error {
	sessions, err := s.sessions.ListSessions(ctx, SessionRepositoryFilter{})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			return nil
		}
		return err
	}

	existing := make([]timetable.Entry, 0, len(sessions))
	for _, session := range sessions {
		existing = append(existing, toTimetableEntry(session))
	}

	conflicts := timetable.DetectConflicts(existing, toTimetableEntry(candidate), excludeID)
	if len(conflicts) == 0 {
		return nil
	}
	return &ConflictError{Conflicts: conflicts}
}

func toTimetableEntry(session Session) timetable.Entry {
	return timetable.Entry{
		ID:           session.ID,
		InstructorID: session.InstructorID,
		Room:         session.Room,
		Days:         session.Days,
		Window:       session.Window,
	}
}

// parseSessionInput normalizes and validates raw input, producing the typed
// day set and time window on success.
func parseSessionInput(input SessionInput) (timetable.DaySet, timetable.TimeInterval, *ValidationError) {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.SubjectID) == "" {
		vErr.add("subject_id", "subject is required")
	}
	if strings.TrimSpace(input.InstructorID) == "" {
		vErr.add("instructor_id", "instructor is required")
	}
	if strings.TrimSpace(input.Room) == "" {
		vErr.add("room", "room is required")
	}

	var days timetable.DaySet
	if len(input.Days) == 0 {
		vErr.add("days", "at least one weekday is required")
	} else {
		parsed, err := timetable.ParseDaySet(input.Days)
		if err != nil {
			vErr.add("days", "weekdays must be lowercase English day names")
		} else {
			days = parsed
		}
	}

	var window timetable.TimeInterval
	if input.StartTime == "" || input.EndTime == "" {
		vErr.add("time", "start and end times are required")
	} else {
		parsed, err := timetable.ParseTimeInterval(input.StartTime, input.EndTime)
		if err != nil {
			vErr.add("time", "times must be HH:MM with start before end")
		} else {
			window = parsed
		}
	}

	return days, window, vErr
}

func mapSessionRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "times must be HH:MM with start before end")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("subject_id", "related records are missing")
		return vErr
	}
	return err
}
