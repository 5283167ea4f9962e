package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/classroom-scheduler/internal/application"
	"github.com/example/classroom-scheduler/internal/persistence"
	"github.com/example/classroom-scheduler/internal/timetable"
)

var (
	subjectCounter     uint64
	instructorCounter  uint64
	sessionCounter     uint64
	authSessionCounter uint64
)

// referenceTime is Monday 2024-01-01 00:00 UTC, which is also a valid week
// start for occurrence materialization.
var referenceTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// --------------------------- Subject fixtures ----------------------------

// SubjectFixture represents a deterministic subject catalog record.
type SubjectFixture struct {
	ID           string
	Name         string
	DepartmentID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SubjectOption configures the generated subject fixture.
type SubjectOption func(*SubjectFixture)

// NewSubjectFixture returns a deterministic subject fixture with optional overrides.
func NewSubjectFixture(opts ...SubjectOption) SubjectFixture {
	idx := atomic.AddUint64(&subjectCounter, 1)
	id := fmt.Sprintf("subject-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SubjectFixture{
		ID:           id,
		Name:         fmt.Sprintf("Subject %03d", idx),
		DepartmentID: "dept-science",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSubjectID overrides the generated subject ID.
func WithSubjectID(id string) SubjectOption {
	return func(f *SubjectFixture) {
		f.ID = id
	}
}

// WithSubjectName overrides the generated subject name.
func WithSubjectName(name string) SubjectOption {
	return func(f *SubjectFixture) {
		f.Name = name
	}
}

// WithSubjectDepartment sets the owning department ID.
func WithSubjectDepartment(departmentID string) SubjectOption {
	return func(f *SubjectFixture) {
		f.DepartmentID = departmentID
	}
}

// WithSubjectTimestamps sets both created and updated timestamps.
func WithSubjectTimestamps(created, updated time.Time) SubjectOption {
	return func(f *SubjectFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Subject value.
func (f SubjectFixture) Application() application.Subject {
	return application.Subject{
		ID:           f.ID,
		Name:         f.Name,
		DepartmentID: f.DepartmentID,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Subject value.
func (f SubjectFixture) Persistence() persistence.Subject {
	return persistence.Subject{
		ID:           f.ID,
		Name:         f.Name,
		DepartmentID: f.DepartmentID,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.SubjectInput.
func (f SubjectFixture) Input() application.SubjectInput {
	return application.SubjectInput{
		Name:         f.Name,
		DepartmentID: f.DepartmentID,
	}
}

// -------------------------- Instructor fixtures --------------------------

// InstructorFixture represents a deterministic instructor account record.
type InstructorFixture struct {
	ID           string
	Email        string
	DisplayName  string
	Password     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InstructorOption configures the generated instructor fixture.
type InstructorOption func(*InstructorFixture)

// NewInstructorFixture returns a deterministic instructor fixture with optional overrides.
func NewInstructorFixture(opts ...InstructorOption) InstructorFixture {
	idx := atomic.AddUint64(&instructorCounter, 1)
	id := fmt.Sprintf("instructor-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := InstructorFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("Instructor %03d", idx),
		Password:     fmt.Sprintf("password-%03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		IsAdmin:      false,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithInstructorID overrides the generated instructor ID.
func WithInstructorID(id string) InstructorOption {
	return func(f *InstructorFixture) {
		f.ID = id
	}
}

// WithInstructorEmail overrides the generated email address.
func WithInstructorEmail(email string) InstructorOption {
	return func(f *InstructorFixture) {
		f.Email = email
	}
}

// WithInstructorDisplayName overrides the generated display name.
func WithInstructorDisplayName(name string) InstructorOption {
	return func(f *InstructorFixture) {
		f.DisplayName = name
	}
}

// WithInstructorPassword sets the plaintext password used by Input().
func WithInstructorPassword(password string) InstructorOption {
	return func(f *InstructorFixture) {
		f.Password = password
	}
}

// WithInstructorPasswordHash overrides the generated password hash.
func WithInstructorPasswordHash(hash string) InstructorOption {
	return func(f *InstructorFixture) {
		f.PasswordHash = hash
	}
}

// WithInstructorAdmin sets the admin flag on the generated fixture.
func WithInstructorAdmin(isAdmin bool) InstructorOption {
	return func(f *InstructorFixture) {
		f.IsAdmin = isAdmin
	}
}

// WithInstructorTimestamps sets both created and updated timestamps.
func WithInstructorTimestamps(created, updated time.Time) InstructorOption {
	return func(f *InstructorFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Instructor value.
func (f InstructorFixture) Application() application.Instructor {
	return application.Instructor{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Credentials returns the fixture as application.InstructorCredentials.
func (f InstructorFixture) Credentials() application.InstructorCredentials {
	return application.InstructorCredentials{
		Instructor:   f.Application(),
		PasswordHash: f.PasswordHash,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f InstructorFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, IsAdmin: f.IsAdmin}
}

// Persistence returns the fixture as a persistence.Instructor value.
func (f InstructorFixture) Persistence() persistence.Instructor {
	return persistence.Instructor{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		IsAdmin:      f.IsAdmin,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.InstructorInput.
func (f InstructorFixture) Input() application.InstructorInput {
	return application.InstructorInput{
		Email:       f.Email,
		DisplayName: f.DisplayName,
		Password:    f.Password,
		IsAdmin:     f.IsAdmin,
	}
}

// ---------------------------- Session fixtures ---------------------------

// SessionFixture represents a deterministic recurring class session record.
type SessionFixture struct {
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

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional
// overrides. The default recurs Tuesday and Thursday from 13:00 to 14:30.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	id := fmt.Sprintf("session-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SessionFixture{
		ID:           id,
		SubjectID:    fmt.Sprintf("subject-%03d", idx),
		InstructorID: fmt.Sprintf("instructor-%03d", idx),
		Room:         fmt.Sprintf("room-%03d", idx),
		Days:         []time.Weekday{time.Tuesday, time.Thursday},
		StartMinutes: 13 * 60,
		EndMinutes:   14*60 + 30,
		DepartmentID: "dept-science",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionSubject sets the subject ID.
func WithSessionSubject(id string) SessionOption {
	return func(f *SessionFixture) {
		f.SubjectID = id
	}
}

// WithSessionInstructor sets the instructor ID.
func WithSessionInstructor(id string) SessionOption {
	return func(f *SessionFixture) {
		f.InstructorID = id
	}
}

// WithSessionRoom sets the room identifier.
func WithSessionRoom(room string) SessionOption {
	return func(f *SessionFixture) {
		f.Room = room
	}
}

// WithSessionDays sets the recurrence weekdays.
func WithSessionDays(days ...time.Weekday) SessionOption {
	return func(f *SessionFixture) {
		f.Days = append([]time.Weekday(nil), days...)
	}
}

// WithSessionWindow sets the daily time window in minutes since midnight.
func WithSessionWindow(startMinutes, endMinutes int) SessionOption {
	return func(f *SessionFixture) {
		f.StartMinutes = startMinutes
		f.EndMinutes = endMinutes
	}
}

// WithSessionDepartment sets the owning department ID.
func WithSessionDepartment(departmentID string) SessionOption {
	return func(f *SessionFixture) {
		f.DepartmentID = departmentID
	}
}

// WithSessionTimestamps sets both created and updated timestamps.
func WithSessionTimestamps(created, updated time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Session value. It panics
// when the fixture carries invalid days or an invalid window; fixtures are
// test-only data so a panic surfaces the mistake immediately.
func (f SessionFixture) Application() application.Session {
	days, err := timetable.NewDaySet(f.Days...)
	if err != nil {
		panic(fmt.Sprintf("testfixtures: invalid session days: %v", err))
	}
	window, err := timetable.NewTimeInterval(f.StartMinutes, f.EndMinutes)
	if err != nil {
		panic(fmt.Sprintf("testfixtures: invalid session window: %v", err))
	}
	return application.Session{
		ID:           f.ID,
		SubjectID:    f.SubjectID,
		InstructorID: f.InstructorID,
		Room:         f.Room,
		Days:         days,
		Window:       window,
		DepartmentID: f.DepartmentID,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:           f.ID,
		SubjectID:    f.SubjectID,
		InstructorID: f.InstructorID,
		Room:         f.Room,
		Days:         append([]time.Weekday(nil), f.Days...),
		StartMinutes: f.StartMinutes,
		EndMinutes:   f.EndMinutes,
		DepartmentID: f.DepartmentID,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.SessionInput.
func (f SessionFixture) Input() application.SessionInput {
	app := f.Application()
	return application.SessionInput{
		SubjectID:    f.SubjectID,
		InstructorID: f.InstructorID,
		Room:         f.Room,
		Days:         app.Days.Names(),
		StartTime:    app.Window.StartClock(),
		EndTime:      app.Window.EndClock(),
	}
}

// -------------------------- Auth session fixtures ------------------------

// AuthSessionFixture represents a deterministic authentication session record.
type AuthSessionFixture struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthSessionOption configures the generated auth session fixture.
type AuthSessionOption func(*AuthSessionFixture)

// NewAuthSessionFixture returns a deterministic auth session fixture with optional overrides.
func NewAuthSessionFixture(opts ...AuthSessionOption) AuthSessionFixture {
	idx := atomic.AddUint64(&authSessionCounter, 1)
	id := fmt.Sprintf("auth-%03d", idx)
	created := referenceTime
	fixture := AuthSessionFixture{
		ID:        id,
		UserID:    fmt.Sprintf("instructor-%03d", idx),
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: created.Add(24 * time.Hour),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAuthSessionID overrides the generated auth session ID.
func WithAuthSessionID(id string) AuthSessionOption {
	return func(f *AuthSessionFixture) {
		f.ID = id
	}
}

// WithAuthSessionUser sets the owning instructor ID.
func WithAuthSessionUser(id string) AuthSessionOption {
	return func(f *AuthSessionFixture) {
		f.UserID = id
	}
}

// WithAuthSessionToken overrides the token value.
func WithAuthSessionToken(token string) AuthSessionOption {
	return func(f *AuthSessionFixture) {
		f.Token = token
	}
}

// WithAuthSessionExpiresAt sets the expiration timestamp.
func WithAuthSessionExpiresAt(t time.Time) AuthSessionOption {
	return func(f *AuthSessionFixture) {
		f.ExpiresAt = t
	}
}

// WithAuthSessionRevokedAt sets the optional revoked timestamp.
func WithAuthSessionRevokedAt(t time.Time) AuthSessionOption {
	return func(f *AuthSessionFixture) {
		revoked := t
		f.RevokedAt = &revoked
	}
}

// Application returns the fixture as an application.AuthSession value.
func (f AuthSessionFixture) Application() application.AuthSession {
	var revoked *time.Time
	if f.RevokedAt != nil {
		t := *f.RevokedAt
		revoked = &t
	}
	return application.AuthSession{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: revoked,
	}
}

// Persistence returns the fixture as a persistence.AuthSession value.
func (f AuthSessionFixture) Persistence() persistence.AuthSession {
	var revoked *time.Time
	if f.RevokedAt != nil {
		t := *f.RevokedAt
		revoked = &t
	}
	return persistence.AuthSession{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: revoked,
	}
}
