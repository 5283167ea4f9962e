package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/classroom-scheduler/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// SchedulingServiceDeps captures dependencies for constructing a scheduling service.
type SchedulingServiceDeps struct {
	Sessions    application.SessionRepository
	Subjects    application.SubjectCatalog
	Instructors application.InstructorDirectory
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewSchedulingService builds a scheduling service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewSchedulingService(deps SchedulingServiceDeps) *application.SchedulingService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewSchedulingServiceWithLogger(
		deps.Sessions,
		deps.Subjects,
		deps.Instructors,
		idGen,
		now,
		deps.Logger,
	)
}

// SubjectServiceDeps captures dependencies for constructing a subject service.
type SubjectServiceDeps struct {
	Subjects    application.SubjectRepository
	IDGenerator func() string
	Now         func() time.Time
}

// NewSubjectService builds a subject service using the supplied dependencies.
func (f *ServiceFactory) NewSubjectService(deps SubjectServiceDeps) *application.SubjectService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewSubjectService(
		deps.Subjects,
		idGen,
		now,
	)
}

// InstructorServiceDeps captures dependencies for constructing an instructor service.
type InstructorServiceDeps struct {
	Instructors  application.InstructorRepository
	HashPassword application.PasswordHasher
	IDGenerator  func() string
	Now          func() time.Time
}

// NewInstructorService builds an instructor service using the supplied dependencies.
func (f *ServiceFactory) NewInstructorService(deps InstructorServiceDeps) *application.InstructorService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewInstructorService(
		deps.Instructors,
		deps.HashPassword,
		idGen,
		now,
	)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.CredentialStore
	Sessions       application.AuthSessionRepository
	PasswordVerify application.PasswordVerifier
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	token := deps.TokenGenerator
	if token == nil {
		token = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.Sessions,
		deps.PasswordVerify,
		token,
		now,
		deps.SessionTTL,
		deps.Logger,
	)
}
