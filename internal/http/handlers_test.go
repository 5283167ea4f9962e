package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/classroom-scheduler/internal/application"
	"github.com/example/classroom-scheduler/internal/recurrence"
	"github.com/example/classroom-scheduler/internal/timetable"
)

type schedulingServiceStub struct {
	created   application.Session
	createErr error

	updated   application.Session
	updateErr error

	deleteErr error

	session application.Session
	getErr  error

	view    application.WeekView
	listErr error

	lastListParams application.ListWeekParams
}

func (s *schedulingServiceStub) CreateSession(ctx context.Context, params application.CreateSessionParams) (application.Session, error) {
	if s.createErr != nil {
		return application.Session{}, s.createErr
	}
	return s.created, nil
}

func (s *schedulingServiceStub) UpdateSession(ctx context.Context, params application.UpdateSessionParams) (application.Session, error) {
	if s.updateErr != nil {
		return application.Session{}, s.updateErr
	}
	return s.updated, nil
}

func (s *schedulingServiceStub) DeleteSession(ctx context.Context, principal application.Principal, sessionID string) error {
	return s.deleteErr
}

func (s *schedulingServiceStub) GetSession(ctx context.Context, id string) (application.Session, error) {
	if s.getErr != nil {
		return application.Session{}, s.getErr
	}
	return s.session, nil
}

func (s *schedulingServiceStub) ListWeek(ctx context.Context, params application.ListWeekParams) (application.WeekView, error) {
	s.lastListParams = params
	if s.listErr != nil {
		return application.WeekView{}, s.listErr
	}
	return s.view, nil
}

type authServiceStub struct {
	result  application.AuthenticateResult
	authErr error

	loggedOut string
	logoutErr error
}

func (s *authServiceStub) Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	if s.authErr != nil {
		return application.AuthenticateResult{}, s.authErr
	}
	return s.result, nil
}

func (s *authServiceStub) Logout(ctx context.Context, token string) error {
	if s.logoutErr != nil {
		return s.logoutErr
	}
	s.loggedOut = token
	return nil
}

func testSession(t *testing.T) application.Session {
	t.Helper()
	days, err := timetable.ParseDaySet([]string{"tuesday", "thursday"})
	if err != nil {
		t.Fatalf("parse days: %v", err)
	}
	window, err := timetable.ParseTimeInterval("13:00", "14:30")
	if err != nil {
		t.Fatalf("parse window: %v", err)
	}
	return application.Session{
		ID:           "session-1",
		SubjectID:    "subject-1",
		InstructorID: "instructor-1",
		Room:         "101",
		Days:         days,
		Window:       window,
		DepartmentID: "dept-1",
		CreatedAt:    time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestAuthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()
		svc := &authServiceStub{result: application.AuthenticateResult{
			Instructor: application.Instructor{ID: "instructor-1"},
			Session: application.AuthSession{
				Token:     "token-value",
				ExpiresAt: time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC),
			},
		}}
		handler := NewAuthHandler(svc, nil)

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"Teacher@Example.com","password":"secret"}`))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if rec.Header().Get("X-Session-Token") != "token-value" {
			t.Fatalf("expected token header, got %q", rec.Header().Get("X-Session-Token"))
		}
		found := false
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == "session_token" && cookie.Value == "token-value" {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected session_token cookie")
		}
		var body loginResponse
		decodeBody(t, rec, &body)
		if body.Token != "token-value" {
			t.Fatalf("unexpected body token %q", body.Token)
		}
	})

	t.Run("login maps invalid credentials to 401", func(t *testing.T) {
		t.Parallel()
		handler := NewAuthHandler(&authServiceStub{authErr: application.ErrInvalidCredentials}, nil)

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@example.com","password":"bad"}`))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		var body errorResponse
		decodeBody(t, rec, &body)
		if body.ErrorCode != "AUTH_INVALID_CREDENTIALS" {
			t.Fatalf("unexpected error code %q", body.ErrorCode)
		}
	})

	t.Run("login maps a locked account to 429", func(t *testing.T) {
		t.Parallel()
		handler := NewAuthHandler(&authServiceStub{authErr: application.ErrAccountLocked}, nil)

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@example.com","password":"bad"}`))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)

		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		var body errorResponse
		decodeBody(t, rec, &body)
		if body.ErrorCode != "AUTH_ACCOUNT_LOCKED" {
			t.Fatalf("unexpected error code %q", body.ErrorCode)
		}
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		t.Parallel()
		svc := &authServiceStub{}
		handler := NewAuthHandler(svc, nil)

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.Header.Set("Authorization", "Bearer token-value")
		rec := httptest.NewRecorder()
		handler.Logout(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if svc.loggedOut != "token-value" {
			t.Fatalf("expected token revocation, got %q", svc.loggedOut)
		}
	})
}

func TestSessionHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create returns the persisted session", func(t *testing.T) {
		t.Parallel()
		svc := &schedulingServiceStub{created: testSession(t)}
		handler := NewSessionHandler(svc, nil)

		body := `{"subject_id":"subject-1","room":"101","days":["tuesday","thursday"],"start_time":"13:00","end_time":"14:30"}`
		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body))
		req = req.WithContext(ContextWithPrincipal(req.Context(), application.Principal{UserID: "instructor-1"}))
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp sessionResponse
		decodeBody(t, rec, &resp)
		if resp.Session.ID != "session-1" {
			t.Fatalf("unexpected session id %q", resp.Session.ID)
		}
		if resp.Session.StartTime != "13:00" || resp.Session.EndTime != "14:30" {
			t.Fatalf("unexpected window %s-%s", resp.Session.StartTime, resp.Session.EndTime)
		}
		if len(resp.Session.Days) != 2 || resp.Session.Days[0] != "tuesday" {
			t.Fatalf("unexpected days %v", resp.Session.Days)
		}
	})

	t.Run("serialize conflict records in 409 responses", func(t *testing.T) {
		t.Parallel()
		svc := &schedulingServiceStub{createErr: &application.ConflictError{Conflicts: []timetable.Conflict{{
			WithSessionID: "session-9",
			Resource:      timetable.ResourceBoth,
			Days:          []time.Weekday{time.Monday, time.Wednesday},
		}}}}
		handler := NewSessionHandler(svc, nil)

		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		var body errorResponse
		decodeBody(t, rec, &body)
		if body.ErrorCode != "SCHEDULE_CONFLICT" {
			t.Fatalf("unexpected error code %q", body.ErrorCode)
		}
		if len(body.Conflicts) != 1 {
			t.Fatalf("expected one conflict, got %v", body.Conflicts)
		}
		conflict := body.Conflicts[0]
		if conflict.WithSessionID != "session-9" || conflict.Resource != "both" {
			t.Fatalf("unexpected conflict %+v", conflict)
		}
		if len(conflict.Days) != 2 || conflict.Days[0] != "monday" || conflict.Days[1] != "wednesday" {
			t.Fatalf("unexpected conflict days %v", conflict.Days)
		}
	})

	t.Run("return localized validation errors", func(t *testing.T) {
		t.Parallel()
		vErr := &application.ValidationError{FieldErrors: map[string]string{
			"days": "at least one weekday is required",
		}}
		svc := &schedulingServiceStub{createErr: vErr}
		handler := NewSessionHandler(svc, nil)

		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		var body errorResponse
		decodeBody(t, rec, &body)
		if body.Errors["days"] != "少なくとも 1 つの曜日を指定してください。" {
			t.Fatalf("unexpected localized message %q", body.Errors["days"])
		}
	})

	t.Run("map service sentinel errors to HTTP status codes", func(t *testing.T) {
		t.Parallel()
		cases := []struct {
			name   string
			err    error
			status int
		}{
			{name: "unauthorized", err: application.ErrUnauthorized, status: http.StatusForbidden},
			{name: "not found", err: application.ErrNotFound, status: http.StatusNotFound},
			{name: "already exists", err: application.ErrAlreadyExists, status: http.StatusConflict},
		}
		for _, tc := range cases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				svc := &schedulingServiceStub{updateErr: tc.err}
				handler := NewSessionHandler(svc, nil)

				req := httptest.NewRequest(http.MethodPut, "/sessions/session-1", strings.NewReader(`{}`))
				req = req.WithContext(ContextWithSessionID(req.Context(), "session-1"))
				rec := httptest.NewRecorder()
				handler.Update(rec, req)

				if rec.Code != tc.status {
					t.Fatalf("expected %d, got %d", tc.status, rec.Code)
				}
			})
		}
	})

	t.Run("expand occurrences in weekly list responses", func(t *testing.T) {
		t.Parallel()
		session := testSession(t)
		svc := &schedulingServiceStub{view: application.WeekView{
			WeekStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			Sessions:  []application.Session{session},
			Occurrences: []recurrence.Occurrence{
				{
					SessionID: "session-1",
					Day:       time.Tuesday,
					Start:     time.Date(2024, time.January, 2, 13, 0, 0, 0, time.UTC),
					End:       time.Date(2024, time.January, 2, 14, 30, 0, 0, time.UTC),
				},
				{
					SessionID: "session-1",
					Day:       time.Thursday,
					Start:     time.Date(2024, time.January, 4, 13, 0, 0, 0, time.UTC),
					End:       time.Date(2024, time.January, 4, 14, 30, 0, 0, time.UTC),
				},
			},
		}}
		handler := NewSessionHandler(svc, nil)

		req := httptest.NewRequest(http.MethodGet, "/sessions?week=2024-01-01&instructor_id=instructor-1", nil)
		rec := httptest.NewRecorder()
		handler.ListWeek(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.lastListParams.InstructorID != "instructor-1" {
			t.Fatalf("expected instructor filter, got %q", svc.lastListParams.InstructorID)
		}
		if !svc.lastListParams.WeekStart.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected week start %v", svc.lastListParams.WeekStart)
		}
		var body weekViewResponse
		decodeBody(t, rec, &body)
		if body.WeekStart != "2024-01-01" {
			t.Fatalf("unexpected week start %q", body.WeekStart)
		}
		if len(body.Occurrences) != 2 {
			t.Fatalf("expected two occurrences, got %d", len(body.Occurrences))
		}
		if body.Occurrences[0].Day != "tuesday" || body.Occurrences[0].Start != "2024-01-02T13:00:00Z" {
			t.Fatalf("unexpected first occurrence %+v", body.Occurrences[0])
		}
	})

	t.Run("reject missing or malformed week parameters", func(t *testing.T) {
		t.Parallel()
		handler := NewSessionHandler(&schedulingServiceStub{}, nil)

		for _, target := range []string{"/sessions", "/sessions?week=January"} {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			rec := httptest.NewRecorder()
			handler.ListWeek(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 for %q, got %d", target, rec.Code)
			}
		}
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()

	t.Run("routes method mismatches to 405", func(t *testing.T) {
		t.Parallel()
		handler := NewRouter(RouterConfig{
			Sessions: NewSessionHandler(&schedulingServiceStub{}, nil),
		})

		req := httptest.NewRequest(http.MethodPatch, "/sessions", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
			t.Fatalf("expected Allow header, got %q", allow)
		}
	})

	t.Run("resolves path identifiers into context", func(t *testing.T) {
		t.Parallel()
		svc := &schedulingServiceStub{session: testSession(t)}
		handler := NewRouter(RouterConfig{
			Sessions: NewSessionHandler(svc, nil),
		})

		req := httptest.NewRequest(http.MethodGet, "/sessions/session-1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp sessionResponse
		decodeBody(t, rec, &resp)
		if resp.Session.ID != "session-1" {
			t.Fatalf("unexpected session %q", resp.Session.ID)
		}
	})
}
