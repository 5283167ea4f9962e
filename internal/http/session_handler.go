package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/classroom-scheduler/internal/application"
	"github.com/example/classroom-scheduler/internal/recurrence"
)

type schedulingService interface {
	CreateSession(ctx context.Context, params application.CreateSessionParams) (application.Session, error)
	UpdateSession(ctx context.Context, params application.UpdateSessionParams) (application.Session, error)
	DeleteSession(ctx context.Context, principal application.Principal, sessionID string) error
	GetSession(ctx context.Context, id string) (application.Session, error)
	ListWeek(ctx context.Context, params application.ListWeekParams) (application.WeekView, error)
}

type SessionHandler struct {
	service   schedulingService
	responder responder
}

func NewSessionHandler(service schedulingService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{service: service, responder: newResponder(logger)}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	session, err := h.service.CreateSession(r.Context(), application.CreateSessionParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sessionResponse{Session: toSessionDTO(session)})
}

func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok || strings.TrimSpace(sessionID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	session, err := h.service.UpdateSession(r.Context(), application.UpdateSessionParams{
		Principal: principal,
		SessionID: sessionID,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok || strings.TrimSpace(sessionID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteSession(r.Context(), principal, sessionID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok || strings.TrimSpace(sessionID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	session, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
}

// ListWeek expands the timetable into concrete occurrences for the Monday
// named by the week query parameter.
func (h *SessionHandler) ListWeek(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	weekValue := strings.TrimSpace(query.Get("week"))
	if weekValue == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWeekParameter)
		return
	}
	weekStart, err := time.Parse("2006-01-02", weekValue)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWeekParameter)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	view, err := h.service.ListWeek(r.Context(), application.ListWeekParams{
		Principal:    principal,
		WeekStart:    weekStart,
		InstructorID: strings.TrimSpace(query.Get("instructor_id")),
		SubjectID:    strings.TrimSpace(query.Get("subject_id")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, weekViewResponse{
		WeekStart:   view.WeekStart.Format("2006-01-02"),
		Sessions:    toSessionDTOs(view.Sessions),
		Occurrences: toOccurrenceDTOs(view.Occurrences),
	})
}

type sessionRequest struct {
	SubjectID    string   `json:"subject_id"`
	InstructorID string   `json:"instructor_id"`
	Room         string   `json:"room"`
	Days         []string `json:"days"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
}

func (r sessionRequest) toInput() application.SessionInput {
	return application.SessionInput{
		SubjectID:    strings.TrimSpace(r.SubjectID),
		InstructorID: strings.TrimSpace(r.InstructorID),
		Room:         strings.TrimSpace(r.Room),
		Days:         append([]string(nil), r.Days...),
		StartTime:    strings.TrimSpace(r.StartTime),
		EndTime:      strings.TrimSpace(r.EndTime),
	}
}

type sessionResponse struct {
	Session sessionDTO `json:"session"`
}

type weekViewResponse struct {
	WeekStart   string          `json:"week_start"`
	Sessions    []sessionDTO    `json:"sessions"`
	Occurrences []occurrenceDTO `json:"occurrences"`
}

type sessionDTO struct {
	ID           string   `json:"id"`
	SubjectID    string   `json:"subject_id"`
	InstructorID string   `json:"instructor_id"`
	Room         string   `json:"room"`
	Days         []string `json:"days"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	DepartmentID string   `json:"department_id"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

type occurrenceDTO struct {
	SessionID string `json:"session_id"`
	Day       string `json:"day"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

func toSessionDTO(session application.Session) sessionDTO {
	return sessionDTO{
		ID:           session.ID,
		SubjectID:    session.SubjectID,
		InstructorID: session.InstructorID,
		Room:         session.Room,
		Days:         session.Days.Names(),
		StartTime:    session.Window.StartClock(),
		EndTime:      session.Window.EndClock(),
		DepartmentID: session.DepartmentID,
		CreatedAt:    formatTimestamp(session.CreatedAt),
		UpdatedAt:    formatTimestamp(session.UpdatedAt),
	}
}

func toSessionDTOs(sessions []application.Session) []sessionDTO {
	out := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toSessionDTO(session))
	}
	return out
}

func toOccurrenceDTOs(occurrences []recurrence.Occurrence) []occurrenceDTO {
	out := make([]occurrenceDTO, 0, len(occurrences))
	for _, occ := range occurrences {
		out = append(out, occurrenceDTO{
			SessionID: occ.SessionID,
			Day:       strings.ToLower(occ.Day.String()),
			Start:     occ.Start.Format(time.RFC3339),
			End:       occ.End.Format(time.RFC3339),
		})
	}
	return out
}
