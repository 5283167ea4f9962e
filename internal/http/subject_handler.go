package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/classroom-scheduler/internal/application"
)

type subjectService interface {
	CreateSubject(ctx context.Context, params application.CreateSubjectParams) (application.Subject, error)
	UpdateSubject(ctx context.Context, params application.UpdateSubjectParams) (application.Subject, error)
	DeleteSubject(ctx context.Context, principal application.Principal, subjectID string) error
	ListSubjects(ctx context.Context, principal application.Principal) ([]application.Subject, error)
}

type SubjectHandler struct {
	service   subjectService
	responder responder
}

func NewSubjectHandler(service subjectService, logger *slog.Logger) *SubjectHandler {
	return &SubjectHandler{service: service, responder: newResponder(logger)}
}

func (h *SubjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req subjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	subject, err := h.service.CreateSubject(r.Context(), application.CreateSubjectParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, subjectResponse{Subject: toSubjectDTO(subject)})
}

func (h *SubjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	subjectID, ok := SubjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(subjectID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSubjectID)
		return
	}

	var req subjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	subject, err := h.service.UpdateSubject(r.Context(), application.UpdateSubjectParams{
		Principal: principal,
		SubjectID: subjectID,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, subjectResponse{Subject: toSubjectDTO(subject)})
}

func (h *SubjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	subjectID, ok := SubjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(subjectID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSubjectID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteSubject(r.Context(), principal, subjectID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *SubjectHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	subjects, err := h.service.ListSubjects(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]subjectDTO, 0, len(subjects))
	for _, subject := range subjects {
		out = append(out, toSubjectDTO(subject))
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSubjectsResponse{Subjects: out})
}

type subjectRequest struct {
	Name         string `json:"name"`
	DepartmentID string `json:"department_id"`
}

func (r subjectRequest) toInput() application.SubjectInput {
	return application.SubjectInput{
		Name:         strings.TrimSpace(r.Name),
		DepartmentID: strings.TrimSpace(r.DepartmentID),
	}
}

type subjectResponse struct {
	Subject subjectDTO `json:"subject"`
}

type listSubjectsResponse struct {
	Subjects []subjectDTO `json:"subjects"`
}

type subjectDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DepartmentID string `json:"department_id"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toSubjectDTO(subject application.Subject) subjectDTO {
	return subjectDTO{
		ID:           subject.ID,
		Name:         subject.Name,
		DepartmentID: subject.DepartmentID,
		CreatedAt:    formatTimestamp(subject.CreatedAt),
		UpdatedAt:    formatTimestamp(subject.UpdatedAt),
	}
}
