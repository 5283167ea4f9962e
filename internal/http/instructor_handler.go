package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/classroom-scheduler/internal/application"
)

type instructorService interface {
	CreateInstructor(ctx context.Context, params application.CreateInstructorParams) (application.Instructor, error)
	UpdateInstructor(ctx context.Context, params application.UpdateInstructorParams) (application.Instructor, error)
	DeleteInstructor(ctx context.Context, principal application.Principal, instructorID string) error
	ListInstructors(ctx context.Context, principal application.Principal) ([]application.Instructor, error)
}

type InstructorHandler struct {
	service   instructorService
	responder responder
}

func NewInstructorHandler(service instructorService, logger *slog.Logger) *InstructorHandler {
	return &InstructorHandler{service: service, responder: newResponder(logger)}
}

func (h *InstructorHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req instructorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	instructor, err := h.service.CreateInstructor(r.Context(), application.CreateInstructorParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, instructorResponse{Instructor: toInstructorDTO(instructor)})
}

func (h *InstructorHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	instructorID, ok := InstructorIDFromContext(r.Context())
	if !ok || strings.TrimSpace(instructorID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidInstructorID)
		return
	}

	var req instructorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	instructor, err := h.service.UpdateInstructor(r.Context(), application.UpdateInstructorParams{
		Principal:    principal,
		InstructorID: instructorID,
		Input:        req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, instructorResponse{Instructor: toInstructorDTO(instructor)})
}

func (h *InstructorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	instructorID, ok := InstructorIDFromContext(r.Context())
	if !ok || strings.TrimSpace(instructorID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidInstructorID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteInstructor(r.Context(), principal, instructorID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *InstructorHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	instructors, err := h.service.ListInstructors(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]instructorDTO, 0, len(instructors))
	for _, instructor := range instructors {
		out = append(out, toInstructorDTO(instructor))
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listInstructorsResponse{Instructors: out})
}

type instructorRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
}

func (r instructorRequest) toInput() application.InstructorInput {
	return application.InstructorInput{
		Email:       strings.TrimSpace(r.Email),
		DisplayName: strings.TrimSpace(r.DisplayName),
		Password:    r.Password,
		IsAdmin:     r.IsAdmin,
	}
}

type instructorResponse struct {
	Instructor instructorDTO `json:"instructor"`
}

type listInstructorsResponse struct {
	Instructors []instructorDTO `json:"instructors"`
}

type instructorDTO struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toInstructorDTO(instructor application.Instructor) instructorDTO {
	return instructorDTO{
		ID:          instructor.ID,
		Email:       instructor.Email,
		DisplayName: instructor.DisplayName,
		IsAdmin:     instructor.IsAdmin,
		CreatedAt:   formatTimestamp(instructor.CreatedAt),
		UpdatedAt:   formatTimestamp(instructor.UpdatedAt),
	}
}
