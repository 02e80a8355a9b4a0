package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/safe2go/helpdesk/internal/api"
	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/service"
)

type ActivityService interface {
	Create(ctx context.Context, input service.CreateActivityInput) (*domain.Activity, error)
	List(ctx context.Context, caseID string) ([]*domain.Activity, error)
	ListCurrent(ctx context.Context) ([]*domain.Activity, error)
	Stop(ctx context.Context, id string) (*domain.Activity, error)
	Delete(ctx context.Context, id string) error
}

type ActivityHandler struct {
	svc ActivityService
}

func NewActivityHandler(svc ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

type CreateActivityRequest struct {
	CaseID      string `json:"case_id"`
	Responsible string `json:"responsible"`
	Activity    string `json:"activity"`
	TimeSpent   int    `json:"time_spent"`
	Notes       string `json:"notes"`
	Current     bool   `json:"current"`
}

type ActivityResponse struct {
	ID          string `json:"id"`
	CaseID      string `json:"case_id,omitempty"`
	Responsible string `json:"responsible"`
	Activity    string `json:"activity"`
	TimeSpent   int    `json:"time_spent"`
	Notes       string `json:"notes,omitempty"`
	Current     bool   `json:"current"`
	CreatedAt   string `json:"created_at"`
}

func activityToResponse(a *domain.Activity) *ActivityResponse {
	return &ActivityResponse{
		ID:          a.ID,
		CaseID:      a.CaseID,
		Responsible: a.Responsible,
		Activity:    a.Activity,
		TimeSpent:   a.TimeSpent,
		Notes:       a.Notes,
		Current:     a.Current,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Responsible == "" || req.Activity == "" {
		api.Error(w, http.StatusBadRequest, "responsible and activity are required")
		return
	}

	activity, err := h.svc.Create(r.Context(), service.CreateActivityInput{
		CaseID:      req.CaseID,
		Responsible: req.Responsible,
		Activity:    req.Activity,
		TimeSpent:   req.TimeSpent,
		Notes:       req.Notes,
		Current:     req.Current,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, activityToResponse(activity))
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	activities, err := h.svc.List(r.Context(), r.URL.Query().Get("case_id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*ActivityResponse, 0, len(activities))
	for _, a := range activities {
		responses = append(responses, activityToResponse(a))
	}
	api.Success(w, http.StatusOK, responses)
}

// ListCurrent returns the in-progress activity of each responsible.
func (h *ActivityHandler) ListCurrent(w http.ResponseWriter, r *http.Request) {
	activities, err := h.svc.ListCurrent(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*ActivityResponse, 0, len(activities))
	for _, a := range activities {
		responses = append(responses, activityToResponse(a))
	}
	api.Success(w, http.StatusOK, responses)
}

// Stop closes a running activity and records its elapsed minutes.
func (h *ActivityHandler) Stop(w http.ResponseWriter, r *http.Request) {
	activityID := chi.URLParam(r, "id")
	activity, err := h.svc.Stop(r.Context(), activityID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, activityToResponse(activity))
}

func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	activityID := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), activityID); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusNoContent, nil)
}
