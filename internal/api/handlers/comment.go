package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/safe2go/helpdesk/internal/api"
	"github.com/safe2go/helpdesk/internal/api/middleware"
	"github.com/safe2go/helpdesk/internal/domain"
)

type CommentService interface {
	Add(ctx context.Context, caseID string, author *domain.User, content string, internal bool) (*domain.Comment, error)
	ListByCase(ctx context.Context, caseID string, requester *domain.User) ([]*domain.Comment, error)
}

type CommentHandler struct {
	svc CommentService
}

func NewCommentHandler(svc CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

type CreateCommentRequest struct {
	Content  string `json:"content"`
	Internal bool   `json:"internal"`
}

type CommentResponse struct {
	ID             string `json:"id"`
	CaseID         string `json:"case_id"`
	UserID         string `json:"user_id,omitempty"`
	UserName       string `json:"user_name"`
	Content        string `json:"content"`
	Internal       bool   `json:"internal"`
	SyncedFromJira bool   `json:"synced_from_jira"`
	CreatedAt      string `json:"created_at"`
}

func commentToResponse(c *domain.Comment) *CommentResponse {
	return &CommentResponse{
		ID:             c.ID,
		CaseID:         c.CaseID,
		UserID:         c.UserID,
		UserName:       c.UserName,
		Content:        c.Content,
		Internal:       c.Internal,
		SyncedFromJira: c.SyncedFromJira,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
	}
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	caseID := chi.URLParam(r, "id")

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	comment, err := h.svc.Add(r.Context(), caseID, user, req.Content, req.Internal)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, commentToResponse(comment))
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	caseID := chi.URLParam(r, "id")

	comments, err := h.svc.ListByCase(r.Context(), caseID, user)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*CommentResponse, 0, len(comments))
	for _, c := range comments {
		responses = append(responses, commentToResponse(c))
	}
	api.Success(w, http.StatusOK, responses)
}
