package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/safe2go/helpdesk/internal/api"
	"github.com/safe2go/helpdesk/internal/api/middleware"
	"github.com/safe2go/helpdesk/internal/domain"
)

type NotificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type NotificationHandler struct {
	svc NotificationService
}

func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type NotificationResponse struct {
	ID        string `json:"id"`
	CaseID    string `json:"case_id,omitempty"`
	CaseTitle string `json:"case_title,omitempty"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

func notificationToResponse(n *domain.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		CaseID:    n.CaseID,
		CaseTitle: n.CaseTitle,
		Message:   n.Message,
		Type:      string(n.Type),
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.svc.List(r.Context(), userID, unreadOnly)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, notificationToResponse(n))
	}
	api.Success(w, http.StatusOK, responses)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.CountUnread(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID := chi.URLParam(r, "id")
	if err := h.svc.MarkRead(r.Context(), notificationID, middleware.GetUserID(r.Context())); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusNoContent, nil)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkAllRead(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusNoContent, nil)
}
