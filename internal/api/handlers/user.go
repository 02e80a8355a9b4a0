package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/safe2go/helpdesk/internal/api"
	"github.com/safe2go/helpdesk/internal/api/middleware"
	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/service"
)

type UserService interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, status domain.UserStatus) ([]*domain.User, error)
	Approve(ctx context.Context, id, approverID string) (*domain.User, error)
	Reject(ctx context.Context, id, approverID string) (*domain.User, error)
	Create(ctx context.Context, input service.CreateUserInput, createdBy string) (*domain.User, error)
	Update(ctx context.Context, id string, input service.UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id, requesterID string) error
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.UserStatus(r.URL.Query().Get("status"))

	users, err := h.svc.List(r.Context(), status)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, userToResponse(u))
	}
	api.Success(w, http.StatusOK, responses)
}

// Pending lists registrations waiting for an approval decision.
func (h *UserHandler) Pending(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context(), domain.UserStatusPending)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, userToResponse(u))
	}
	api.Success(w, http.StatusOK, responses)
}

func (h *UserHandler) Approve(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	user, err := h.svc.Approve(r.Context(), userID, middleware.GetUserID(r.Context()))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, userToResponse(user))
}

func (h *UserHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	user, err := h.svc.Reject(r.Context(), userID, middleware.GetUserID(r.Context()))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, userToResponse(user))
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		api.Error(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	user, err := h.svc.Create(r.Context(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.UserRole(req.Role),
		Phone:    req.Phone,
		Company:  req.Company,
	}, middleware.GetUserID(r.Context()))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, userToResponse(user))
}

type UpdateUserRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Role    string `json:"role"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.Update(r.Context(), userID, service.UpdateUserInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Company: req.Company,
		Role:    domain.UserRole(req.Role),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, userToResponse(user))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), userID, middleware.GetUserID(r.Context())); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusNoContent, nil)
}
