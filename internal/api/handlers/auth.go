package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/safe2go/helpdesk/internal/api"
	"github.com/safe2go/helpdesk/internal/api/middleware"
	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, input service.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
	CreatedAt string `json:"created_at"`
}

func userToResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Status:    string(u.Status),
		Phone:     u.Phone,
		Company:   u.Company,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Email == "" {
		api.Error(w, http.StatusBadRequest, "email is required")
		return
	}
	if req.Password == "" {
		api.Error(w, http.StatusBadRequest, "password is required")
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Company:  req.Company,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, userToResponse(user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		api.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, LoginResponse{
		Token: token,
		User:  userToResponse(user),
	})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	api.Success(w, http.StatusOK, userToResponse(user))
}
