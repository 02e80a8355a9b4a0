package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/safe2go/helpdesk/internal/api/middleware"
	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input service.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.User), args.Error(2)
}

func TestAuthHandler_Register_Success(t *testing.T) {
	mockSvc := new(MockAuthService)
	handler := NewAuthHandler(mockSvc)

	registered := &domain.User{
		ID:        "u-1",
		Name:      "João Parceiro",
		Email:     "joao@parceiro.com",
		Role:      domain.UserRoleClient,
		Status:    domain.UserStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	mockSvc.On("Register", mock.Anything, service.RegisterInput{
		Name:     "João Parceiro",
		Email:    "joao@parceiro.com",
		Password: "s3cret!",
		Company:  "Parceiro Corretora",
	}).Return(registered, nil)

	body := `{"name":"João Parceiro","email":"joao@parceiro.com","password":"s3cret!","company":"Parceiro Corretora"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Register(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "u-1", data["id"])
	assert.Equal(t, "pending", data["status"])
	mockSvc.AssertExpectations(t)
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no name", `{"email":"a@b.com","password":"x"}`, "name is required"},
		{"no email", `{"name":"A","password":"x"}`, "email is required"},
		{"no password", `{"name":"A","email":"a@b.com"}`, "password is required"},
		{"malformed body", `{`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockAuthService)
			handler := NewAuthHandler(mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()

			handler.Register(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
			mockSvc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	mockSvc := new(MockAuthService)
	handler := NewAuthHandler(mockSvc)

	user := &domain.User{
		ID:     "u-1",
		Name:   "João Parceiro",
		Email:  "joao@parceiro.com",
		Role:   domain.UserRoleClient,
		Status: domain.UserStatusApproved,
	}
	mockSvc.On("Login", mock.Anything, "joao@parceiro.com", "s3cret!").Return("jwt-token", user, nil)

	body := `{"email":"joao@parceiro.com","password":"s3cret!"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "jwt-token", data["token"])
	assert.Equal(t, "u-1", data["user"].(map[string]interface{})["id"])
}

func TestAuthHandler_Login_PendingApproval(t *testing.T) {
	mockSvc := new(MockAuthService)
	handler := NewAuthHandler(mockSvc)

	mockSvc.On("Login", mock.Anything, "pendente@parceiro.com", "s3cret!").
		Return("", nil, domain.ErrUserNotApproved)

	body := `{"email":"pendente@parceiro.com","password":"s3cret!"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mockSvc := new(MockAuthService)
	handler := NewAuthHandler(mockSvc)

	mockSvc.On("Login", mock.Anything, "joao@parceiro.com", "wrong").
		Return("", nil, domain.ErrInvalidCredentials)

	body := `{"email":"joao@parceiro.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	handler := NewAuthHandler(new(MockAuthService))

	user := &domain.User{ID: "u-1", Name: "João", Email: "joao@parceiro.com", Role: domain.UserRoleClient, Status: domain.UserStatusApproved}
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserKey, user))
	w := httptest.NewRecorder()

	handler.Me(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "u-1", resp["data"].(map[string]interface{})["id"])
}
