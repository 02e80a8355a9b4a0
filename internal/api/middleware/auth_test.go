package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTokenResolver struct {
	mock.Mock
}

func (m *MockTokenResolver) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestBearerAuth_Success(t *testing.T) {
	mockResolver := new(MockTokenResolver)
	mockResolver.On("ResolveToken", mock.Anything, "valid-token").
		Return(&domain.User{ID: "u-1", Role: domain.UserRoleClient}, nil)

	var capturedUserID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := BearerAuth(mockResolver)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", capturedUserID)
	mockResolver.AssertExpectations(t)
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	mockResolver := new(MockTokenResolver)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	wrappedHandler := BearerAuth(mockResolver)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing authorization header")
}

func TestBearerAuth_InvalidFormat(t *testing.T) {
	mockResolver := new(MockTokenResolver)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	wrappedHandler := BearerAuth(mockResolver)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid authorization format")
}

func TestBearerAuth_RejectedToken(t *testing.T) {
	mockResolver := new(MockTokenResolver)
	mockResolver.On("ResolveToken", mock.Anything, "stale-token").
		Return(nil, domain.ErrTokenExpired)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	wrappedHandler := BearerAuth(mockResolver)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		user       *domain.User
		wantStatus int
	}{
		{"admin passes", &domain.User{ID: "adm-1", Role: domain.UserRoleAdmin}, http.StatusOK},
		{"client refused", &domain.User{ID: "u-1", Role: domain.UserRoleClient}, http.StatusForbidden},
		{"no user", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				req = req.WithContext(context.WithValue(req.Context(), UserKey, tt.user))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
