package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/safe2go/helpdesk/internal/api"
	"github.com/safe2go/helpdesk/internal/domain"
)

type contextKey string

const UserKey contextKey = "user"

// TokenResolver validates a bearer token and resolves it to the account it
// belongs to.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*domain.User, error)
}

// BearerAuth authenticates requests with a JWT bearer token and stores the
// resolved user in the request context.
func BearerAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			user, err := resolver.ResolveToken(r.Context(), token)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose authenticated user is not an
// administrator. Must run after BearerAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user == nil {
			api.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if user.Role != domain.UserRoleAdmin {
			api.Error(w, http.StatusForbidden, "administrator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUser returns the authenticated user from context, or nil.
func GetUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(UserKey).(*domain.User)
	return user
}

// GetUserID returns the authenticated user's id from context, or "".
func GetUserID(ctx context.Context) string {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return ""
}
