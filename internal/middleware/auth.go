package middleware

import (
	"context"
	"net/http"

	"github.com/ukydev/fm-control/internal/auth"
	"github.com/ukydev/fm-control/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	StaffContextKey contextKey = "staff"
)

// publicPaths are served without a token.
var publicPaths = map[string]bool{
	"/health":            true,
	"/api/auth/login":    true,
	"/api/auth/register": true,
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate validates the bearer token and puts the staff claims on the
// request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		token, err := m.authService.ExtractTokenFromHeader(authHeader)
		if err != nil {
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := m.authService.ValidateToken(token)
		if err == auth.ErrExpiredToken {
			http.Error(w, "Token expired", http.StatusUnauthorized)
			return
		}
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), StaffContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission rejects requests whose role may not perform action.
func (m *AuthMiddleware) RequirePermission(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetStaffFromContext(r.Context())
			if !ok {
				http.Error(w, "Staff context not found", http.StatusUnauthorized)
				return
			}

			if !claims.Role.HasPermission(action) {
				http.Error(w, "Insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Permit wraps a handler function with RequirePermission.
func (m *AuthMiddleware) Permit(action string, h http.HandlerFunc) http.Handler {
	return m.RequirePermission(action)(h)
}

// GetStaffFromContext extracts staff claims from request context
func GetStaffFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(StaffContextKey).(*models.Claims)
	return claims, ok
}
