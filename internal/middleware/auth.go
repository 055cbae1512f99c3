package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/cashewph/lending-platform/internal/service"
	"github.com/cashewph/lending-platform/pkg/response"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Authenticate verifies the bearer token and stashes the caller's user
// ID in the request context.
func Authenticate(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				response.Unauthorized(w, "missing authorization header")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				response.Unauthorized(w, "authorization header must be a bearer token")
				return
			}

			userID, err := authSvc.ParseToken(token)
			if err != nil {
				response.Unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin allows only accounts flagged as back-office staff
// through. It must sit behind Authenticate.
func RequireAdmin(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserID(r.Context())
			if !ok {
				response.Unauthorized(w, "authentication required")
				return
			}

			user, err := authSvc.GetUser(r.Context(), userID)
			if err != nil || !user.IsAdmin {
				response.Forbidden(w, "admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserID extracts the authenticated user ID placed by Authenticate.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}
