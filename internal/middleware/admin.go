package middleware

import (
	"context"
	"net/http"

	"fintrack/internal/models"
)

type RoleStore interface {
	GetRole(ctx context.Context, userID string) (models.UserRole, error)
}

// RequireAdmin gates platform-admin routes; group-level admin checks
// live in the services, not here.
func RequireAdmin(roles RoleStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				respond(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			role, err := roles.GetRole(r.Context(), userID)
			if err != nil {
				respond(w, http.StatusInternalServerError, "unable to verify role")
				return
			}
			if role != models.RoleAdmin {
				respond(w, http.StatusForbidden, "admin privileges required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
