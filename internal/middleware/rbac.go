package middleware

import (
	"net/http"
	"slices"

	"github.com/atinyakov/stoneworks/internal/models"
	"github.com/atinyakov/stoneworks/internal/server/response"
)

// RequireRole rejects anonymous requests with 401 and requests from users
// whose role is not in roles with 403. It runs before the handler, so a
// rejected request never reaches storage.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				response.Error(w, http.StatusUnauthorized, response.CodeUnauthenticated, "authentication required", nil)
				return
			}
			if !slices.Contains(roles, user.Role) {
				response.Error(w, http.StatusForbidden, response.CodeForbidden, "insufficient permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireManager gates CMS mutations to admins and developers.
func RequireManager() func(http.Handler) http.Handler {
	return RequireRole(models.RoleAdmin, models.RoleDeveloper)
}
