package middleware

import (
	"net/http"

	"cardealer-backend/pkg/utils"
)

// AdminMiddleware ensures the authenticated user has the admin role.
// MUST be used AFTER AuthMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if !user.IsAdmin() {
			utils.WriteError(w, http.StatusForbidden, "Forbidden: admins only")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Admin chains AuthMiddleware and AdminMiddleware around a handler func.
func Admin(h http.HandlerFunc) http.Handler {
	return AuthMiddleware(AdminMiddleware(h))
}

// Authenticated wraps a handler func with AuthMiddleware.
func Authenticated(h http.HandlerFunc) http.Handler {
	return AuthMiddleware(h)
}
