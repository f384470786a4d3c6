package middleware

import (
	"context"
	"net/http"

	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/logger"
	"cardealer-backend/pkg/utils"
)

// AuthMiddleware authenticates the request from the Bearer header or the access token cookie.
// The user placed in the context is built from the token claims; no database hit per request.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := utils.ExtractClaims(r)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		user := &domain.User{
			ID:       claims.UserID(),
			Email:    claims.Email,
			Role:     claims.Role,
			IsActive: true,
		}

		ctx := context.WithValue(r.Context(), domain.UserContextKey, user)
		reqLogger := logger.WithUserID(*logger.WithContext(ctx), user.ID)
		ctx = logger.NewContext(ctx, &reqLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the user set by AuthMiddleware.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(domain.UserContextKey).(*domain.User)
	return user, ok && user != nil
}
