package middleware

import (
	"context"
	"net/http"

	"github.com/and07/mindsync/internal/handlers/render"
	"github.com/and07/mindsync/internal/handlers/userctx"
	"github.com/and07/mindsync/internal/models"
)

type authService interface {
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

type AuthMiddleware struct {
	auth authService
}

func NewAuth(auth authService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Auth resolves the bearer user once and puts it to the request context
// Handlers receive the resolved user, never the raw token
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.auth.Auth(r.Context(), r)
		if err != nil {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := userctx.New(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
