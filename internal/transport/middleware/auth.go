package middleware

import (
	"net/http"

	"github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/auth"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/frahmantamala/personal-finance/pkg/logger"
)

type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
}

// Authenticate requires a valid bearer access token and places its owner in
// the request context.
func Authenticate(validator TokenValidator, base *transport.BaseHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := base.ExtractTokenFromHeader(r)
			if token == "" {
				base.WriteAppError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
				return
			}

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				logger.From(r.Context()).Warn("token validation failed", "error", err)
				if appErr, ok := internal.IsAppError(err); ok {
					base.WriteAppError(w, appErr)
					return
				}
				base.WriteAppError(w, internal.ErrInvalidToken)
				return
			}

			ctx := internal.ContextWithOwnerID(r.Context(), claims.UserID)
			ctx = logger.With(ctx, "owner_id", claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
