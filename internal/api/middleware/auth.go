package middleware

import (
	"context"
	"net/http"
	"strings"

	apiContext "authbase/internal/api/context"
	"authbase/internal/pkg/errors"
	"authbase/internal/platform/token"
)

type AuthMiddleware struct {
	tokenSvc *token.Service
}

func NewAuthMiddleware(tokenSvc *token.Service) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Handle verifies the Bearer session token and stashes both the parsed claims
// and the raw credential; logout needs the raw value to find the token row.
func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid authorization header format", nil)
			return
		}

		claims, err := m.tokenSvc.Validate(parts[1])
		if err != nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		ctx = context.WithValue(ctx, apiContext.RawToken, parts[1])
		next(w, r.WithContext(ctx))
	}
}
