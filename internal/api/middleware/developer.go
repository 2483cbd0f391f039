package middleware

import (
	"context"
	"net/http"
	"time"

	apiContext "authbase/internal/api/context"
	"authbase/internal/pkg/errors"
	"authbase/internal/platform/cache"
	"authbase/internal/platform/repositories"
)

// DeveloperIdentity is the cached projection of a validated API token.
// Deliberately minimal: enough for downstream checks, nothing sensitive.
type DeveloperIdentity struct {
	ID string `json:"id"`
}

type DeveloperMiddleware struct {
	devRepo *repositories.DeveloperRepository
	cache   cache.Store
}

func NewDeveloperMiddleware(devRepo *repositories.DeveloperRepository, cacheStore cache.Store) *DeveloperMiddleware {
	return &DeveloperMiddleware{devRepo: devRepo, cache: cacheStore}
}

// Handle resolves the X-Api-Token header to a developer, cache first.
// A token is valid only while the developer is active, not deleted, and the
// token has not passed its expiry; a cached entry can only exist for a token
// that satisfied all three within the cache TTL.
func (m *DeveloperMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apiToken := r.Header.Get("X-Api-Token")
		if apiToken == "" {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "API token is required", nil)
			return
		}

		var identity DeveloperIdentity
		cacheKey := cache.Key("validate", apiToken)
		if m.cache.Get(r.Context(), cacheKey, &identity) {
			ctx := context.WithValue(r.Context(), apiContext.Developer, &identity)
			next(w, r.WithContext(ctx))
			return
		}

		dev, err := m.devRepo.GetByAPIToken(apiToken)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
			return
		}
		if dev == nil || !dev.IsActive || dev.DeletedAt != nil ||
			dev.TokenExpiresAt == nil || *dev.TokenExpiresAt <= time.Now().Unix() {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Invalid or inactive developer token", nil)
			return
		}

		identity = DeveloperIdentity{ID: dev.ID}
		m.cache.Set(r.Context(), cacheKey, identity)

		ctx := context.WithValue(r.Context(), apiContext.Developer, &identity)
		next(w, r.WithContext(ctx))
	}
}
