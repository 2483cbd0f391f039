package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"authbase/internal/pkg/errors"
	"authbase/internal/platform/cache"
	"authbase/internal/platform/config"
	"authbase/internal/platform/models"
	"authbase/internal/platform/pubsub"
	"authbase/internal/platform/queue"
	"authbase/internal/platform/repositories"
	"authbase/internal/platform/token"
)

// PurgeEnqueuer schedules the delayed hard delete of a developer.
type PurgeEnqueuer interface {
	Enqueue(ctx context.Context, job queue.PurgeJob, delay time.Duration) error
}

type ProfileHandler struct {
	profileRepo *repositories.ProfileRepository
	userRepo    *repositories.UserRepository
	devRepo     *repositories.DeveloperRepository
	tokenRepo   *repositories.TokenRepository
	cache       cache.Store
	publisher   pubsub.Publisher
	purgeQueue  PurgeEnqueuer
	tokenSvc    *token.Service
	sweeperCfg  config.SweeperConfig
}

func NewProfileHandler(profileRepo *repositories.ProfileRepository, userRepo *repositories.UserRepository,
	devRepo *repositories.DeveloperRepository, tokenRepo *repositories.TokenRepository,
	cacheStore cache.Store, publisher pubsub.Publisher, purgeQueue PurgeEnqueuer,
	tokenSvc *token.Service, sweeperCfg config.SweeperConfig) *ProfileHandler {
	return &ProfileHandler{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		devRepo:     devRepo,
		tokenRepo:   tokenRepo,
		cache:       cacheStore,
		publisher:   publisher,
		purgeQueue:  purgeQueue,
		tokenSvc:    tokenSvc,
		sweeperCfg:  sweeperCfg,
	}
}

// profileOwner is whoever the request authenticated as: an end user via a
// Bearer session token, or a developer via the X-Developer-Id header.
type profileOwner struct {
	userID      string
	developerID string
}

// resolveOwner figures out which kind of account owns this request. A Bearer
// token wins when both credentials are present.
func (h *ProfileHandler) resolveOwner(r *http.Request) (*profileOwner, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return nil, false
		}
		claims, err := h.tokenSvc.Validate(parts[1])
		if err != nil {
			return nil, false
		}
		return &profileOwner{userID: claims.UserID}, true
	}

	if devID := r.Header.Get("X-Developer-Id"); devID != "" {
		return &profileOwner{developerID: devID}, true
	}

	return nil, false
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.resolveOwner(r)
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Authentication required", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if owner.userID != "" {
		profile, email, err := h.profileRepo.GetUserProfile(owner.userID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
			return
		}
		if profile == nil {
			errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Profile not found", nil)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"profile": profile,
			"email":   email,
		})
		return
	}

	profile, email, err := h.profileRepo.GetDeveloperProfile(owner.developerID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if profile == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Profile not found", nil)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"profile": profile,
		"email":   email,
	})
}

type UpdateProfileRequest struct {
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Name              string `json:"name"`
	PhoneNumber       string `json:"phone_number"`
	Address           string `json:"address"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.resolveOwner(r)
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Authentication required", nil)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if owner.userID != "" {
		existing, _, err := h.profileRepo.GetUserProfile(owner.userID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
			return
		}
		if existing == nil {
			errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Profile not found", nil)
			return
		}

		applyUserProfileUpdate(existing, &req)
		if err := h.profileRepo.UpdateUserProfile(existing); err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update profile", nil)
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Profile updated successfully",
			"profile": existing,
		})
		return
	}

	existing, _, err := h.profileRepo.GetDeveloperProfile(owner.developerID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if existing == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Profile not found", nil)
		return
	}

	applyDeveloperProfileUpdate(existing, &req)
	if err := h.profileRepo.UpdateDeveloperProfile(existing); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update profile", nil)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Profile updated successfully",
		"profile": existing,
	})
}

func applyUserProfileUpdate(p *models.UserProfile, req *UpdateProfileRequest) {
	if req.FirstName != "" {
		p.FirstName = req.FirstName
	}
	if req.LastName != "" {
		p.LastName = req.LastName
	}
	if req.PhoneNumber != "" {
		p.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		p.Address = req.Address
	}
	if req.ProfilePictureURL != "" {
		p.ProfilePictureURL = req.ProfilePictureURL
	}
}

func applyDeveloperProfileUpdate(p *models.DeveloperProfile, req *UpdateProfileRequest) {
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.PhoneNumber != "" {
		p.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		p.Address = req.Address
	}
	if req.ProfilePictureURL != "" {
		p.ProfilePictureURL = req.ProfilePictureURL
	}
}

// Delete removes the account behind the profile. Users are deleted outright.
// Developers are soft-deleted and a purge job is queued; the hard delete
// happens after the retention window so the account can still be recovered
// by support in the interim.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.resolveOwner(r)
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Authentication required", nil)
		return
	}

	ctx := r.Context()
	w.Header().Set("Content-Type", "application/json")

	if owner.userID != "" {
		user, err := h.userRepo.GetByID(owner.userID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
			return
		}
		if user == nil {
			errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "User not found", nil)
			return
		}

		if err := h.profileRepo.DeleteUserProfile(user.ID); err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete profile", nil)
			return
		}
		if err := h.tokenRepo.DeleteForUser(user.ID); err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete tokens", nil)
			return
		}
		if err := h.tokenRepo.DeleteOTPForUser(user.ID); err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete tokens", nil)
			return
		}
		if err := h.userRepo.Delete(user.ID); err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete user", nil)
			return
		}

		h.cache.Delete(ctx, cache.Key("validateUserId", user.ID))

		if err := h.publisher.PublishProfileDeleted(ctx, "user", user.ID); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to publish deletion event")
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Profile deleted successfully",
		})
		return
	}

	dev, err := h.devRepo.GetByID(owner.developerID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if dev == nil || dev.DeletedAt != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Developer not found", nil)
		return
	}

	now := time.Now().Unix()
	if err := h.profileRepo.SoftDeleteDeveloperProfile(dev.ID, now); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete profile", nil)
		return
	}
	if err := h.tokenRepo.SoftDeleteForDeveloper(dev.ID, now); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete tokens", nil)
		return
	}
	if err := h.devRepo.SoftDelete(dev.ID, now); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete developer", nil)
		return
	}

	if dev.APIToken != nil {
		h.cache.Delete(ctx, cache.Key("validate", *dev.APIToken))
	}
	h.cache.Delete(ctx, cache.Key("token", dev.Email))

	if err := h.purgeQueue.Enqueue(ctx, queue.PurgeJob{DeveloperID: dev.ID}, h.sweeperCfg.PurgeDelay); err != nil {
		log.Error().Err(err).Str("developer_id", dev.ID).Msg("failed to enqueue purge job")
	}

	if err := h.publisher.PublishProfileDeleted(ctx, "developer", dev.ID); err != nil {
		log.Warn().Err(err).Str("developer_id", dev.ID).Msg("failed to publish deletion event")
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Profile deleted successfully. Account will be permanently removed after the retention period.",
	})
}
