package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apiContext "authbase/internal/api/context"
	"authbase/internal/api/middleware"
	"authbase/internal/pkg/errors"
	"authbase/internal/pkg/validator"
	"authbase/internal/platform/cache"
	"authbase/internal/platform/config"
	"authbase/internal/platform/email"
	"authbase/internal/platform/models"
	"authbase/internal/platform/repositories"
	"authbase/internal/platform/token"
)

type DeveloperHandler struct {
	devRepo     *repositories.DeveloperRepository
	profileRepo *repositories.ProfileRepository
	cache       cache.Store
	mailer      email.Sender
	tokensCfg   config.TokensConfig
}

func NewDeveloperHandler(devRepo *repositories.DeveloperRepository, profileRepo *repositories.ProfileRepository,
	cacheStore cache.Store, mailer email.Sender, tokensCfg config.TokensConfig) *DeveloperHandler {
	return &DeveloperHandler{
		devRepo:     devRepo,
		profileRepo: profileRepo,
		cache:       cacheStore,
		mailer:      mailer,
		tokensCfg:   tokensCfg,
	}
}

type RegisterDeveloperRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *DeveloperHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterDeveloperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "name, email, and password are required", nil)
		return
	}
	if err := validator.ValidEmail(req.Email); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	existing, err := h.devRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if existing != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "A developer with this email already exists", nil)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to hash password", nil)
		return
	}

	verificationOTP, err := token.NumericOTP()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate verification code", nil)
		return
	}

	now := time.Now().Unix()
	dev := &models.Developer{
		ID:                     "dev_" + uuid.NewString(),
		Name:                   req.Name,
		Email:                  req.Email,
		PasswordHash:           string(hashedPassword),
		IsActive:               false,
		EmailVerified:          false,
		EmailVerificationToken: &verificationOTP,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := h.devRepo.Create(dev); err != nil {
		if repositories.IsUniqueViolation(err) {
			errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "A developer with this email already exists", nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to register developer", nil)
		return
	}

	profile := &models.DeveloperProfile{
		DeveloperID: dev.ID,
		Name:        dev.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.profileRepo.CreateDeveloperProfile(profile); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to register developer", nil)
		return
	}

	email.Dispatch(h.mailer, dev.Email, "Email Verification",
		fmt.Sprintf("Hello %s,\n\nYour email verification code is: %s\n\nPlease note that this code will expire in 24 hours.\n\nRegards,\nAuthbase Team", dev.Name, verificationOTP))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Developer registered successfully. Please verify your email.",
	})
}

type ConfirmDeveloperRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Confirm activates the account and issues the first API token. The token is
// only ever returned here and on explicit retrieval or regeneration.
func (h *DeveloperHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmDeveloperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	dev, err := h.devRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if dev == nil || dev.EmailVerificationToken == nil || *dev.EmailVerificationToken != req.Token {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid token or email", nil)
		return
	}

	apiToken := token.NewAPIToken()
	expiresAt := time.Now().Add(h.tokensCfg.APITokenTTL).Unix()

	if err := h.devRepo.Activate(dev.Email, apiToken, expiresAt); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to activate developer", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "Email verified successfully",
		"api_token":  apiToken,
		"expires_at": expiresAt,
	})
}

type ResendConfirmationRequest struct {
	Email string `json:"email"`
}

func (h *DeveloperHandler) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req ResendConfirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	dev, err := h.devRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if dev == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Developer not found", nil)
		return
	}
	if dev.EmailVerified {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Email already verified", nil)
		return
	}

	verificationOTP, err := token.NumericOTP()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate verification code", nil)
		return
	}
	if err := h.devRepo.UpdateVerificationToken(dev.Email, verificationOTP); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update verification code", nil)
		return
	}

	email.Dispatch(h.mailer, dev.Email, "New Email Verification Code",
		fmt.Sprintf("Hello %s,\n\nYour new email verification code is: %s\n\nPlease note that this code will expire in 24 hours.\n\nRegards,\nAuthbase Team", dev.Name, verificationOTP))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "New email verification OTP sent to your email",
	})
}

type RetrieveTokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenProjection is what the token:email cache holds; never the hash.
type tokenProjection struct {
	ID        string `json:"id"`
	APIToken  string `json:"api_token"`
	ExpiresAt int64  `json:"expires_at"`
}

func (h *DeveloperHandler) RetrieveToken(w http.ResponseWriter, r *http.Request) {
	var req RetrieveTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Email and password are required", nil)
		return
	}

	var cached tokenProjection
	cacheKey := cache.Key("token", req.Email)
	if h.cache.Get(r.Context(), cacheKey, &cached) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":   "Token retrieved successfully",
			"developer": cached,
		})
		return
	}

	dev, err := h.devRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if dev == nil || !dev.IsActive || dev.DeletedAt != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Developer not found or inactive", nil)
		return
	}
	if !dev.EmailVerified {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Email not verified", nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(dev.PasswordHash), []byte(req.Password)); err != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid password", nil)
		return
	}

	projection := tokenProjection{ID: dev.ID}
	if dev.APIToken != nil {
		projection.APIToken = *dev.APIToken
	}
	if dev.TokenExpiresAt != nil {
		projection.ExpiresAt = *dev.TokenExpiresAt
	}
	h.cache.Set(r.Context(), cacheKey, projection)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "Token retrieved successfully",
		"developer": projection,
	})
}

type RegenerateTokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegenerateToken rotates the API token. Strict contract: regeneration is
// allowed only once the current token has expired; password reset is the
// escape hatch for a compromised live token.
func (h *DeveloperHandler) RegenerateToken(w http.ResponseWriter, r *http.Request) {
	var req RegenerateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Email and password are required", nil)
		return
	}

	dev, err := h.devRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if dev == nil || !dev.IsActive || dev.DeletedAt != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Developer not found or inactive", nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(dev.PasswordHash), []byte(req.Password)); err != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid password", nil)
		return
	}

	if dev.TokenExpiresAt != nil && *dev.TokenExpiresAt > time.Now().Unix() {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Token has not expired yet", nil)
		return
	}

	newToken := token.NewAPIToken()
	expiresAt := time.Now().Add(h.tokensCfg.APITokenTTL).Unix()

	if err := h.devRepo.UpdateAPIToken(dev.ID, newToken, expiresAt); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to regenerate token", nil)
		return
	}

	if dev.APIToken != nil {
		h.cache.Delete(r.Context(), cache.Key("validate", *dev.APIToken))
	}
	projection := tokenProjection{ID: dev.ID, APIToken: newToken, ExpiresAt: expiresAt}
	h.cache.Set(r.Context(), cache.Key("token", dev.Email), projection)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "Token regenerated successfully",
		"developer": projection,
	})
}

type ResetDeveloperPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

// ResetPassword rehashes the password and rotates the API token, so a leaked
// credential pair dies with the old password.
func (h *DeveloperHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetDeveloperPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Email == "" || req.NewPassword == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Email and new password are required", nil)
		return
	}

	dev, err := h.devRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if dev == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Developer not found", nil)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to hash password", nil)
		return
	}

	if err := h.devRepo.UpdatePassword(dev.ID, string(hashedPassword)); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to reset password", nil)
		return
	}

	if dev.IsActive {
		newToken := token.NewAPIToken()
		expiresAt := time.Now().Add(h.tokensCfg.APITokenTTL).Unix()
		if err := h.devRepo.UpdateAPIToken(dev.ID, newToken, expiresAt); err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to rotate token", nil)
			return
		}
	}

	if dev.APIToken != nil {
		h.cache.Delete(r.Context(), cache.Key("validate", *dev.APIToken))
	}
	h.cache.Delete(r.Context(), cache.Key("token", dev.Email))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Password reset successfully",
	})
}

// ValidateToken sits behind the developer middleware; reaching the handler
// means the token already passed the activity and expiry checks.
func (h *DeveloperHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	identity := r.Context().Value(apiContext.Developer).(*middleware.DeveloperIdentity)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "Valid API token",
		"developer": map[string]string{"id": identity.ID},
	})
}
