package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
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

type AuthHandler struct {
	userRepo    *repositories.UserRepository
	orgRepo     *repositories.OrganizationRepository
	tokenRepo   *repositories.TokenRepository
	profileRepo *repositories.ProfileRepository
	devRepo     *repositories.DeveloperRepository
	cache       cache.Store
	mailer      email.Sender
	tokenSvc    *token.Service
	jwtCfg      config.JWTConfig
	tokensCfg   config.TokensConfig
}

func NewAuthHandler(userRepo *repositories.UserRepository, orgRepo *repositories.OrganizationRepository,
	tokenRepo *repositories.TokenRepository, profileRepo *repositories.ProfileRepository,
	devRepo *repositories.DeveloperRepository, cacheStore cache.Store, mailer email.Sender,
	tokenSvc *token.Service, jwtCfg config.JWTConfig, tokensCfg config.TokensConfig) *AuthHandler {
	return &AuthHandler{
		userRepo:    userRepo,
		orgRepo:     orgRepo,
		tokenRepo:   tokenRepo,
		profileRepo: profileRepo,
		devRepo:     devRepo,
		cache:       cacheStore,
		mailer:      mailer,
		tokenSvc:    tokenSvc,
		jwtCfg:      jwtCfg,
		tokensCfg:   tokensCfg,
	}
}

type SignupRequest struct {
	AppID     string `json:"app_id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserType  string `json:"user_type"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	identity := r.Context().Value(apiContext.Developer).(*middleware.DeveloperIdentity)

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.AppID == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Organization ID (app_id) is required for signup", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Email and password are required", nil)
		return
	}
	if err := validator.ValidEmail(req.Email); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	linked, err := h.orgRepo.IsLinked(identity.ID, req.AppID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if !linked {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Organization not found", nil)
		return
	}

	existing, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if existing != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "User already exists", nil)
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
	user := &models.User{
		ID:                     "usr_" + uuid.NewString(),
		OrganizationID:         req.AppID,
		DeveloperID:            identity.ID,
		Email:                  req.Email,
		PasswordHash:           string(hashedPassword),
		FirstName:              req.FirstName,
		LastName:               req.LastName,
		UserType:               req.UserType,
		EmailVerified:          false,
		EmailVerificationToken: &verificationOTP,
		IsActive:               true,
		IsLoggedIn:             false,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	tx, err := h.devRepo.BeginTx()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	defer tx.Rollback()

	if err := h.userRepo.CreateTx(tx, user); err != nil {
		if repositories.IsUniqueViolation(err) {
			errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "User already exists", nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create user", nil)
		return
	}

	profile := &models.UserProfile{
		UserID:      user.ID,
		DeveloperID: identity.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.profileRepo.CreateUserProfileTx(tx, profile); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create user profile", nil)
		return
	}

	if err := tx.Commit(); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	email.Dispatch(h.mailer, user.Email, "Email Verification",
		fmt.Sprintf("Hello %s,\n\nYour email verification code is: %s\n\nPlease note that this code will expire in 24 hours.\n\nRegards,\nAuthbase Team", user.FirstName, verificationOTP))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "User created successfully. Please verify your email.",
		"user": map[string]string{
			"id":           user.ID,
			"email":        user.Email,
			"first_name":   user.FirstName,
			"last_name":    user.LastName,
			"app_id":       user.OrganizationID,
			"developer_id": user.DeveloperID,
		},
	})
}

type ConfirmEmailRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req ConfirmEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if user == nil || user.EmailVerificationToken == nil || *user.EmailVerificationToken != req.Token {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid token or email", nil)
		return
	}

	if err := h.userRepo.SetEmailVerified(req.Email); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to verify email", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Email verified successfully",
	})
}

type ResendEmailVerificationRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ResendEmailVerification(w http.ResponseWriter, r *http.Request) {
	var req ResendEmailVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "User not found", nil)
		return
	}
	if user.EmailVerified {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Email already verified", nil)
		return
	}

	verificationOTP, err := token.NumericOTP()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate verification code", nil)
		return
	}
	if err := h.userRepo.UpdateVerificationToken(user.Email, verificationOTP); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update verification code", nil)
		return
	}

	email.Dispatch(h.mailer, user.Email, "New Email Verification Code",
		fmt.Sprintf("Hello %s,\n\nYour new email verification code is: %s\n\nPlease note that this code will expire in 24 hours.\n\nRegards,\nAuthbase Team", user.FirstName, verificationOTP))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "New email verification OTP sent to your email",
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and mails a second-factor OTP. No session exists
// until the OTP comes back through LoginValidate.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Email and password are required", nil)
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid email or password", nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid email or password", nil)
		return
	}

	if !user.EmailVerified {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Email not verified", nil)
		return
	}

	loginOTP, err := token.NumericOTP()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate verification code", nil)
		return
	}

	otpRow := &models.OTPToken{
		UserID:    user.ID,
		OTP:       loginOTP,
		ExpiresAt: time.Now().Add(h.tokensCfg.LoginOTPTTL).Unix(),
	}
	if err := h.tokenRepo.CreateOTP(otpRow); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to store verification code", nil)
		return
	}

	email.Dispatch(h.mailer, user.Email, "Login Verification",
		fmt.Sprintf("Hello %s,\n\nYour login verification code is: %s\n\nRegards,\nAuthbase Team", user.FirstName, loginOTP))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Login verification code sent to your email",
	})
}

type LoginValidateRequest struct {
	Email      string `json:"email"`
	OTP        string `json:"otp"`
	RememberMe bool   `json:"remember_me"`
}

// LoginValidate consumes the OTP and issues the session. The OTP is deleted
// before tokens are minted; a replayed code gets the same rejection as an
// unknown one.
func (h *AuthHandler) LoginValidate(w http.ResponseWriter, r *http.Request) {
	var req LoginValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Email == "" || req.OTP == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Email and OTP are required", nil)
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired OTP", nil)
		return
	}

	otpRow, err := h.tokenRepo.GetValidOTP(user.ID, req.OTP, time.Now().Unix())
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if otpRow == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired OTP", nil)
		return
	}

	if err := h.tokenRepo.DeleteOTP(otpRow.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	authToken, err := h.tokenSvc.GenerateAuthToken(user.ID, user.UserType)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}
	if err := h.tokenRepo.Create(&models.Token{
		UserID:    &user.ID,
		Token:     authToken,
		Type:      models.TokenTypeAuth,
		ExpiresAt: time.Now().Add(h.jwtCfg.AuthTokenTTL).Unix(),
	}); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to store token", nil)
		return
	}

	response := map[string]interface{}{
		"message": "Login successful",
		"token":   authToken,
	}

	if req.RememberMe {
		rememberToken, err := h.tokenSvc.GenerateRememberToken(user.ID, user.UserType)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
			return
		}
		if err := h.tokenRepo.Create(&models.Token{
			UserID:    &user.ID,
			Token:     rememberToken,
			Type:      models.TokenTypeRemember,
			ExpiresAt: time.Now().Add(h.jwtCfg.RememberTokenTTL).Unix(),
		}); err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to store token", nil)
			return
		}
		response["remember_token"] = rememberToken
	}

	if err := h.userRepo.SetLoggedIn(user.ID, true); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "User not found", nil)
		return
	}

	loginOTP, err := token.NumericOTP()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate verification code", nil)
		return
	}
	if err := h.tokenRepo.CreateOTP(&models.OTPToken{
		UserID:    user.ID,
		OTP:       loginOTP,
		ExpiresAt: time.Now().Add(h.tokensCfg.LoginOTPTTL).Unix(),
	}); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to store verification code", nil)
		return
	}

	email.Dispatch(h.mailer, user.Email, "New Login Verification Code",
		fmt.Sprintf("Hello %s,\n\nYour new login verification code is: %s\n\nPlease note that this code will expire in 10 minutes.\n\nRegards,\nAuthbase Team", user.FirstName, loginOTP))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "New OTP sent to your email",
	})
}

// Logout deletes the presented auth token row. Rejected when the account was
// never logged in, matching the state machine rather than silently passing.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	rawToken, _ := r.Context().Value(apiContext.RawToken).(string)
	if rawToken == "" {
		parts := strings.Split(r.Header.Get("Authorization"), " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}
		rawToken = parts[1]
	}

	tokenRow, err := h.tokenRepo.GetByValue(rawToken, models.TokenTypeAuth)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if tokenRow == nil || tokenRow.UserID == nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid token", nil)
		return
	}

	user, err := h.userRepo.GetByID(*tokenRow.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid token", nil)
		return
	}
	if !user.IsLoggedIn {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "User is not logged in", nil)
		return
	}

	if err := h.tokenRepo.DeleteByValue(rawToken); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if err := h.userRepo.SetLoggedIn(user.ID, false); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Logout successful",
	})
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "User not found", nil)
		return
	}

	resetToken, err := token.NewResetToken()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate reset token", nil)
		return
	}

	if err := h.tokenRepo.Create(&models.Token{
		UserID:    &user.ID,
		Token:     resetToken,
		Type:      models.TokenTypePasswordReset,
		ExpiresAt: time.Now().Add(h.tokensCfg.ResetTokenTTL).Unix(),
	}); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to store reset token", nil)
		return
	}

	email.Dispatch(h.mailer, user.Email, "Password Reset Request",
		fmt.Sprintf("Hello %s,\n\nYou requested a password reset. Use the following token to reset your password: %s\n\nRegards,\nAuthbase Team", user.FirstName, resetToken))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Password reset token generated",
	})
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword consumes the reset token: it is deleted on success, so a
// second use fails exactly like an unknown token.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Token and new password are required", nil)
		return
	}

	tokenRow, err := h.tokenRepo.GetByValue(req.Token, models.TokenTypePasswordReset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if tokenRow == nil || tokenRow.UserID == nil || tokenRow.ExpiresAt <= time.Now().Unix() {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid or expired token", nil)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to hash password", nil)
		return
	}

	if err := h.userRepo.UpdatePassword(*tokenRow.UserID, string(hashedPassword)); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to reset password", nil)
		return
	}

	if err := h.tokenRepo.DeleteByID(tokenRow.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Password reset successful",
	})
}

// userProjection is the cached shape for validateUserId lookups.
type userProjection struct {
	ID         string `json:"id"`
	IsActive   bool   `json:"is_active"`
	IsLoggedIn bool   `json:"is_logged_in"`
}

func (h *AuthHandler) ValidateUser(w http.ResponseWriter, r *http.Request) {
	identity := r.Context().Value(apiContext.Developer).(*middleware.DeveloperIdentity)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	userID := params.ByName("user_id")

	appID := r.Header.Get("X-App-Id")
	if appID == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Organization ID is required", nil)
		return
	}

	linked, err := h.orgRepo.IsLinked(identity.ID, appID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if !linked {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Organization is not linked to this developer", nil)
		return
	}

	var cached userProjection
	cacheKey := cache.Key("validateUserId", userID)
	if h.cache.Get(r.Context(), cacheKey, &cached) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "User ID is valid",
		})
		return
	}

	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "User not found", nil)
		return
	}
	if !user.EmailVerified {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "User email not verified", nil)
		return
	}
	if !user.IsActive {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "User is not active", nil)
		return
	}
	if !user.IsLoggedIn {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "User is not logged in", nil)
		return
	}

	h.cache.Set(r.Context(), cacheKey, userProjection{
		ID:         user.ID,
		IsActive:   user.IsActive,
		IsLoggedIn: user.IsLoggedIn,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "User ID is valid",
	})
}
