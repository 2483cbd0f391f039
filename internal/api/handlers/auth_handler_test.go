package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"authbase/internal/platform/models"
)

func linkOrg(t *testing.T, env *testEnv, devID, appID, app string) {
	t.Helper()
	tx, err := env.orgRepo.BeginTx()
	if err != nil {
		t.Fatalf("Failed to begin tx: %v", err)
	}
	if err := env.orgRepo.CreateTx(tx, &models.Organization{AppID: appID, App: app, CreatedAt: time.Now().Unix()}); err != nil {
		t.Fatalf("Failed to create org: %v", err)
	}
	if err := env.orgRepo.LinkDeveloperTx(tx, devID, appID, "owner"); err != nil {
		t.Fatalf("Failed to link org: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)
	linkOrg(t, env, "dev_1", "org_1", "My App")

	t.Run("creates user and profile", func(t *testing.T) {
		rec := postJSON(t, env.auth.Signup, SignupRequest{
			AppID: "org_1", Email: "u@example.com", Password: "secret123",
			FirstName: "Ada", LastName: "L", UserType: "customer",
		}, withDeveloper("dev_1"))
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		user, err := env.userRepo.GetByEmail("u@example.com")
		if err != nil || user == nil {
			t.Fatalf("Expected user created, got %v, %v", user, err)
		}
		if user.EmailVerified {
			t.Error("New user must start unverified")
		}
		if user.DeveloperID != "dev_1" || user.OrganizationID != "org_1" {
			t.Errorf("Expected tenant scoping, got dev=%s org=%s", user.DeveloperID, user.OrganizationID)
		}

		profile, _, err := env.profileRepo.GetUserProfile(user.ID)
		if err != nil || profile == nil {
			t.Errorf("Expected profile row, got %v, %v", profile, err)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		rec := postJSON(t, env.auth.Signup, SignupRequest{
			AppID: "org_1", Email: "u@example.com", Password: "secret123",
		}, withDeveloper("dev_1"))
		if rec.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d", rec.Code)
		}
	})

	t.Run("unlinked organization rejected", func(t *testing.T) {
		rec := postJSON(t, env.auth.Signup, SignupRequest{
			AppID: "org_other", Email: "x@example.com", Password: "secret123",
		}, withDeveloper("dev_1"))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for unlinked org, got %d", rec.Code)
		}
	})
}

func TestUserConfirmEmail(t *testing.T) {
	env := newTestEnv(t)
	linkOrg(t, env, "dev_1", "org_1", "My App")

	rec := postJSON(t, env.auth.Signup, SignupRequest{
		AppID: "org_1", Email: "u@example.com", Password: "secret123", FirstName: "Ada",
	}, withDeveloper("dev_1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("Signup failed: %d", rec.Code)
	}

	rec = postJSON(t, env.auth.ConfirmEmail, ConfirmEmailRequest{
		Email: "u@example.com", Token: "000000",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for wrong code, got %d", rec.Code)
	}

	user, _ := env.userRepo.GetByEmail("u@example.com")
	rec = postJSON(t, env.auth.ConfirmEmail, ConfirmEmailRequest{
		Email: "u@example.com", Token: *user.EmailVerificationToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	user, _ = env.userRepo.GetByEmail("u@example.com")
	if !user.EmailVerified {
		t.Error("Expected user verified")
	}
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	createVerifiedUser(t, env, "usr_1", "u@example.com", "secret123")

	t.Run("unknown email", func(t *testing.T) {
		rec := postJSON(t, env.auth.Login, LoginRequest{Email: "nobody@example.com", Password: "secret123"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := postJSON(t, env.auth.Login, LoginRequest{Email: "u@example.com", Password: "wrong"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
		// Same message for unknown email and bad password.
		body := decodeBody(t, rec)
		if body["message"] != "Invalid email or password" {
			t.Errorf("Expected indistinct rejection, got %v", body["message"])
		}
	})

	t.Run("valid credentials mint OTP, not session", func(t *testing.T) {
		rec := postJSON(t, env.auth.Login, LoginRequest{Email: "u@example.com", Password: "secret123"})
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if _, hasToken := body["token"]; hasToken {
			t.Error("Login must not issue a session before OTP validation")
		}
		if storedOTP(t, env, "usr_1") == "" {
			t.Error("Expected an OTP row for the user")
		}
	})

	t.Run("validate consumes OTP and issues session", func(t *testing.T) {
		otp := storedOTP(t, env, "usr_1")
		rec := postJSON(t, env.auth.LoginValidate, LoginValidateRequest{
			Email: "u@example.com", OTP: otp,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		body := decodeBody(t, rec)
		tokenString, _ := body["token"].(string)
		if tokenString == "" {
			t.Fatal("Expected session token")
		}
		claims, err := env.tokenSvc.Validate(tokenString)
		if err != nil || claims.UserID != "usr_1" {
			t.Errorf("Expected valid session for usr_1, got %v, %v", claims, err)
		}

		user, _ := env.userRepo.GetByID("usr_1")
		if !user.IsLoggedIn {
			t.Error("Expected user flagged logged in")
		}

		// Replay fails: the code was consumed.
		rec = postJSON(t, env.auth.LoginValidate, LoginValidateRequest{
			Email: "u@example.com", OTP: otp,
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 on OTP replay, got %d", rec.Code)
		}
	})
}

func TestLoginUnverifiedEmail(t *testing.T) {
	env := newTestEnv(t)
	linkOrg(t, env, "dev_1", "org_1", "My App")
	rec := postJSON(t, env.auth.Signup, SignupRequest{
		AppID: "org_1", Email: "u@example.com", Password: "secret123",
	}, withDeveloper("dev_1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("Signup failed: %d", rec.Code)
	}

	rec = postJSON(t, env.auth.Login, LoginRequest{Email: "u@example.com", Password: "secret123"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for unverified email, got %d", rec.Code)
	}
}

func TestLoginValidateExpiredOTP(t *testing.T) {
	env := newTestEnv(t)
	createVerifiedUser(t, env, "usr_1", "u@example.com", "secret123")

	if err := env.tokenRepo.CreateOTP(&models.OTPToken{
		UserID:    "usr_1",
		OTP:       "123456",
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}); err != nil {
		t.Fatalf("Failed to create OTP: %v", err)
	}

	rec := postJSON(t, env.auth.LoginValidate, LoginValidateRequest{
		Email: "u@example.com", OTP: "123456",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for expired OTP, got %d", rec.Code)
	}
	// Expired and wrong codes are indistinguishable.
	body := decodeBody(t, rec)
	if body["message"] != "Invalid or expired OTP" {
		t.Errorf("Expected indistinct rejection, got %v", body["message"])
	}
}

func TestLoginValidateRememberMe(t *testing.T) {
	env := newTestEnv(t)
	createVerifiedUser(t, env, "usr_1", "u@example.com", "secret123")

	rec := postJSON(t, env.auth.Login, LoginRequest{Email: "u@example.com", Password: "secret123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Login failed: %d", rec.Code)
	}

	rec = postJSON(t, env.auth.LoginValidate, LoginValidateRequest{
		Email: "u@example.com", OTP: storedOTP(t, env, "usr_1"), RememberMe: true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	rememberToken, _ := body["remember_token"].(string)
	if rememberToken == "" {
		t.Fatal("Expected remember_token with remember_me")
	}

	row, err := env.tokenRepo.GetByValue(rememberToken, models.TokenTypeRemember)
	if err != nil || row == nil {
		t.Fatalf("Expected persisted remember token row, got %v, %v", row, err)
	}
	wantExpiry := time.Now().Add(30 * 24 * time.Hour).Unix()
	if row.ExpiresAt < wantExpiry-60 || row.ExpiresAt > wantExpiry+60 {
		t.Errorf("Expected ~30 day remember expiry, got %d", row.ExpiresAt)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	createVerifiedUser(t, env, "usr_1", "u@example.com", "secret123")

	rec := postJSON(t, env.auth.Login, LoginRequest{Email: "u@example.com", Password: "secret123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Login failed: %d", rec.Code)
	}
	rec = postJSON(t, env.auth.LoginValidate, LoginValidateRequest{
		Email: "u@example.com", OTP: storedOTP(t, env, "usr_1"),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("LoginValidate failed: %d", rec.Code)
	}
	tokenString := decodeBody(t, rec)["token"].(string)

	withBearer := func(r *http.Request) *http.Request {
		r.Header.Set("Authorization", "Bearer "+tokenString)
		return r
	}

	rec = postJSON(t, env.auth.Logout, struct{}{}, withBearer)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	user, _ := env.userRepo.GetByID("usr_1")
	if user.IsLoggedIn {
		t.Error("Expected user logged out")
	}

	// The token row is gone; a second logout is an invalid token.
	rec = postJSON(t, env.auth.Logout, struct{}{}, withBearer)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 on reused token, got %d", rec.Code)
	}
}

func TestPasswordResetSingleUse(t *testing.T) {
	env := newTestEnv(t)
	createVerifiedUser(t, env, "usr_1", "u@example.com", "secret123")

	rec := postJSON(t, env.auth.ForgotPassword, ForgotPasswordRequest{Email: "u@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resetToken string
	err := env.db.QueryRow(`SELECT token FROM tokens WHERE user_id = ? AND type = 'password_reset'`, "usr_1").Scan(&resetToken)
	if err != nil {
		t.Fatalf("Expected stored reset token: %v", err)
	}

	rec = postJSON(t, env.auth.ResetPassword, ResetPasswordRequest{
		Token: resetToken, NewPassword: "newsecret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// New password works, old one doesn't.
	rec = postJSON(t, env.auth.Login, LoginRequest{Email: "u@example.com", Password: "newsecret"})
	if rec.Code != http.StatusOK {
		t.Errorf("Expected login with new password, got %d", rec.Code)
	}
	rec = postJSON(t, env.auth.Login, LoginRequest{Email: "u@example.com", Password: "secret123"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected old password rejected, got %d", rec.Code)
	}

	// Token was consumed.
	rec = postJSON(t, env.auth.ResetPassword, ResetPasswordRequest{
		Token: resetToken, NewPassword: "another",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 on token reuse, got %d", rec.Code)
	}
}

func TestValidateUser(t *testing.T) {
	env := newTestEnv(t)
	linkOrg(t, env, "dev_1", "org_1", "My App")
	createVerifiedUser(t, env, "usr_1", "u@example.com", "secret123")

	params := httprouter.Params{{Key: "user_id", Value: "usr_1"}}
	withAppID := func(r *http.Request) *http.Request {
		r.Header.Set("X-App-Id", "org_1")
		return r
	}

	t.Run("not logged in", func(t *testing.T) {
		rec := postJSON(t, env.auth.ValidateUser, struct{}{},
			withDeveloper("dev_1"), withParams(params), withAppID)
		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403 for logged-out user, got %d", rec.Code)
		}
	})

	t.Run("logged in", func(t *testing.T) {
		if err := env.userRepo.SetLoggedIn("usr_1", true); err != nil {
			t.Fatalf("Failed to set logged in: %v", err)
		}
		rec := postJSON(t, env.auth.ValidateUser, struct{}{},
			withDeveloper("dev_1"), withParams(params), withAppID)
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unlinked developer", func(t *testing.T) {
		rec := postJSON(t, env.auth.ValidateUser, struct{}{},
			withDeveloper("dev_other"), withParams(params), withAppID)
		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403 for unlinked developer, got %d", rec.Code)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := postJSON(t, env.auth.ValidateUser, struct{}{},
			withDeveloper("dev_1"), withParams(httprouter.Params{{Key: "user_id", Value: "usr_nope"}}), withAppID)
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})
}
