package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	apiContext "authbase/internal/api/context"
	"authbase/internal/api/middleware"
	"authbase/internal/platform/cache"
	"authbase/internal/platform/config"
	"authbase/internal/platform/models"
	"authbase/internal/platform/repositories"
	"authbase/internal/platform/token"
)

const testSchema = `
CREATE TABLE developers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 0,
	email_verified INTEGER NOT NULL DEFAULT 0,
	email_verification_token TEXT,
	api_token TEXT UNIQUE,
	token_expires_at INTEGER,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	deleted_at INTEGER
);
CREATE TABLE organizations (
	app_id TEXT PRIMARY KEY,
	app TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL
);
CREATE TABLE developer_organizations (
	developer_id TEXT NOT NULL,
	app_id TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'owner',
	PRIMARY KEY (developer_id, app_id)
);
CREATE TABLE users (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	developer_id TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	user_type TEXT NOT NULL DEFAULT '',
	email_verified INTEGER NOT NULL DEFAULT 0,
	email_verification_token TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	is_logged_in INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE tokens (
	id TEXT PRIMARY KEY,
	user_id TEXT,
	developer_id TEXT,
	token TEXT NOT NULL,
	type TEXT NOT NULL,
	expires_at INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	deleted_at INTEGER
);
CREATE TABLE otp_tokens (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	otp TEXT NOT NULL,
	expires_at INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE user_profiles (
	user_id TEXT PRIMARY KEY,
	developer_id TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	phone_number TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	profile_picture_url TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE developer_profiles (
	developer_id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	phone_number TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	profile_picture_url TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	deleted_at INTEGER
);
`

// memStore is a JSON-roundtripping in-memory cache.Store.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Get(_ context.Context, key string, dest interface{}) bool {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (s *memStore) Set(_ context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
}

func (s *memStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

var _ cache.Store = (*memStore)(nil)

// fakeMailer records sends; Dispatch runs it on a goroutine so it must be
// race-safe.
type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	m.sent = append(m.sent, to)
	m.mu.Unlock()
	return nil
}

type testEnv struct {
	db          *sql.DB
	devRepo     *repositories.DeveloperRepository
	orgRepo     *repositories.OrganizationRepository
	userRepo    *repositories.UserRepository
	tokenRepo   *repositories.TokenRepository
	profileRepo *repositories.ProfileRepository
	cache       *memStore
	mailer      *fakeMailer
	tokenSvc    *token.Service
	jwtCfg      config.JWTConfig
	tokensCfg   config.TokensConfig

	developers *DeveloperHandler
	orgs       *OrgHandler
	auth       *AuthHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Every pooled connection to ":memory:" is a distinct database; pin to one.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	env := &testEnv{
		db:          db,
		devRepo:     repositories.NewDeveloperRepository(db),
		orgRepo:     repositories.NewOrganizationRepository(db),
		userRepo:    repositories.NewUserRepository(db),
		tokenRepo:   repositories.NewTokenRepository(db),
		profileRepo: repositories.NewProfileRepository(db),
		cache:       newMemStore(),
		mailer:      &fakeMailer{},
		jwtCfg: config.JWTConfig{
			Secret:           "test-secret",
			AuthTokenTTL:     time.Hour,
			RememberTokenTTL: 30 * 24 * time.Hour,
		},
		tokensCfg: config.TokensConfig{
			APITokenTTL:   30 * 24 * time.Hour,
			LoginOTPTTL:   10 * time.Minute,
			ResetTokenTTL: time.Hour,
		},
	}
	env.tokenSvc = token.NewService(env.jwtCfg)

	env.developers = NewDeveloperHandler(env.devRepo, env.profileRepo, env.cache, env.mailer, env.tokensCfg)
	env.orgs = NewOrgHandler(env.orgRepo, env.cache)
	env.auth = NewAuthHandler(env.userRepo, env.orgRepo, env.tokenRepo, env.profileRepo, env.devRepo,
		env.cache, env.mailer, env.tokenSvc, env.jwtCfg, env.tokensCfg)

	return env
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}, mutate ...func(*http.Request) *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}

	req := httptest.NewRequest("POST", "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		req = m(req)
	}

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func withDeveloper(id string) func(*http.Request) *http.Request {
	return func(r *http.Request) *http.Request {
		ctx := context.WithValue(r.Context(), apiContext.Developer, &middleware.DeveloperIdentity{ID: id})
		return r.WithContext(ctx)
	}
}

func withParams(params httprouter.Params) func(*http.Request) *http.Request {
	return func(r *http.Request) *http.Request {
		ctx := context.WithValue(r.Context(), apiContext.Params, params)
		return r.WithContext(ctx)
	}
}

// registerAndConfirm walks a developer through registration and email
// confirmation, returning its id and live API token.
func registerAndConfirm(t *testing.T, env *testEnv, emailAddr string) (string, string) {
	t.Helper()

	rec := postJSON(t, env.developers.Register, RegisterDeveloperRequest{
		Name: "Dev", Email: emailAddr, Password: "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Register failed: %d %s", rec.Code, rec.Body.String())
	}

	dev, err := env.devRepo.GetByEmail(emailAddr)
	if err != nil || dev == nil || dev.EmailVerificationToken == nil {
		t.Fatalf("Expected stored verification token, got %+v, %v", dev, err)
	}

	rec = postJSON(t, env.developers.Confirm, ConfirmDeveloperRequest{
		Email: emailAddr, Token: *dev.EmailVerificationToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Confirm failed: %d %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	apiToken, _ := body["api_token"].(string)
	if apiToken == "" {
		t.Fatal("Expected api_token in confirmation response")
	}
	return dev.ID, apiToken
}

// createVerifiedUser inserts a verified end user directly.
func createVerifiedUser(t *testing.T, env *testEnv, id, emailAddr, password string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now().Unix()
	tx, err := env.devRepo.BeginTx()
	if err != nil {
		t.Fatalf("Failed to begin tx: %v", err)
	}
	err = env.userRepo.CreateTx(tx, &models.User{
		ID:             id,
		OrganizationID: "org_test",
		DeveloperID:    "dev_test",
		Email:          emailAddr,
		PasswordHash:   string(hash),
		FirstName:      "Test",
		UserType:       "customer",
		EmailVerified:  true,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
}

func storedOTP(t *testing.T, env *testEnv, userID string) string {
	t.Helper()
	var otp string
	err := env.db.QueryRow(`SELECT otp FROM otp_tokens WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`, userID).Scan(&otp)
	if err != nil {
		t.Fatalf("Expected stored OTP for %s: %v", userID, err)
	}
	return otp
}
