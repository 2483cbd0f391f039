package repositories

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
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

func setupTestDB(t *testing.T) *sql.DB {
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
	return db
}
