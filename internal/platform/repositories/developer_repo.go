package repositories

import (
	"database/sql"
	"time"

	"github.com/mattn/go-sqlite3"

	"authbase/internal/platform/models"
)

// IsUniqueViolation reports whether err is a sqlite unique-constraint error.
// The store's constraints are the concurrency control for create-if-absent.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

type DeveloperRepository struct {
	db *sql.DB
}

func NewDeveloperRepository(db *sql.DB) *DeveloperRepository {
	return &DeveloperRepository{db: db}
}

func (r *DeveloperRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

const developerColumns = `id, name, email, password_hash, is_active, email_verified, email_verification_token, api_token, token_expires_at, created_at, updated_at, deleted_at`

func scanDeveloper(row *sql.Row) (*models.Developer, error) {
	dev := &models.Developer{}
	err := row.Scan(&dev.ID, &dev.Name, &dev.Email, &dev.PasswordHash, &dev.IsActive, &dev.EmailVerified,
		&dev.EmailVerificationToken, &dev.APIToken, &dev.TokenExpiresAt, &dev.CreatedAt, &dev.UpdatedAt, &dev.DeletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return dev, nil
}

func (r *DeveloperRepository) Create(dev *models.Developer) error {
	_, err := r.db.Exec(`
		INSERT INTO developers (id, name, email, password_hash, is_active, email_verified, email_verification_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, dev.ID, dev.Name, dev.Email, dev.PasswordHash, dev.IsActive, dev.EmailVerified, dev.EmailVerificationToken, dev.CreatedAt, dev.UpdatedAt)
	return err
}

func (r *DeveloperRepository) GetByID(id string) (*models.Developer, error) {
	return scanDeveloper(r.db.QueryRow(`SELECT `+developerColumns+` FROM developers WHERE id = ?`, id))
}

func (r *DeveloperRepository) GetByEmail(email string) (*models.Developer, error) {
	return scanDeveloper(r.db.QueryRow(`SELECT `+developerColumns+` FROM developers WHERE email = ?`, email))
}

func (r *DeveloperRepository) GetByAPIToken(token string) (*models.Developer, error) {
	return scanDeveloper(r.db.QueryRow(`SELECT `+developerColumns+` FROM developers WHERE api_token = ?`, token))
}

// Activate marks the developer verified and active and installs its first API
// token. Called once on successful email confirmation.
func (r *DeveloperRepository) Activate(email, apiToken string, expiresAt int64) error {
	_, err := r.db.Exec(`
		UPDATE developers
		SET is_active = 1, email_verified = 1, email_verification_token = NULL,
		    api_token = ?, token_expires_at = ?, updated_at = ?
		WHERE email = ?
	`, apiToken, expiresAt, time.Now().Unix(), email)
	return err
}

func (r *DeveloperRepository) UpdateVerificationToken(email, token string) error {
	_, err := r.db.Exec(`UPDATE developers SET email_verification_token = ?, updated_at = ? WHERE email = ?`,
		token, time.Now().Unix(), email)
	return err
}

func (r *DeveloperRepository) UpdateAPIToken(id, apiToken string, expiresAt int64) error {
	_, err := r.db.Exec(`UPDATE developers SET api_token = ?, token_expires_at = ?, updated_at = ? WHERE id = ?`,
		apiToken, expiresAt, time.Now().Unix(), id)
	return err
}

func (r *DeveloperRepository) UpdatePassword(id, passwordHash string) error {
	_, err := r.db.Exec(`UPDATE developers SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().Unix(), id)
	return err
}

func (r *DeveloperRepository) SoftDelete(id string, ts int64) error {
	_, err := r.db.Exec(`UPDATE developers SET deleted_at = ?, is_active = 0, updated_at = ? WHERE id = ?`, ts, ts, id)
	return err
}

func (r *DeveloperRepository) HardDelete(id string) error {
	_, err := r.db.Exec(`DELETE FROM developers WHERE id = ?`, id)
	return err
}

// DeleteUnverifiedBefore removes developers that never confirmed their email
// within the grace period. Safe to re-run: already-deleted rows simply no
// longer match.
func (r *DeveloperRepository) DeleteUnverifiedBefore(cutoff int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM developers WHERE email_verified = 0 AND created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *DeveloperRepository) ListUnverifiedBetween(from, to int64) ([]*models.Developer, error) {
	rows, err := r.db.Query(`
		SELECT `+developerColumns+`
		FROM developers
		WHERE email_verified = 0 AND created_at >= ? AND created_at < ?
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devs []*models.Developer
	for rows.Next() {
		dev := &models.Developer{}
		if err := rows.Scan(&dev.ID, &dev.Name, &dev.Email, &dev.PasswordHash, &dev.IsActive, &dev.EmailVerified,
			&dev.EmailVerificationToken, &dev.APIToken, &dev.TokenExpiresAt, &dev.CreatedAt, &dev.UpdatedAt, &dev.DeletedAt); err != nil {
			return nil, err
		}
		devs = append(devs, dev)
	}
	return devs, rows.Err()
}

// ListSoftDeletedBefore returns developers soft-deleted at or before cutoff,
// used by the purge job as a safety net alongside the delayed queue.
func (r *DeveloperRepository) ListSoftDeletedBefore(cutoff int64) ([]*models.Developer, error) {
	rows, err := r.db.Query(`
		SELECT `+developerColumns+`
		FROM developers
		WHERE deleted_at IS NOT NULL AND deleted_at <= ?
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devs []*models.Developer
	for rows.Next() {
		dev := &models.Developer{}
		if err := rows.Scan(&dev.ID, &dev.Name, &dev.Email, &dev.PasswordHash, &dev.IsActive, &dev.EmailVerified,
			&dev.EmailVerificationToken, &dev.APIToken, &dev.TokenExpiresAt, &dev.CreatedAt, &dev.UpdatedAt, &dev.DeletedAt); err != nil {
			return nil, err
		}
		devs = append(devs, dev)
	}
	return devs, rows.Err()
}
