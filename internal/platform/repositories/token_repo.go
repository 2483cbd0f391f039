package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"authbase/internal/platform/models"
)

type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(token *models.Token) error {
	if token.ID == "" {
		token.ID = "tok_" + uuid.NewString()
	}
	if token.CreatedAt == 0 {
		token.CreatedAt = time.Now().Unix()
	}
	_, err := r.db.Exec(`
		INSERT INTO tokens (id, user_id, developer_id, token, type, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, token.ID, token.UserID, token.DeveloperID, token.Token, token.Type, token.ExpiresAt, token.CreatedAt)
	return err
}

func (r *TokenRepository) GetByValue(value, tokenType string) (*models.Token, error) {
	token := &models.Token{}
	err := r.db.QueryRow(`
		SELECT id, user_id, developer_id, token, type, expires_at, created_at, deleted_at
		FROM tokens WHERE token = ? AND type = ? AND deleted_at IS NULL
	`, value, tokenType).Scan(&token.ID, &token.UserID, &token.DeveloperID, &token.Token, &token.Type,
		&token.ExpiresAt, &token.CreatedAt, &token.DeletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return token, nil
}

func (r *TokenRepository) DeleteByID(id string) error {
	_, err := r.db.Exec(`DELETE FROM tokens WHERE id = ?`, id)
	return err
}

func (r *TokenRepository) DeleteByValue(value string) error {
	_, err := r.db.Exec(`DELETE FROM tokens WHERE token = ?`, value)
	return err
}

func (r *TokenRepository) DeleteForUser(userID string) error {
	_, err := r.db.Exec(`DELETE FROM tokens WHERE user_id = ?`, userID)
	return err
}

func (r *TokenRepository) DeleteForDeveloper(developerID string) error {
	_, err := r.db.Exec(`DELETE FROM tokens WHERE developer_id = ?`, developerID)
	return err
}

func (r *TokenRepository) SoftDeleteForDeveloper(developerID string, ts int64) error {
	_, err := r.db.Exec(`UPDATE tokens SET deleted_at = ? WHERE developer_id = ?`, ts, developerID)
	return err
}

func (r *TokenRepository) CreateOTP(otp *models.OTPToken) error {
	if otp.ID == "" {
		otp.ID = "otp_" + uuid.NewString()
	}
	if otp.CreatedAt == 0 {
		otp.CreatedAt = time.Now().Unix()
	}
	_, err := r.db.Exec(`
		INSERT INTO otp_tokens (id, user_id, otp, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, otp.ID, otp.UserID, otp.OTP, otp.ExpiresAt, otp.CreatedAt)
	return err
}

// GetValidOTP matches a code for the user that has not passed its expiry.
// Unknown and expired codes are the same miss to the caller.
func (r *TokenRepository) GetValidOTP(userID, otp string, now int64) (*models.OTPToken, error) {
	row := &models.OTPToken{}
	err := r.db.QueryRow(`
		SELECT id, user_id, otp, expires_at, created_at
		FROM otp_tokens WHERE user_id = ? AND otp = ? AND expires_at > ?
	`, userID, otp, now).Scan(&row.ID, &row.UserID, &row.OTP, &row.ExpiresAt, &row.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return row, nil
}

func (r *TokenRepository) DeleteOTP(id string) error {
	_, err := r.db.Exec(`DELETE FROM otp_tokens WHERE id = ?`, id)
	return err
}

func (r *TokenRepository) DeleteOTPForUser(userID string) error {
	_, err := r.db.Exec(`DELETE FROM otp_tokens WHERE user_id = ?`, userID)
	return err
}
