package repositories

import (
	"database/sql"
	"time"

	"authbase/internal/platform/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, organization_id, developer_id, email, password_hash, first_name, last_name, user_type, email_verified, email_verification_token, is_active, is_logged_in, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.OrganizationID, &user.DeveloperID, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.UserType, &user.EmailVerified, &user.EmailVerificationToken,
		&user.IsActive, &user.IsLoggedIn, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) CreateTx(tx *sql.Tx, user *models.User) error {
	_, err := tx.Exec(`
		INSERT INTO users (id, organization_id, developer_id, email, password_hash, first_name, last_name, user_type, email_verified, email_verification_token, is_active, is_logged_in, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.OrganizationID, user.DeveloperID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.UserType, user.EmailVerified, user.EmailVerificationToken, user.IsActive, user.IsLoggedIn, user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	return scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *UserRepository) SetEmailVerified(email string) error {
	_, err := r.db.Exec(`UPDATE users SET email_verified = 1, email_verification_token = NULL, updated_at = ? WHERE email = ?`,
		time.Now().Unix(), email)
	return err
}

func (r *UserRepository) UpdateVerificationToken(email, token string) error {
	_, err := r.db.Exec(`UPDATE users SET email_verification_token = ?, updated_at = ? WHERE email = ?`,
		token, time.Now().Unix(), email)
	return err
}

func (r *UserRepository) SetLoggedIn(id string, loggedIn bool) error {
	_, err := r.db.Exec(`UPDATE users SET is_logged_in = ?, updated_at = ? WHERE id = ?`,
		loggedIn, time.Now().Unix(), id)
	return err
}

func (r *UserRepository) UpdatePassword(id, passwordHash string) error {
	_, err := r.db.Exec(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().Unix(), id)
	return err
}

func (r *UserRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	return err
}

func (r *UserRepository) DeleteUnverifiedBefore(cutoff int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM users WHERE email_verified = 0 AND created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *UserRepository) ListUnverifiedBetween(from, to int64) ([]*models.User, error) {
	rows, err := r.db.Query(`
		SELECT `+userColumns+`
		FROM users
		WHERE email_verified = 0 AND created_at >= ? AND created_at < ?
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.OrganizationID, &user.DeveloperID, &user.Email, &user.PasswordHash,
			&user.FirstName, &user.LastName, &user.UserType, &user.EmailVerified, &user.EmailVerificationToken,
			&user.IsActive, &user.IsLoggedIn, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
