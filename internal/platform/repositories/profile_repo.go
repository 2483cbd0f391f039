package repositories

import (
	"database/sql"
	"time"

	"authbase/internal/platform/models"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) CreateUserProfileTx(tx *sql.Tx, p *models.UserProfile) error {
	_, err := tx.Exec(`
		INSERT INTO user_profiles (user_id, developer_id, first_name, last_name, phone_number, address, profile_picture_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.UserID, p.DeveloperID, p.FirstName, p.LastName, p.PhoneNumber, p.Address, p.ProfilePictureURL, p.CreatedAt, p.UpdatedAt)
	return err
}

// GetUserProfile returns the profile with the owning account's email joined in.
func (r *ProfileRepository) GetUserProfile(userID string) (*models.UserProfile, string, error) {
	p := &models.UserProfile{}
	var email string
	err := r.db.QueryRow(`
		SELECT p.user_id, p.developer_id, p.first_name, p.last_name, p.phone_number, p.address, p.profile_picture_url, p.created_at, p.updated_at, u.email
		FROM user_profiles p JOIN users u ON u.id = p.user_id
		WHERE p.user_id = ?
	`, userID).Scan(&p.UserID, &p.DeveloperID, &p.FirstName, &p.LastName, &p.PhoneNumber, &p.Address,
		&p.ProfilePictureURL, &p.CreatedAt, &p.UpdatedAt, &email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", nil
		}
		return nil, "", err
	}
	return p, email, nil
}

func (r *ProfileRepository) UpdateUserProfile(p *models.UserProfile) error {
	_, err := r.db.Exec(`
		UPDATE user_profiles
		SET first_name = ?, last_name = ?, phone_number = ?, address = ?, profile_picture_url = ?, updated_at = ?
		WHERE user_id = ?
	`, p.FirstName, p.LastName, p.PhoneNumber, p.Address, p.ProfilePictureURL, time.Now().Unix(), p.UserID)
	return err
}

func (r *ProfileRepository) DeleteUserProfile(userID string) error {
	_, err := r.db.Exec(`DELETE FROM user_profiles WHERE user_id = ?`, userID)
	return err
}

func (r *ProfileRepository) CreateDeveloperProfile(p *models.DeveloperProfile) error {
	_, err := r.db.Exec(`
		INSERT INTO developer_profiles (developer_id, name, phone_number, address, profile_picture_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.DeveloperID, p.Name, p.PhoneNumber, p.Address, p.ProfilePictureURL, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *ProfileRepository) GetDeveloperProfile(developerID string) (*models.DeveloperProfile, string, error) {
	p := &models.DeveloperProfile{}
	var email string
	err := r.db.QueryRow(`
		SELECT p.developer_id, p.name, p.phone_number, p.address, p.profile_picture_url, p.created_at, p.updated_at, p.deleted_at, d.email
		FROM developer_profiles p JOIN developers d ON d.id = p.developer_id
		WHERE p.developer_id = ? AND p.deleted_at IS NULL
	`, developerID).Scan(&p.DeveloperID, &p.Name, &p.PhoneNumber, &p.Address, &p.ProfilePictureURL,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt, &email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", nil
		}
		return nil, "", err
	}
	return p, email, nil
}

func (r *ProfileRepository) UpdateDeveloperProfile(p *models.DeveloperProfile) error {
	_, err := r.db.Exec(`
		UPDATE developer_profiles
		SET name = ?, phone_number = ?, address = ?, profile_picture_url = ?, updated_at = ?
		WHERE developer_id = ?
	`, p.Name, p.PhoneNumber, p.Address, p.ProfilePictureURL, time.Now().Unix(), p.DeveloperID)
	return err
}

func (r *ProfileRepository) SoftDeleteDeveloperProfile(developerID string, ts int64) error {
	_, err := r.db.Exec(`UPDATE developer_profiles SET deleted_at = ?, updated_at = ? WHERE developer_id = ?`,
		ts, ts, developerID)
	return err
}

func (r *ProfileRepository) DeleteDeveloperProfile(developerID string) error {
	_, err := r.db.Exec(`DELETE FROM developer_profiles WHERE developer_id = ?`, developerID)
	return err
}
