package repositories

import (
	"database/sql"

	"authbase/internal/platform/models"
)

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

func (r *OrganizationRepository) CreateTx(tx *sql.Tx, org *models.Organization) error {
	_, err := tx.Exec(`INSERT INTO organizations (app_id, app, created_at) VALUES (?, ?, ?)`,
		org.AppID, org.App, org.CreatedAt)
	return err
}

func (r *OrganizationRepository) LinkDeveloperTx(tx *sql.Tx, developerID, appID, role string) error {
	_, err := tx.Exec(`INSERT INTO developer_organizations (developer_id, app_id, role) VALUES (?, ?, ?)`,
		developerID, appID, role)
	return err
}

func (r *OrganizationRepository) GetByAppID(appID string) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRow(`SELECT app_id, app, created_at FROM organizations WHERE app_id = ?`, appID).
		Scan(&org.AppID, &org.App, &org.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

// IsLinked reports whether a membership row ties the developer to the
// organization. Cross-tenant checks hinge on this.
func (r *OrganizationRepository) IsLinked(developerID, appID string) (bool, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(1) FROM developer_organizations WHERE developer_id = ? AND app_id = ?`,
		developerID, appID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
