package models

type Developer struct {
	ID                     string  `json:"id"`
	Name                   string  `json:"name"`
	Email                  string  `json:"email"`
	PasswordHash           string  `json:"-"`
	IsActive               bool    `json:"is_active"`
	EmailVerified          bool    `json:"email_verified"`
	EmailVerificationToken *string `json:"-"`
	APIToken               *string `json:"api_token,omitempty"`
	TokenExpiresAt         *int64  `json:"token_expires_at,omitempty"`
	CreatedAt              int64   `json:"created_at"`
	UpdatedAt              int64   `json:"updated_at"`
	DeletedAt              *int64  `json:"deleted_at,omitempty"`
}

type Organization struct {
	AppID     string `json:"app_id"`
	App       string `json:"app"`
	CreatedAt int64  `json:"created_at"`
}

// DeveloperOrganization links a developer to an organization it owns or works
// under. An organization is usable by a developer only if this row exists.
type DeveloperOrganization struct {
	DeveloperID string `json:"developer_id"`
	AppID       string `json:"app_id"`
	Role        string `json:"role"`
}

type User struct {
	ID                     string  `json:"id"`
	OrganizationID         string  `json:"organization_id"`
	DeveloperID            string  `json:"developer_id"`
	Email                  string  `json:"email"`
	PasswordHash           string  `json:"-"`
	FirstName              string  `json:"first_name"`
	LastName               string  `json:"last_name"`
	UserType               string  `json:"user_type"`
	EmailVerified          bool    `json:"email_verified"`
	EmailVerificationToken *string `json:"-"`
	IsActive               bool    `json:"is_active"`
	IsLoggedIn             bool    `json:"is_logged_in"`
	CreatedAt              int64   `json:"created_at"`
	UpdatedAt              int64   `json:"updated_at"`
}

type UserProfile struct {
	UserID            string `json:"user_id"`
	DeveloperID       string `json:"developer_id"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	PhoneNumber       string `json:"phone_number,omitempty"`
	Address           string `json:"address,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	CreatedAt         int64  `json:"created_at"`
	UpdatedAt         int64  `json:"updated_at"`
}

type DeveloperProfile struct {
	DeveloperID       string `json:"developer_id"`
	Name              string `json:"name"`
	PhoneNumber       string `json:"phone_number,omitempty"`
	Address           string `json:"address,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	CreatedAt         int64  `json:"created_at"`
	UpdatedAt         int64  `json:"updated_at"`
	DeletedAt         *int64 `json:"deleted_at,omitempty"`
}
