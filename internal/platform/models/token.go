package models

const (
	TokenTypeAuth          = "auth"
	TokenTypeRemember      = "remember"
	TokenTypePasswordReset = "password_reset"
)

// Token holds persisted session, remember and password-reset credentials.
// Exactly one of UserID / DeveloperID is set.
type Token struct {
	ID          string  `json:"id"`
	UserID      *string `json:"user_id,omitempty"`
	DeveloperID *string `json:"developer_id,omitempty"`
	Token       string  `json:"-"`
	Type        string  `json:"type"`
	ExpiresAt   int64   `json:"expires_at"`
	CreatedAt   int64   `json:"created_at"`
	DeletedAt   *int64  `json:"deleted_at,omitempty"`
}

// OTPToken is a second-factor login code. Short-lived, compared by value.
type OTPToken struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	OTP       string `json:"-"`
	ExpiresAt int64  `json:"expires_at"`
	CreatedAt int64  `json:"created_at"`
}
