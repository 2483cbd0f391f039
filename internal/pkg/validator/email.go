package validator

import (
	"errors"
	"net/mail"
	"strings"
)

// ValidEmail rejects anything net/mail cannot parse as a bare address.
func ValidEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("email is required")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("invalid email format")
	}
	if addr.Address != email {
		return errors.New("invalid email format")
	}

	return nil
}
