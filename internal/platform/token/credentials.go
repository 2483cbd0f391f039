package token

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewAPIToken returns an opaque developer credential. UUIDv4 gives 122 bits
// of entropy and a database-unique value.
func NewAPIToken() string {
	return uuid.NewString()
}

// NewResetToken returns 32 bytes of randomness, hex-encoded.
func NewResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
