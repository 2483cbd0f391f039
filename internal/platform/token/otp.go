package token

import (
	"crypto/rand"
	"encoding/base32"
	"time"

	"github.com/pquerna/otp/totp"
)

// NumericOTP produces a 6-digit code from a throwaway TOTP secret. The secret
// is never stored; the code itself is persisted and compared, so the algorithm
// is only a numeric-code generator here.
func NumericOTP() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)

	return totp.GenerateCode(secret, time.Now())
}
