package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"authbase/internal/platform/config"
)

type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service mints and validates signed session credentials. Auth tokens are
// short-lived; remember tokens carry the same claims with a long expiry.
type Service struct {
	config config.JWTConfig
}

func NewService(cfg config.JWTConfig) *Service {
	return &Service{config: cfg}
}

func (s *Service) GenerateAuthToken(userID, role string) (string, error) {
	return s.generate(userID, role, s.config.AuthTokenTTL)
}

func (s *Service) GenerateRememberToken(userID, role string) (string, error) {
	return s.generate(userID, role, s.config.RememberTokenTTL)
}

func (s *Service) generate(userID, role string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "authbase",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

var ErrInvalidToken = errors.New("invalid or expired token")

// Validate parses and verifies a session token. Malformed, forged and expired
// tokens all come back as ErrInvalidToken so callers cannot tell them apart.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
