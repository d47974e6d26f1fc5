package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The signing key is injected once at startup. There is deliberately no
// built-in fallback: a process without JWT_SECRET must refuse to boot.
var signingKey []byte

// InitSigningKey installs the HMAC secret used to verify tokens.
func InitSigningKey(secret string) error {
	if secret == "" {
		return errors.New("JWT secret must not be empty")
	}
	signingKey = []byte(secret)
	return nil
}

type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken issues a token for the given user id. Session issuance lives
// in the auth service; this exists for tooling and tests.
func GenerateToken(userID, email string) (string, error) {
	if len(signingKey) == 0 {
		return "", errors.New("JWT signing key is not initialized")
	}
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken verifies the signature and expiry and returns the claims.
func ValidateToken(tokenStr string) (*Claims, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("JWT signing key is not initialized")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token is missing a subject")
	}
	return claims, nil
}
