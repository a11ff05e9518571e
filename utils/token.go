package authUtils

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// SessionTTL is the fixed validity window of an issued session token.
const SessionTTL = 7 * 24 * time.Hour

// GenerateToken signs a session token for the given user ID and role.
func GenerateToken(secret, userID, role string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT secret is not configured")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(SessionTTL).Unix(),
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
