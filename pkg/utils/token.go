package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenClaims carries the owning user's id inside a signed session token.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// SignToken mints an HS256 session token for the given user id. Tokens carry
// no expiry; a session ends when the token is removed from the user's token
// list, not when the signature lapses.
func SignToken(userID string, secret []byte) (string, error) {
	// Random jti keeps two logins in the same second from minting the
	// same token string; single-token logout depends on uniqueness.
	jti := make([]byte, 12)
	if _, err := rand.Read(jti); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       hex.EncodeToString(jti),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	})
	return token.SignedString(secret)
}

// VerifyToken checks the signature and returns the embedded user id.
func VerifyToken(tokenString string, secret []byte) (string, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
