// Package auth issues and verifies the HS256 access and refresh tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vivekprasad7/hc-youtube-backend/internal/common"
)

// now is the clock used for both signing and validation.
var now = time.Now

// Token kinds, carried in the "typ" claim. A token is only accepted by the
// parser for its own kind, even when both kinds share a secret.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Identity is the user data carried inside an access token.
type Identity struct {
	ID       string
	Email    string
	Username string
	FullName string
}

// AccessClaims is the access token payload.
type AccessClaims struct {
	jwt.RegisteredClaims
	Kind     string `json:"typ"`
	UserID   string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// RefreshClaims is the refresh token payload. The embedded jti makes every
// refresh token unique, even two minted for the same user in one second.
type RefreshClaims struct {
	jwt.RegisteredClaims
	Kind   string `json:"typ"`
	UserID string `json:"id"`
}

func registered(ttl time.Duration) jwt.RegisteredClaims {
	t := now()
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(t),
		ExpiresAt: jwt.NewNumericDate(t.Add(ttl)),
	}
}

// GenerateAccessToken signs identity with secret. The same identity, secret,
// ttl and clock reading always produce the same token.
func GenerateAccessToken(identity Identity, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: registered(ttl),
		Kind:             KindAccess,
		UserID:           identity.ID,
		Email:            identity.Email,
		Username:         identity.Username,
		FullName:         identity.FullName,
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return tokenString, nil
}

// GenerateRefreshToken signs a token carrying only userID.
func GenerateRefreshToken(userID string, secret []byte, ttl time.Duration) (string, error) {
	rc := registered(ttl)
	rc.ID = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: rc,
		Kind:             KindRefresh,
		UserID:           userID,
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return tokenString, nil
}

// ParseAccessToken verifies tokenString and returns the identity it carries.
func ParseAccessToken(tokenString string, secret []byte) (Identity, error) {
	claims := &AccessClaims{}
	if err := parse(tokenString, secret, claims); err != nil {
		return Identity{}, err
	}
	if claims.Kind != KindAccess || claims.UserID == "" {
		return Identity{}, common.ErrInvalidToken
	}

	return Identity{
		ID:       claims.UserID,
		Email:    claims.Email,
		Username: claims.Username,
		FullName: claims.FullName,
	}, nil
}

// ParseRefreshToken verifies tokenString and returns the user id it carries.
func ParseRefreshToken(tokenString string, secret []byte) (string, error) {
	claims := &RefreshClaims{}
	if err := parse(tokenString, secret, claims); err != nil {
		return "", err
	}
	if claims.Kind != KindRefresh || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}
	return claims.UserID, nil
}

// parse returns common.ErrTokenExpired for an otherwise valid token past its
// expiry and an error wrapping common.ErrInvalidToken for anything else.
func parse(tokenString string, secret []byte, claims jwt.Claims) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return common.ErrInvalidToken
	}
	return nil
}
