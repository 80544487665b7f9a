// Package models defines the server-side data models shared by the
// repositories, services and HTTP layer.
package models

import (
	"strings"
	"time"
)

// User is a stored account. PasswordHash and RefreshToken never leave the
// server; use Public for anything sent to clients.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	Avatar       string
	CoverImage   string
	PasswordHash string
	// RefreshToken is the single active refresh token, "" when logged out.
	RefreshToken string
	// WatchHistory holds video ids, oldest first.
	WatchHistory []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the sanitized projection of User.
type PublicUser struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"coverImage"`
	WatchHistory []string  `json:"watchHistory"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public returns the client-safe view of u.
func (u *User) Public() *PublicUser {
	history := make([]string, len(u.WatchHistory))
	copy(history, u.WatchHistory)

	return &PublicUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		Avatar:       u.Avatar,
		CoverImage:   u.CoverImage,
		WatchHistory: history,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// Normalize trims the profile fields and lower-cases username and email.
func (u *User) Normalize() {
	u.Username = NormalizeHandle(u.Username)
	u.Email = NormalizeHandle(u.Email)
	u.FullName = strings.TrimSpace(u.FullName)
}

// NormalizeHandle is the canonical form of a username or email.
func NormalizeHandle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PasswordHasher is the hashing capability SetPassword needs.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) (bool, error)
}

// SetPassword stores a fresh hash of plain. When the current hash already
// encodes plain nothing is changed and changed is false.
func (u *User) SetPassword(h PasswordHasher, plain string) (changed bool, err error) {
	if u.PasswordHash != "" {
		same, err := h.Verify(u.PasswordHash, plain)
		if err == nil && same {
			return false, nil
		}
	}

	hash, err := h.Hash(plain)
	if err != nil {
		return false, err
	}
	u.PasswordHash = hash
	return true, nil
}
