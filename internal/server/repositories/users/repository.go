// Package users stores user accounts, their refresh token and the
// channel/watch-history views derived from them.
package users

import (
	"context"

	"github.com/vivekprasad7/hc-youtube-backend/internal/server/models"
)

// Repository is implemented by every storage backend.
//
// Lookups return common.ErrorNotFound when nothing matches. Writes that
// break username/email uniqueness return common.ErrConflict.
type Repository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindByUsernameOrEmail matches either field; empty arguments never match.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)

	SetRefreshToken(ctx context.Context, id, token string) error
	UnsetRefreshToken(ctx context.Context, id string) error
	// RotateRefreshToken replaces expected with next only if expected is
	// still the stored token; otherwise it returns common.ErrRefreshTokenReused.
	RotateRefreshToken(ctx context.Context, id, expected, next string) error

	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateAccount(ctx context.Context, id, fullName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id, url string) (*models.User, error)
	UpdateCoverImage(ctx context.Context, id, url string) (*models.User, error)

	ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, id string) ([]models.WatchedVideo, error)
}
