package services

import (
	"context"
	"errors"
	"strings"

	"github.com/vivekprasad7/hc-youtube-backend/internal/common"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/models"
	"go.opentelemetry.io/otel/attribute"
)

const (
	msgEmailTaken          = "Email is already in use"
	msgAvatarMissing       = "Avatar file is missing"
	msgCoverImageMissing   = "Cover image file is missing"
	msgAvatarUploadFailed  = "Error while uploading avatar"
	msgCoverUploadFailed   = "Error while uploading cover image"
	msgChannelNameMissing  = "username is missing"
	msgChannelDoesNotExist = "channel does not exist"
)

// UpdateAccountDetails replaces the full name and email of userID.
func (s *UserService) UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (_ *models.PublicUser, err error) {
	ctx, span := startSpan(ctx, "UserService.UpdateAccountDetails", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	if blank(fullName, email) {
		return nil, common.NewError(common.ErrValidation, msgAllFieldsRequired)
	}

	user, err := s.repomanager.Users().UpdateAccount(ctx, userID, strings.TrimSpace(fullName), models.NormalizeHandle(email))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrConflict):
			return nil, common.NewError(common.ErrConflict, msgEmailTaken)
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.NewError(common.ErrorNotFound, msgUserNotFound)
		}
		return nil, common.WrapError(common.ErrorInternal, msgInternal, err)
	}

	return user.Public(), nil
}

// UpdateAvatar uploads the staged file at localPath and points the user's
// avatar at it.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, localPath string) (_ *models.PublicUser, err error) {
	ctx, span := startSpan(ctx, "UserService.UpdateAvatar", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()
	defer s.discard(ctx, localPath)

	if localPath == "" {
		return nil, common.NewError(common.ErrValidation, msgAvatarMissing)
	}

	url, err := s.upload(ctx, localPath, msgAvatarUploadFailed)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users().UpdateAvatar(ctx, userID, url)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return user.Public(), nil
}

// UpdateCoverImage is UpdateAvatar for the cover image.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID, localPath string) (_ *models.PublicUser, err error) {
	ctx, span := startSpan(ctx, "UserService.UpdateCoverImage", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()
	defer s.discard(ctx, localPath)

	if localPath == "" {
		return nil, common.NewError(common.ErrValidation, msgCoverImageMissing)
	}

	url, err := s.upload(ctx, localPath, msgCoverUploadFailed)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users().UpdateCoverImage(ctx, userID, url)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return user.Public(), nil
}

// GetChannelProfile returns the channel page of username as seen by viewerID.
func (s *UserService) GetChannelProfile(ctx context.Context, username, viewerID string) (_ *models.ChannelProfile, err error) {
	ctx, span := startSpan(ctx, "UserService.GetChannelProfile", attribute.String("channel.username", username))
	defer func() { endSpan(span, err) }()

	username = models.NormalizeHandle(username)
	if username == "" {
		return nil, common.NewError(common.ErrValidation, msgChannelNameMissing)
	}

	profile, err := s.repomanager.Users().ChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, msgChannelDoesNotExist)
		}
		return nil, common.WrapError(common.ErrorInternal, msgInternal, err)
	}
	return profile, nil
}

// GetWatchHistory lists the videos userID watched, oldest first.
func (s *UserService) GetWatchHistory(ctx context.Context, userID string) (_ []models.WatchedVideo, err error) {
	ctx, span := startSpan(ctx, "UserService.GetWatchHistory", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	history, err := s.repomanager.Users().WatchHistory(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, msgUserNotFound)
		}
		return nil, common.WrapError(common.ErrorInternal, msgInternal, err)
	}
	if history == nil {
		history = []models.WatchedVideo{}
	}
	return history, nil
}

func (s *UserService) upload(ctx context.Context, localPath, failMsg string) (string, error) {
	asset, err := s.uploader.Upload(ctx, localPath)
	if err != nil || asset == nil || asset.URL == "" {
		return "", common.WrapError(common.ErrUpload, failMsg, err)
	}
	return asset.URL, nil
}

func mapLookupErr(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NewError(common.ErrorNotFound, msgUserNotFound)
	}
	return common.WrapError(common.ErrorInternal, msgInternal, err)
}
