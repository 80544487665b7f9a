package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/vivekprasad7/hc-youtube-backend/internal/common"
	"github.com/vivekprasad7/hc-youtube-backend/internal/filex"
	"github.com/vivekprasad7/hc-youtube-backend/internal/logging"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/auth"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/config"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/models"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/repositories/repomanager"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/repositories/users"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/storage"
	"go.opentelemetry.io/otel/attribute"
)

const (
	msgAllFieldsRequired  = "All fields are required"
	msgUserExists         = "User with email or username already exists"
	msgAvatarRequired     = "Avatar file is required"
	msgRegisterFailed     = "Something went wrong while registering the user"
	msgLoginIDRequired    = "Username or Email is required"
	msgUserNotFound       = "User does not exist"
	msgPasswordIncorrect  = "Password Incorrect"
	msgUnauthorized       = "unauthorized request"
	msgInvalidRefresh     = "invalid refresh token"
	msgRefreshReused      = "refresh token is expired or used"
	msgInvalidOldPassword = "Invalid old password"
	msgNewPasswordMissing = "New password is required"
	msgTokenIssueFailed   = "Something went wrong while generating access and refresh token"
	msgInternal           = "Something went wrong"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResult struct {
	User *models.PublicUser
	TokenPair
}

type RegisterInput struct {
	FullName string
	Email    string
	Username string
	Password string
}

// RegisterFiles are local paths of staged uploads. CoverImagePath may be "".
type RegisterFiles struct {
	AvatarPath     string
	CoverImagePath string
}

// LoginInput identifies the user by Username or Email; one is enough.
type LoginInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserService implements registration, the session token lifecycle and the
// profile operations on top of a RepositoryManager.
type UserService struct {
	repomanager                  repomanager.RepositoryManager
	hasher                       models.PasswordHasher
	uploader                     storage.Uploader
	log                          logging.Logger
	accessTokenSecret            []byte
	refreshTokenSecret           []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewUserService(m repomanager.RepositoryManager, hasher models.PasswordHasher, uploader storage.Uploader,
	cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		repomanager:                  m,
		hasher:                       hasher,
		uploader:                     uploader,
		log:                          log.With("component", "user_service"),
		accessTokenSecret:            []byte(cfg.AccessTokenSecret),
		refreshTokenSecret:           []byte(cfg.RefreshTokenSecret),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// discard removes staged upload files once they are no longer needed.
func (s *UserService) discard(ctx context.Context, paths ...string) {
	if err := filex.Remove(paths...); err != nil {
		s.log.Warn(ctx, "failed to remove staged file", "error", err)
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput, files RegisterFiles) (_ *models.PublicUser, err error) {
	ctx, span := startSpan(ctx, "UserService.Register", attribute.String("user.username", in.Username))
	defer func() { endSpan(span, err) }()
	defer s.discard(ctx, files.AvatarPath, files.CoverImagePath)

	if blank(in.FullName, in.Email, in.Username, in.Password) {
		return nil, common.NewError(common.ErrValidation, msgAllFieldsRequired)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		FullName: in.FullName,
	}
	user.Normalize()

	repo := s.repomanager.Users()

	_, err = repo.FindByUsernameOrEmail(ctx, user.Username, user.Email)
	switch {
	case err == nil:
		return nil, common.NewError(common.ErrConflict, msgUserExists)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, common.WrapError(common.ErrorInternal, msgRegisterFailed, err)
	}

	if files.AvatarPath == "" {
		return nil, common.NewError(common.ErrValidation, msgAvatarRequired)
	}

	user.Avatar, err = s.upload(ctx, files.AvatarPath, msgAvatarRequired)
	if err != nil {
		return nil, err
	}

	if files.CoverImagePath != "" {
		cover, err := s.uploader.Upload(ctx, files.CoverImagePath)
		switch {
		case err != nil:
			s.log.Warn(ctx, "cover image upload failed, skipping", "username", user.Username, "error", err)
		case cover != nil:
			user.CoverImage = cover.URL
		}
	}

	if _, err := user.SetPassword(s.hasher, in.Password); err != nil {
		return nil, common.WrapError(common.ErrorInternal, msgRegisterFailed, err)
	}

	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.NewError(common.ErrConflict, msgUserExists)
		}
		return nil, common.WrapError(common.ErrorInternal, msgRegisterFailed, err)
	}

	s.log.Info(ctx, "user registered", "user_id", created.ID, "username", created.Username)
	return created.Public(), nil
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (_ *LoginResult, err error) {
	ctx, span := startSpan(ctx, "UserService.Login")
	defer func() { endSpan(span, err) }()

	if blank(in.Username) && blank(in.Email) {
		return nil, common.NewError(common.ErrValidation, msgLoginIDRequired)
	}

	repo := s.repomanager.Users()

	user, err := repo.FindByUsernameOrEmail(ctx, models.NormalizeHandle(in.Username), models.NormalizeHandle(in.Email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, msgUserNotFound)
		}
		return nil, common.WrapError(common.ErrorInternal, msgInternal, err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, in.Password)
	if err != nil {
		return nil, common.WrapError(common.ErrorInternal, msgInternal, err)
	}
	if !ok {
		s.log.Info(ctx, "login rejected", "user_id", user.ID)
		return nil, common.NewError(common.ErrorUnauthorized, msgPasswordIncorrect)
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, err
	}

	if err := repo.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, common.WrapError(common.ErrorInternal, msgTokenIssueFailed, err)
	}
	user.RefreshToken = pair.RefreshToken

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{User: user.Public(), TokenPair: *pair}, nil
}

// Logout drops the stored refresh token. Access tokens already issued stay
// valid until they expire.
func (s *UserService) Logout(ctx context.Context, userID string) (err error) {
	ctx, span := startSpan(ctx, "UserService.Logout", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	err = s.repomanager.Users().UnsetRefreshToken(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return common.WrapError(common.ErrorInternal, msgInternal, err)
	}

	s.log.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// RefreshToken exchanges a valid, current refresh token for a new pair. The
// presented token stops working as soon as the swap succeeds.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (_ *TokenPair, err error) {
	ctx, span := startSpan(ctx, "UserService.RefreshToken")
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(refreshToken) == "" {
		return nil, common.NewError(common.ErrorUnauthorized, msgUnauthorized)
	}

	userID, err := auth.ParseRefreshToken(refreshToken, s.refreshTokenSecret)
	if err != nil {
		return nil, common.WrapError(common.ErrorUnauthorized, msgInvalidRefresh, err)
	}

	var tokenPair *TokenPair

	err = s.repomanager.WithinTx(ctx, func(ctx context.Context, repo users.Repository) error {
		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewError(common.ErrorUnauthorized, msgInvalidRefresh)
			}
			return common.WrapError(common.ErrorInternal, msgInternal, err)
		}

		if subtle.ConstantTimeCompare([]byte(refreshToken), []byte(user.RefreshToken)) != 1 {
			s.log.Warn(ctx, "stale refresh token presented", "user_id", user.ID)
			return common.WrapError(common.ErrorUnauthorized, msgRefreshReused, common.ErrRefreshTokenReused)
		}

		pair, err := s.generateTokenPair(user)
		if err != nil {
			return err
		}

		if err := repo.RotateRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken); err != nil {
			if errors.Is(err, common.ErrRefreshTokenReused) {
				s.log.Warn(ctx, "refresh token rotated concurrently", "user_id", user.ID)
				return common.WrapError(common.ErrorUnauthorized, msgRefreshReused, err)
			}
			return common.WrapError(common.ErrorInternal, msgTokenIssueFailed, err)
		}

		tokenPair = pair
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tokenPair, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (err error) {
	ctx, span := startSpan(ctx, "UserService.ChangePassword", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	if newPassword == "" {
		return common.NewError(common.ErrValidation, msgNewPasswordMissing)
	}

	return s.repomanager.WithinTx(ctx, func(ctx context.Context, repo users.Repository) error {
		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewError(common.ErrorNotFound, msgUserNotFound)
			}
			return common.WrapError(common.ErrorInternal, msgInternal, err)
		}

		ok, err := s.hasher.Verify(user.PasswordHash, oldPassword)
		if err != nil {
			return common.WrapError(common.ErrorInternal, msgInternal, err)
		}
		if !ok {
			return common.NewError(common.ErrorUnauthorized, msgInvalidOldPassword)
		}

		changed, err := user.SetPassword(s.hasher, newPassword)
		if err != nil {
			return common.WrapError(common.ErrorInternal, msgInternal, err)
		}
		if !changed {
			return nil
		}

		if err := repo.UpdatePasswordHash(ctx, user.ID, user.PasswordHash); err != nil {
			return common.WrapError(common.ErrorInternal, msgInternal, err)
		}

		s.log.Info(ctx, "password changed", "user_id", user.ID)
		return nil
	})
}

// Authenticate resolves an access token to the live user record. Deleted
// users fail even while their token is unexpired.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.PublicUser, error) {
	identity, err := auth.ParseAccessToken(accessToken, s.accessTokenSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users().FindByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}

	return user.Public(), nil
}

func (s *UserService) generateTokenPair(user *models.User) (*TokenPair, error) {
	accessToken, err := auth.GenerateAccessToken(auth.Identity{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
	}, s.accessTokenSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.WrapError(common.ErrorInternal, msgTokenIssueFailed, err)
	}

	refreshToken, err := auth.GenerateRefreshToken(user.ID, s.refreshTokenSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.WrapError(common.ErrorInternal, msgTokenIssueFailed, err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
