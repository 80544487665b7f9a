package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vivekprasad7/hc-youtube-backend/internal/common"
	"github.com/vivekprasad7/hc-youtube-backend/internal/filex"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/models"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/services"
)

const (
	msgInvalidBody     = "invalid request body"
	msgInvalidFormData = "invalid form data"

	msgImageTypeNotAllowed = "Only JPEG, PNG, GIF or WebP images are allowed"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return common.WrapError(common.ErrValidation, msgInvalidBody, err)
	}
	return nil
}

// isForm reports whether the body is urlencoded or multipart form data.
func isForm(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

// parseForm reads a multipart (or urlencoded) body of at most maxUploadBytes.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	err := r.ParseMultipartForm(s.maxUploadBytes)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return common.WrapError(common.ErrValidation, msgInvalidFormData, err)
	}
	return nil
}

// stageFile copies the uploaded form file field into the upload directory.
// A missing field yields "".
func (s *Server) stageFile(r *http.Request, field string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", common.WrapError(common.ErrValidation, msgInvalidFormData, err)
	}
	defer file.Close()

	path, err := filex.Stage(s.uploadDir, file)
	if err != nil {
		if errors.Is(err, filex.ErrUnsupportedType) {
			return "", common.WrapError(common.ErrValidation, msgImageTypeNotAllowed, err)
		}
		return "", common.WrapError(common.ErrorInternal, msgSomethingWentWrong, err)
	}
	return path, nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.parseForm(w, r); err != nil {
		fail(ctx, w, s.logger, err)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	avatar, err := s.stageFile(r, "avatar")
	if err != nil {
		fail(ctx, w, s.logger, err)
		return
	}
	cover, err := s.stageFile(r, "coverImage")
	if err != nil {
		_ = filex.Remove(avatar)
		fail(ctx, w, s.logger, err)
		return
	}

	user, err := s.users.Register(ctx, services.RegisterInput{
		FullName: r.FormValue("fullName"),
		Email:    r.FormValue("email"),
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}, services.RegisterFiles{AvatarPath: avatar, CoverImagePath: cover})
	if err != nil {
		fail(ctx, w, s.logger, err)
		return
	}

	respond(w, http.StatusCreated, user, "User Registered Successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in services.LoginInput
	if isForm(r) {
		if err := s.parseForm(w, r); err != nil {
			fail(ctx, w, s.logger, err)
			return
		}
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}
		in = services.LoginInput{
			Username: r.FormValue("username"),
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		}
	} else if err := decodeJSON(r, &in); err != nil {
		fail(ctx, w, s.logger, err)
		return
	}

	res, err := s.users.Login(ctx, in)
	if err != nil {
		fail(ctx, w, s.logger, err)
		return
	}

	s.setAuthCookies(w, res.TokenPair)
	respond(w, http.StatusOK, map[string]any{
		"user":         res.User,
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
	}, "User logged in Successfully")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	if err := s.users.Logout(ctx, user.ID); err != nil {
		fail(ctx, w, s.logger, err)
		return
	}

	s.clearAuthCookies(w)
	respond(w, http.StatusOK, nil, "User Logged Out")
}

// handleRefreshToken takes the refresh token from its cookie or, failing
// that, from the JSON body.
func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := cookieValue(r, common.RefreshTokenCookieName)
	if token == "" {
		var body refreshRequest
		if err := decodeJSON(r, &body); err != nil {
			fail(ctx, w, s.logger, err)
			return
		}
		token = body.RefreshToken
	}

	pair, err := s.users.RefreshToken(ctx, token)
	if err != nil {
		fail(ctx, w, s.logger, err)
		return
	}

	s.setAuthCookies(w, *pair)
	respond(w, http.StatusOK, pair, "Access token refreshed")
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	var body changePasswordRequest
	if err := decodeJSON(r, &body); err != nil {
		fail(ctx, w, s.logger, err)
		return
	}

	if err := s.users.ChangePassword(ctx, user.ID, body.OldPassword, body.NewPassword); err != nil {
		fail(ctx, w, s.logger, err)
		return
	}

	respond(w, http.StatusOK, nil, "Password changed successfully")
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	respond(w, http.StatusOK, user, "Current user fetched successfully")
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	var body updateAccountRequest
	if err := decodeJSON(r, &body); err != nil {
		fail(ctx, w, s.logger, err)
		return
	}

	updated, err := s.users.UpdateAccountDetails(ctx, user.ID, body.FullName, body.Email)
	if err != nil {
		fail(ctx, w, s.logger, err)
		return
	}

	respond(w, http.StatusOK, updated, "Account details updated successfully")
}

// handleImage stages the multipart file field and hands it to update.
func (s *Server) handleImage(field, message string,
	update func(ctx context.Context, userID, localPath string) (*models.PublicUser, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user, _ := CurrentUser(ctx)

		if err := s.parseForm(w, r); err != nil {
			fail(ctx, w, s.logger, err)
			return
		}
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}

		path, err := s.stageFile(r, field)
		if err != nil {
			fail(ctx, w, s.logger, err)
			return
		}

		updated, err := update(ctx, user.ID, path)
		if err != nil {
			fail(ctx, w, s.logger, err)
			return
		}

		respond(w, http.StatusOK, updated, message)
	}
}

func (s *Server) handleChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, _ := CurrentUser(ctx)

	profile, err := s.users.GetChannelProfile(ctx, chi.URLParam(r, "username"), viewer.ID)
	if err != nil {
		fail(ctx, w, s.logger, err)
		return
	}

	respond(w, http.StatusOK, profile, "User channel fetched successfully")
}

func (s *Server) handleWatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	history, err := s.users.GetWatchHistory(ctx, user.ID)
	if err != nil {
		fail(ctx, w, s.logger, err)
		return
	}

	respond(w, http.StatusOK, history, "Watch history fetched successfully")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.health.Ping(r.Context()); err != nil {
		s.logger.Error(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, apiError{
			StatusCode: http.StatusServiceUnavailable,
			Message:    "storage unavailable",
			Errors:     []string{},
		})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "ok"}, "OK")
}
