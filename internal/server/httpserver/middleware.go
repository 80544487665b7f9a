package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/vivekprasad7/hc-youtube-backend/internal/common"
	"github.com/vivekprasad7/hc-youtube-backend/internal/logging"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

const (
	msgUnauthorizedRequest = "Unauthorized request"
	msgInvalidAccessToken  = "Invalid access token"
)

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, u *models.PublicUser) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// CurrentUser returns the user stored by the auth gate.
func CurrentUser(ctx context.Context) (*models.PublicUser, bool) {
	u, ok := ctx.Value(userKey).(*models.PublicUser)
	return u, ok && u != nil
}

// accessToken takes the token from the accessToken cookie, falling back to
// an "Authorization: Bearer" header.
func accessToken(r *http.Request) string {
	if v := cookieValue(r, common.AccessTokenCookieName); v != "" {
		return v
	}
	if v, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeaderName), common.BearerPrefix); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// authMiddleware rejects requests without a valid access token for a user
// that still exists.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := accessToken(r)
		if token == "" {
			s.metrics.authFailures.WithLabelValues("missing").Inc()
			fail(ctx, w, s.logger, common.NewError(common.ErrorUnauthorized, msgUnauthorizedRequest))
			return
		}

		user, err := s.users.Authenticate(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrTokenExpired) {
				reason := "invalid"
				if errors.Is(err, common.ErrTokenExpired) {
					reason = "expired"
				}
				s.metrics.authFailures.WithLabelValues(reason).Inc()
				fail(ctx, w, s.logger, common.WrapError(common.ErrorUnauthorized, msgInvalidAccessToken, err))
				return
			}
			fail(ctx, w, s.logger, err)
			return
		}

		ctx = logging.ContextWith(WithUser(ctx, user), "user_id", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger tags the request context with its request id and writes
// one line per request through the server logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		r = r.WithContext(logging.ContextWith(r.Context(), "request_id", middleware.GetReqID(r.Context())))

		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
