// Package httpserver exposes the user service over HTTP: a chi router with
// the auth gate, JSON envelopes, auth cookies and Prometheus metrics.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vivekprasad7/hc-youtube-backend/internal/logging"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/config"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/models"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/services"
)

// UserService is the part of services.UserService the handlers call.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput, files services.RegisterFiles) (*models.PublicUser, error)
	Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	Logout(ctx context.Context, userID string) error
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	Authenticate(ctx context.Context, accessToken string) (*models.PublicUser, error)
	UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.PublicUser, error)
	UpdateAvatar(ctx context.Context, userID, localPath string) (*models.PublicUser, error)
	UpdateCoverImage(ctx context.Context, userID, localPath string) (*models.PublicUser, error)
	GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
	GetWatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error)
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	address         string
	users           UserService
	health          Pinger
	logger          logging.Logger
	metrics         *metrics
	uploadDir       string
	maxUploadBytes  int64
	cookieSecure    bool
	corsOrigins     []string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
}

// NewServer builds the HTTP server. cfg.UploadDir must already exist.
func NewServer(cfg *config.Config, l logging.Logger, us UserService, health Pinger) *Server {
	return &Server{
		address:         cfg.HTTPAddr,
		users:           us,
		health:          health,
		logger:          l.With("module", "http_server"),
		metrics:         newMetrics(),
		uploadDir:       cfg.UploadDir,
		maxUploadBytes:  cfg.MaxUploadBytes,
		cookieSecure:    cfg.CookieSecure,
		corsOrigins:     splitOrigins(cfg.CORSOrigin),
		readTimeout:     cfg.ReadTimeout,
		writeTimeout:    cfg.WriteTimeout,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Routes returns the router with every endpoint mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(s.metrics.instrument)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh-token", s.handleRefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/logout", s.handleLogout)
			r.Post("/change-password", s.handleChangePassword)
			r.Get("/current-user", s.handleCurrentUser)
			r.Patch("/update-account", s.handleUpdateAccount)
			r.Patch("/avatar", s.handleImage("avatar", "Avatar image updated successfully", s.users.UpdateAvatar))
			r.Patch("/cover-image", s.handleImage("coverImage", "Cover image updated successfully", s.users.UpdateCoverImage))
			r.Get("/c/{username}", s.handleChannelProfile)
			r.Get("/history", s.handleWatchHistory)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.Routes(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}

// splitOrigins parses a comma-separated origin list; trailing slashes are
// dropped so "https://app.example/" matches the Origin header.
func splitOrigins(v string) []string {
	var origins []string
	for _, p := range strings.Split(v, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
