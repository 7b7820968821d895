// Package web provides the HTTP server, JSON API and admin pages.
package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/StudioUsers/internal/config"
	"github.com/JonMunkholm/StudioUsers/internal/core"
	"github.com/JonMunkholm/StudioUsers/internal/web/middleware"
)

// Service is the application behavior the HTTP layer drives.
// *core.Service implements it.
type Service interface {
	Login(ctx context.Context, username, password string) (core.Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (core.Session, error)

	Execute(ctx context.Context, cmd core.Command) (core.ActionResult, error)
	ListUsersPage(ctx context.Context, page, pageSize int, studio string) (core.UserPage, error)
	SearchUsers(ctx context.Context, term string, searchType core.SearchType, studio string) ([]core.User, error)
	ExportUsers(ctx context.Context, term string, searchType core.SearchType, studio string) ([]core.User, error)
	ListStudios(ctx context.Context) ([]core.Studio, error)
	DeleteUsers(ctx context.Context, ids []int64) (int, error)

	StageUpload(ctx context.Context, fileName string, r io.Reader) (*core.StagedUpload, error)
	StagedUploadByID(id string) (*core.StagedUpload, error)
	PreviewUpload(ctx context.Context, uploadID string, mapping core.ColumnMapping) (core.Preview, error)
	ImportStaged(ctx context.Context, uploadID string, mapping core.ColumnMapping) (core.ImportResult, error)
	DiscardUpload(uploadID string) error

	ListAuditLog(ctx context.Context, page, pageSize int) (core.AuditPage, error)
	ImportLimiterStatus() core.ImportLimiterStatus
}

// Server is the HTTP server for the admin tool.
type Server struct {
	service Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limiter *middleware.RateLimiter

	statusRecorder middleware.StatusRecorder
	metricsHandler http.Handler
	now            func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics counts responses with rec and serves h on /metrics.
func WithMetrics(rec middleware.StatusRecorder, h http.Handler) Option {
	return func(s *Server) {
		s.statusRecorder = rec
		s.metricsHandler = h
	}
}

// WithClock overrides the clock used for export file names.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a Server. Call Close to release the rate limiter.
func NewServer(service Service, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.Rate.Enabled {
		s.limiter = middleware.NewRateLimiter(middleware.PerMinute(cfg.Rate.RequestsPerMinute, cfg.Rate.LoginPerMinute))
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger(s.statusRecorder))
	s.router.Use(chimw.Recoverer)
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	if s.limiter != nil {
		s.router.Use(s.limiter.General)
	}
	s.router.Use(requestMetadata)
	s.router.Use(middleware.LoadSession(s.service))
}

func (s *Server) setupRoutes() {
	r := s.router
	timeout := chimw.Timeout(s.cfg.Server.RequestTimeout)

	r.Get("/healthz", s.handleHealth)
	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}

	// Pages
	r.Get("/login", s.handleLoginPage)
	r.With(s.loginLimit).Post("/login", s.handleLoginForm)
	r.Post("/logout", s.handleLogoutForm)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(redirectToLogin))

		r.With(timeout).Get("/", s.handleImportPage)
		r.With(timeout).Get("/users", s.handleUsersPage)
		r.With(timeout).Post("/users/delete", s.handleDeleteUsersForm)
		r.With(timeout).Get("/audit-log", s.handleAuditLogPage)

		// Imports run under the import timeout, not the request timeout.
		r.Post("/import", s.handleUploadForm)
		r.With(timeout).Get("/import/{uploadID}", s.handleMappingPage)
		r.Post("/import/{uploadID}", s.handleMappingForm)
		r.Post("/import/{uploadID}/discard", s.handleDiscardForm)
	})

	// API
	r.Route("/api", func(r chi.Router) {
		r.With(s.loginLimit, timeout).Post("/auth/login", s.handleLogin)
		r.With(timeout).Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(s.unauthorized))

			r.Post("/action", s.handleAction)

			r.Group(func(r chi.Router) {
				r.Use(timeout)
				r.Get("/users", s.handleIntentQuery(core.IntentGetUsers))
				r.Get("/users/search", s.handleIntentQuery(core.IntentSearchUsers))
				r.Get("/users/export", s.handleExport)
				r.Delete("/users", s.handleDeleteUsers)
				r.Get("/studios", s.handleIntentQuery(core.IntentGetStudios))
				r.Get("/audit-log", s.handleAuditLog)
				r.Post("/import/{uploadID}/preview", s.handlePreviewStaged)
				r.Delete("/import/{uploadID}", s.handleDiscardUpload)
			})

			r.Post("/import/preview", s.handlePreviewUpload)
			r.Post("/import/{uploadID}", s.handleImportStaged)
		})
	})
}

func (s *Server) loginLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return s.limiter.Login(next)
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	slog.Info("starting server", "addr", sc.Addr())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(csp bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if csp {
				h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'")
			}
			next.ServeHTTP(w, r)
		})
	}
}
