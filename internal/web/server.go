// Package web provides the HTTP API for triggering story imports and
// attaching media.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/storyimport/internal/config"
	"github.com/JonMunkholm/storyimport/internal/core"
	mw "github.com/JonMunkholm/storyimport/internal/web/middleware"
)

// StoryService is the part of core.Service the handlers use.
type StoryService interface {
	RunImport(ctx context.Context) (*core.Summary, error)
	AttachMedia(ctx context.Context, storyName, audio, thumbnail string) (string, error)
	LastSummary() (*core.Summary, bool)
	ImportStatus() core.GateStatus
	Languages() *core.Languages
}

var _ StoryService = (*core.Service)(nil)

// Server is the HTTP server for the story importer.
type Server struct {
	service StoryService
	cfg     *config.Config
	metrics http.Handler
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server. metrics may be nil, in which case no
// metrics route is mounted.
func NewServer(service StoryService, cfg *config.Config, metrics http.Handler) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		metrics: metrics,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	if s.cfg.Metrics.Enabled && s.metrics != nil {
		s.router.Method(http.MethodGet, s.cfg.Metrics.Path, s.metrics)
	}

	s.router.Route("/api/stories", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		// An import runs to completion regardless of how long it takes.
		r.Post("/import", s.handleImport)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

			r.Get("/import/status", s.handleImportStatus)
			r.Get("/import/report", s.handleImportReport)
			r.Post("/media", s.handleAttachMedia)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"import": s.service.ImportStatus(),
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// The report page has no scripts and only inline styles.
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
