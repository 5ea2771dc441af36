// Package web provides the HTTP API of the quiz practice backend.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/quizdeck/internal/config"
	"github.com/JonMunkholm/quizdeck/internal/core"
	"github.com/JonMunkholm/quizdeck/internal/drive"
	"github.com/JonMunkholm/quizdeck/internal/logging"
	mw "github.com/JonMunkholm/quizdeck/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
)

// WarmingHeader is set on every response during the warm-up window after
// start, so clients can tell a cold start from a slow request.
const WarmingHeader = "X-Server-Warming"

// DriveBrowser lists cloud folders. *drive.Client implements it.
type DriveBrowser interface {
	ListFolder(ctx context.Context, folderID string) ([]drive.File, error)
	ListTSVRecursive(ctx context.Context, folderID string) ([]drive.NestedFile, error)
}

// Server is the HTTP server of the quiz backend.
type Server struct {
	service   *core.Service
	users     mw.UserResolver
	drive     DriveBrowser // nil when Drive is not configured
	cfg       *config.Config
	quota     uploadQuota
	router    *chi.Mux
	server    *http.Server
	startedAt time.Time
}

// NewServer creates a Server. driveClient may be nil to disable the Drive
// routes; rdb may be nil to keep upload quotas in memory.
func NewServer(service *core.Service, driveClient DriveBrowser, cfg *config.Config, rdb *redis.Client) *Server {
	return newServer(service, service, driveClient, cfg, newUploadQuota(cfg.Rate, rdb))
}

func newServer(service *core.Service, users mw.UserResolver, driveClient DriveBrowser, cfg *config.Config, quota uploadQuota) *Server {
	s := &Server{
		service:   service,
		users:     users,
		drive:     driveClient,
		cfg:       cfg,
		quota:     quota,
		router:    chi.NewRouter(),
		startedAt: time.Now(),
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
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{WarmingHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(securityHeaders)
	s.router.Use(s.warming)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Guest reads
		r.Route("/public", func(r chi.Router) {
			r.Get("/question-sets", s.handlePublicSets)
			r.Get("/question-sets/{id}/questions", s.handlePublicSetQuestions)
			r.Get("/questions/mixed", s.handlePublicMixed)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.Auth(mw.NewTokenVerifier(s.cfg.Auth.JWTSecret, s.cfg.Auth.Audience), s.users))

			// Uploads and imports share the hourly quota
			r.With(s.uploadLimit).Post("/upload-tsv", s.handleUploadTSV)
			r.With(s.uploadLimit).Post("/drive/import", s.handleDriveImport)
			r.With(s.uploadLimit).Post("/drive/import-batch", s.handleDriveImportBatch)

			r.Get("/drive/files", s.handleDriveFiles)
			r.Get("/drive/files/recursive", s.handleDriveFilesRecursive)

			// Question sets
			r.Get("/question-sets", s.handleListSets)
			r.Post("/question-sets/{id}/mark-opened", s.handleMarkOpened)
			r.Put("/question-sets/{id}/rename", s.handleRenameSet)
			r.Delete("/question-sets/{id}", s.handleDeleteSet)
			r.Get("/question-sets/{id}/questions", s.handleSetQuestions)

			// Practice
			r.Get("/questions/mixed", s.handleMixedQuestions)
			r.Post("/questions/{id}/progress", s.handleProgress)
			r.Post("/questions/{id}/mark-missed", s.handleMarkMissed)
			r.Post("/questions/{id}/unmark-missed", s.handleUnmarkMissed)
			r.Post("/questions/{id}/bookmark", s.handleBookmark)

			r.Get("/stats", s.handleStats)
			r.Get("/missed-questions", s.handleMissedQuestions)
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

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for running ingestions.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.service.WaitForUploads(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) warmingUp() bool {
	return time.Since(s.startedAt) < s.cfg.Server.WarmupWindow
}

// warming marks responses sent during the warm-up window.
func (s *Server) warming(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.warmingUp() {
			w.Header().Set(WarmingHeader, "true")
		}
		next.ServeHTTP(w, r)
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with status 200.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	writeJSONStatus(w, r, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
