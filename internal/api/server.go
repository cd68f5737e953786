package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/editorial-harvester/internal/article"
	"github.com/JakeFAU/editorial-harvester/internal/config"
	"github.com/JakeFAU/editorial-harvester/internal/crawler"
	"github.com/JakeFAU/editorial-harvester/internal/dispatcher"
	"github.com/JakeFAU/editorial-harvester/internal/metrics"
	"github.com/JakeFAU/editorial-harvester/internal/orchestrator"
)

// BatchReader exposes the most recent scheduled feed batch.
type BatchReader interface {
	Latest() (orchestrator.Batch, bool)
}

// Deps are the services behind the HTTP routes.
type Deps struct {
	Feeds      *orchestrator.Orchestrator
	Articles   *article.Service
	Dispatcher *dispatcher.Dispatcher
	JobStore   crawler.JobStore
	// Batches may be nil when scheduled refresh is disabled.
	Batches BatchReader
}

// Server wires HTTP handlers to the harvesting services.
type Server struct {
	router chi.Router
	deps   Deps
	cfg    config.Config
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(deps Deps, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		deps:   deps,
		cfg:    cfg,
		logger: logger.Named("api"),
	}
	metrics.Init()

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(recoverMiddleware(s.logger))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		if timeout := cfg.RequestTimeout(); timeout > 0 {
			r.Use(timeoutMiddleware(timeout))
		}
		if cfg.Auth.Enabled {
			r.Use(apiKeyMiddleware(cfg.Auth.APIKey, s.logger))
		}
		r.Route("/feeds", func(r chi.Router) {
			r.Post("/fetch", s.fetchFeeds)
			r.Get("/latest", s.latestFeeds)
		})
		r.Post("/articles/metadata", s.articleMetadata)
		r.Route("/crawls", func(r chi.Router) {
			r.Post("/", s.submitCrawl)
			r.Get("/{job_id}", s.getCrawl)
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Feeds == nil || s.deps.Articles == nil || s.deps.Dispatcher == nil || s.deps.JobStore == nil {
		writeError(w, s.logger, http.StatusServiceUnavailable, "services not wired")
		return
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ready"})
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, status int, msg string) {
	writeJSON(w, logger, status, errorResponse{Success: false, Error: msg})
}
