package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vertextoedge/media-download-web/internal/domain"
	"github.com/vertextoedge/media-download-web/internal/port"
	"github.com/vertextoedge/media-download-web/internal/service/jobs"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config contains HTTP server configuration
type Config struct {
	BindAddr     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// RateLimit is requests per second allowed on the info and download
	// endpoints; zero disables limiting
	RateLimit float64
	RateBurst int
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		BindAddr:    "127.0.0.1:5000",
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
}

// JobService is the job API the handlers are built on
type JobService interface {
	StartDownload(url, formatID string) (string, error)
	Status(id string) (*jobs.StatusView, error)
	Artifact(id string) (*jobs.Artifact, error)
	Cleanup(id string)
	Info(ctx context.Context, url string) (*domain.MediaInfo, error)
	Stats() jobs.Stats
}

// Server represents the HTTP API server
type Server struct {
	config  *Config
	jobs    JobService
	history port.HistoryRepository
	logger  *zap.Logger
	server  *http.Server
}

// New creates a new HTTP server. history may be nil when the ledger is disabled.
func New(cfg *Config, jobService JobService, history port.HistoryRepository, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:  cfg,
		jobs:    jobService,
		history: history,
		logger:  logger,
	}

	s.server = &http.Server{
		Addr:         cfg.BindAddr,
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware(s.logger))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.config.RateLimit > 0 {
			burst := s.config.RateBurst
			if burst <= 0 {
				burst = 1
			}
			r.Use(RateLimitMiddleware(rate.NewLimiter(rate.Limit(s.config.RateLimit), burst), s.logger))
		}
		r.Post("/api/info", s.handleInfo)
		r.Post("/api/download", s.handleDownload)
	})

	r.Get("/api/status/{download_id}", s.handleStatus)
	r.Get("/api/file/{download_id}", s.handleFile)
	r.Post("/api/cleanup/{download_id}", s.handleCleanup)
	r.Get("/api/history", s.handleHistory)
	r.Get("/api/stats", s.handleStats)

	return r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.history != nil {
		if err := s.history.Ping(); err != nil {
			s.logger.Error("health check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
