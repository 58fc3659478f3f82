package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vertextoedge/media-download-web/internal/port"
	"go.uber.org/zap"
)

// Config contains maintenance service configuration
type Config struct {
	// Interval is how often the download directory is swept
	Interval time.Duration

	// TempFileMaxAge is the maximum age of partial download files
	TempFileMaxAge time.Duration

	// OrphanMaxAge is how long an artifact without a live job is kept
	OrphanMaxAge time.Duration
}

// DefaultConfig returns default maintenance configuration
func DefaultConfig() *Config {
	return &Config{
		Interval:       10 * time.Minute,
		TempFileMaxAge: 24 * time.Hour,
		OrphanMaxAge:   24 * time.Hour,
	}
}

// LiveJobs reports whether a job id still has a record
type LiveJobs interface {
	Has(id string) bool
}

// Service periodically removes stale partial files and artifacts
// whose job record is gone
type Service struct {
	config *Config
	store  port.ArtifactStore
	jobs   LiveJobs
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new maintenance Service
func New(cfg *Config, store port.ArtifactStore, jobs LiveJobs, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.TempFileMaxAge == 0 {
		cfg.TempFileMaxAge = 24 * time.Hour
	}
	if cfg.OrphanMaxAge == 0 {
		cfg.OrphanMaxAge = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		config: cfg,
		store:  store,
		jobs:   jobs,
		logger: logger,
	}
}

// Start runs the maintenance loop until ctx is cancelled or Stop is called
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("maintenance service already running")
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("maintenance service started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("temp_file_max_age", s.config.TempFileMaxAge),
		zap.Duration("orphan_max_age", s.config.OrphanMaxAge))

	s.wg.Add(1)
	go s.maintenanceLoop(ctx)

	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("maintenance service stopped")
	return nil
}

// Stop stops the maintenance service
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.running = false
}

func (s *Service) maintenanceLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Service) sweep() {
	s.cleanupTempFiles()
	s.cleanupOrphans()
}

// cleanupTempFiles removes partial downloads left behind by crashed fetches
func (s *Service) cleanupTempFiles() {
	count, err := s.store.CleanOldTempFiles(s.config.TempFileMaxAge)
	if err != nil {
		s.logger.Error("failed to cleanup old temp files", zap.Error(err))
	} else if count > 0 {
		s.logger.Info("cleaned up old temp files", zap.Int("count", count))
	}
}

// cleanupOrphans removes artifacts whose job record no longer exists,
// e.g. after a restart or a cleanup that raced a finishing download
func (s *Service) cleanupOrphans() {
	files, err := s.store.ListArtifacts()
	if err != nil {
		s.logger.Error("failed to list artifacts", zap.Error(err))
		return
	}

	cutoff := time.Now().Add(-s.config.OrphanMaxAge)
	removed := 0
	for _, f := range files {
		if s.jobs.Has(f.JobID) || f.ModTime.After(cutoff) {
			continue
		}
		if err := s.store.DeleteFile(f.Path); err != nil {
			s.logger.Warn("failed to remove orphaned artifact",
				zap.String("path", f.Path),
				zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("removed orphaned artifacts", zap.Int("count", removed))
	}
}
