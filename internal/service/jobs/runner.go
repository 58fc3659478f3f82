package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/vertextoedge/media-download-web/internal/domain"
	"github.com/vertextoedge/media-download-web/internal/domain/event"
	"github.com/vertextoedge/media-download-web/internal/logger"
	"github.com/vertextoedge/media-download-web/internal/port"
	"github.com/vertextoedge/media-download-web/internal/registry"
	"go.uber.org/zap"
)

// Runner executes each job on its own goroutine. Failures, including
// fetcher panics, are recorded on the job and never reach the caller.
type Runner struct {
	registry *registry.Registry
	fetcher  port.Fetcher
	store    port.ArtifactStore
	events   event.EventDispatcher
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a new Runner
func NewRunner(
	reg *registry.Registry,
	fetcher port.Fetcher,
	store port.ArtifactStore,
	events event.EventDispatcher,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = event.NewNullDispatcher()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		registry: reg,
		fetcher:  fetcher,
		store:    store,
		events:   events,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Launch starts the job's work and returns immediately
func (r *Runner) Launch(job domain.Job) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(r.ctx, job)
	}()
}

// Shutdown waits for running jobs. When ctx expires first the remaining
// fetches are cancelled and ctx's error is returned.
func (r *Runner) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		<-done
		return ctx.Err()
	}
}

func (r *Runner) run(ctx context.Context, job domain.Job) {
	log := logger.ForJob(r.logger, job.ID)
	log.Debug("download started", zap.String("url", job.URL), zap.String("format_id", job.FormatID))

	req := port.DownloadRequest{
		JobID:          job.ID,
		URL:            job.URL,
		FormatID:       job.FormatID,
		OutputTemplate: r.store.OutputTemplate(job.ID),
	}

	if err := r.fetch(ctx, req, NewSink(r.registry, job.ID, log)); err != nil {
		log.Debug("download failed", zap.Error(err))
		r.fail(job.ID, err.Error())
		return
	}

	path, found, err := r.store.FindArtifact(job.ID)
	if err != nil {
		log.Warn("failed to scan for artifact", zap.Error(err))
		r.fail(job.ID, err.Error())
		return
	}
	if !found {
		r.failIfActive(job.ID)
		return
	}
	r.complete(job.ID, path, log)
}

// fetch calls the fetcher and converts a panic into an error
func (r *Runner) fetch(ctx context.Context, req port.DownloadRequest, sink port.ProgressSink) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("fetcher panic: %v", rec)
		}
	}()
	return r.fetcher.Download(ctx, req, sink)
}

// fail marks the job as error with the failure description
func (r *Runner) fail(id, message string) {
	var snapshot domain.Job
	applied := false
	r.registry.Mutate(id, func(j *domain.Job) {
		if j.SetStatus(domain.StatusError) {
			j.ErrorMessage = message
			applied = true
		}
		snapshot = j.Snapshot()
	})
	if applied {
		r.events.Dispatch(event.NewJobFailed(snapshot))
	}
}

// failIfActive handles a successful fetch that left no artifact behind.
// A message already recorded by the sink is kept.
func (r *Runner) failIfActive(id string) {
	var snapshot domain.Job
	applied := false
	r.registry.Mutate(id, func(j *domain.Job) {
		applied = j.MarkFailed(domain.ErrNoArtifact.Error())
		snapshot = j.Snapshot()
	})
	if applied {
		r.events.Dispatch(event.NewJobFailed(snapshot))
	}
}

func (r *Runner) complete(id, path string, log *zap.Logger) {
	var snapshot domain.Job
	applied := false
	live := r.registry.Mutate(id, func(j *domain.Job) {
		applied = j.MarkComplete(path)
		snapshot = j.Snapshot()
	})

	if !live {
		// the record was cleaned up while the fetch ran; nobody owns the file now
		if err := r.store.DeleteFile(path); err != nil {
			log.Warn("failed to remove orphaned artifact", zap.String("path", path), zap.Error(err))
		}
		return
	}
	if !applied {
		return
	}

	size, err := r.store.GetFileSize(path)
	if err != nil {
		log.Warn("failed to stat artifact", zap.String("path", path), zap.Error(err))
	}
	r.events.Dispatch(event.NewJobCompleted(snapshot, size))
}
