// Package registry holds the live download jobs. All operations share one
// mutex, so they are linearizable with respect to each other; callers only
// ever see copies of the records.
package registry

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vertextoedge/media-download-web/internal/domain"
	"go.uber.org/zap"
)

// idLength is the number of hex characters kept from a random UUID
const idLength = 8

// FileRemover deletes artifact files owned by removed jobs
type FileRemover interface {
	DeleteFile(path string) error
}

// Registry maps job ids to job records
type Registry struct {
	mu    sync.Mutex
	jobs  map[string]*domain.Job
	order []string // insertion order, oldest first

	files  FileRemover
	logger *zap.Logger
	newID  func() string
}

// New creates an empty registry
func New(files FileRemover, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		jobs:   make(map[string]*domain.Job),
		files:  files,
		logger: logger,
		newID:  NewID,
	}
}

// NewID returns a short random identifier
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}

// Create registers a new job in the starting state and returns its snapshot.
// Ids are checked against live jobs and regenerated on collision.
func (r *Registry) Create(url, formatID string) domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for {
		if _, exists := r.jobs[id]; !exists {
			break
		}
		r.logger.Debug("job id collision, regenerating", zap.String("download_id", id))
		id = r.newID()
	}

	job := domain.NewJob(id, url, formatID)
	r.jobs[id] = job
	r.order = append(r.order, id)
	return job.Snapshot()
}

// Get returns a snapshot of the job or domain.ErrNotFound
func (r *Registry) Get(id string) (domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	return job.Snapshot(), nil
}

// Mutate applies fn to the job under the registry lock. It is a no-op
// returning false when the job no longer exists. fn must not call back
// into the registry.
func (r *Registry) Mutate(id string, fn func(job *domain.Job)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return false
	}
	fn(job)
	return true
}

// Delete removes the job and, best-effort, the files it owns.
// It returns the removed snapshot and whether the job existed.
func (r *Registry) Delete(id string) (domain.Job, bool) {
	r.mu.Lock()
	job, ok := r.jobs[id]
	if ok {
		r.removeLocked(id)
	}
	r.mu.Unlock()

	if !ok {
		return domain.Job{}, false
	}

	snapshot := job.Snapshot()
	r.deleteOwnedFiles(snapshot)
	return snapshot, true
}

// EvictIfOverCapacity removes the oldest half of the finished jobs once the
// registry holds more than capacity records. Active jobs are never evicted.
// It returns the removed snapshots, oldest first.
func (r *Registry) EvictIfOverCapacity(capacity int) []domain.Job {
	r.mu.Lock()
	if len(r.jobs) <= capacity {
		r.mu.Unlock()
		return nil
	}

	var candidates []string
	for _, id := range r.order {
		if r.jobs[id].Status.IsTerminal() {
			candidates = append(candidates, id)
		}
	}

	victims := candidates[:len(candidates)/2]
	evicted := make([]domain.Job, 0, len(victims))
	for _, id := range victims {
		evicted = append(evicted, r.jobs[id].Snapshot())
		r.removeLocked(id)
	}
	remaining := len(r.jobs)
	r.mu.Unlock()

	for _, job := range evicted {
		r.deleteOwnedFiles(job)
	}

	if len(evicted) > 0 {
		r.logger.Info("evicted finished jobs",
			zap.Int("evicted", len(evicted)),
			zap.Int("remaining", remaining),
			zap.Int("capacity", capacity))
	}
	return evicted
}

// Len returns the number of live jobs
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// Counts returns the number of live jobs per status
func (r *Registry) Counts() map[domain.Status]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[domain.Status]int)
	for _, job := range r.jobs {
		counts[job.Status]++
	}
	return counts
}

// Has reports whether a job id is live
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.jobs[id]
	return ok
}

func (r *Registry) removeLocked(id string) {
	delete(r.jobs, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// deleteOwnedFiles removes the artifact and any fetcher-reported file that
// carries the job's id prefix. Failures are logged and swallowed.
func (r *Registry) deleteOwnedFiles(job domain.Job) {
	if r.files == nil {
		return
	}

	paths := make([]string, 0, 2)
	if job.ArtifactPath != "" {
		paths = append(paths, job.ArtifactPath)
	}
	if job.Filename != "" && job.Filename != job.ArtifactPath &&
		strings.HasPrefix(filepath.Base(job.Filename), job.ID+"_") {
		paths = append(paths, job.Filename)
	}

	for _, path := range paths {
		if err := r.files.DeleteFile(path); err != nil {
			r.logger.Warn("failed to remove file",
				zap.String("download_id", job.ID),
				zap.String("path", path),
				zap.Error(err))
		}
	}
}
