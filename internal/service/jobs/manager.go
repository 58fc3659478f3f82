// Package jobs runs download jobs against the registry and exposes the
// operations the HTTP layer needs.
package jobs

import (
	"context"
	"errors"
	"strings"

	"github.com/vertextoedge/media-download-web/internal/domain"
	"github.com/vertextoedge/media-download-web/internal/domain/event"
	"github.com/vertextoedge/media-download-web/internal/port"
	"github.com/vertextoedge/media-download-web/internal/registry"
	"go.uber.org/zap"
)

// DefaultCapacity is the registry size above which finished jobs are evicted
const DefaultCapacity = 100

// StatusView is the polled state of a job
type StatusView struct {
	Status   domain.Status `json:"status"`
	Progress string        `json:"progress"`
	Speed    string        `json:"speed"`
	ETA      string        `json:"eta"`
	Filename *string       `json:"filename"`
	Error    *string       `json:"error"`
	Logs     []string      `json:"logs"`
}

// Artifact is a finished file ready to be served
type Artifact struct {
	Path        string
	DisplayName string
}

// Stats summarizes the live jobs
type Stats struct {
	Jobs     map[domain.Status]int `json:"jobs"`
	Total    int                   `json:"total"`
	Capacity int                   `json:"capacity"`
	Disk     *port.DiskUsage       `json:"disk,omitempty"`
}

// Manager ties the registry, runner and fetcher together
type Manager struct {
	registry *registry.Registry
	runner   *Runner
	fetcher  port.Fetcher
	store    port.ArtifactStore
	events   event.EventDispatcher
	space    *SpaceGuard
	capacity int
	logger   *zap.Logger
}

// NewManager creates a new Manager. A non-positive capacity selects DefaultCapacity.
func NewManager(
	reg *registry.Registry,
	fetcher port.Fetcher,
	store port.ArtifactStore,
	events event.EventDispatcher,
	capacity int,
	logger *zap.Logger,
) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = event.NewNullDispatcher()
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Manager{
		registry: reg,
		runner:   NewRunner(reg, fetcher, store, events, logger),
		fetcher:  fetcher,
		store:    store,
		events:   events,
		capacity: capacity,
		logger:   logger,
	}
}

// SetSpaceGuard makes StartDownload refuse jobs while the disk is too full
func (m *Manager) SetSpaceGuard(g *SpaceGuard) {
	m.space = g
}

// StartDownload evicts old finished jobs if needed, registers a new job
// and launches it. It never waits for the download.
func (m *Manager) StartDownload(url, formatID string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", domain.ErrURLRequired
	}
	if err := m.space.Check(); err != nil {
		return "", err
	}

	for _, evicted := range m.registry.EvictIfOverCapacity(m.capacity) {
		m.events.Dispatch(event.NewJobRemoved(evicted, event.ReasonEvicted))
	}

	job := m.registry.Create(url, strings.TrimSpace(formatID))
	m.events.Dispatch(event.NewJobCreated(job))
	m.runner.Launch(job)
	return job.ID, nil
}

// Status returns the polled view of a job
func (m *Manager) Status(id string) (*StatusView, error) {
	job, err := m.registry.Get(id)
	if err != nil {
		return nil, err
	}

	view := &StatusView{
		Status:   job.Status,
		Progress: job.Progress,
		Speed:    job.Speed,
		ETA:      job.ETA,
		Logs:     job.RecentLogs(domain.StatusLogsWindow),
	}
	if name := displayFilename(job); name != "" {
		view.Filename = &name
	}
	if job.ErrorMessage != "" {
		msg := job.ErrorMessage
		view.Error = &msg
	}
	return view, nil
}

func displayFilename(job domain.Job) string {
	if job.ArtifactPath != "" {
		return job.ArtifactPath
	}
	return job.Filename
}

// Artifact resolves the finished file of a job
func (m *Manager) Artifact(id string) (*Artifact, error) {
	job, err := m.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.StatusComplete {
		return nil, domain.ErrNotReady
	}
	if job.ArtifactPath == "" || !m.store.FileExists(job.ArtifactPath) {
		return nil, domain.ErrArtifactMissing
	}
	return &Artifact{
		Path:        job.ArtifactPath,
		DisplayName: domain.ArtifactDisplayName(job.ID, job.ArtifactPath),
	}, nil
}

// Cleanup removes a job and its files. Unknown ids are not an error.
func (m *Manager) Cleanup(id string) {
	job, ok := m.registry.Delete(id)
	if !ok {
		return
	}
	m.events.Dispatch(event.NewJobRemoved(job, event.ReasonCleanup))
}

// Info queries the fetcher for metadata only
func (m *Manager) Info(ctx context.Context, url string) (*domain.MediaInfo, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, domain.ErrURLRequired
	}

	info, err := m.fetcher.ExtractInfo(ctx, url)
	if err != nil {
		if !domain.IsFetchError(err) && !errors.Is(err, context.Canceled) {
			err = domain.NewFetchError(url, "", err)
		}
		return nil, err
	}
	return info, nil
}

// Stats returns job counts per status and download directory usage
func (m *Manager) Stats() Stats {
	counts := m.registry.Counts()
	total := 0
	for _, n := range counts {
		total += n
	}

	stats := Stats{Jobs: counts, Total: total, Capacity: m.capacity}
	usage, err := m.store.GetDiskUsage()
	if err != nil {
		m.logger.Debug("disk usage unavailable", zap.Error(err))
	} else {
		stats.Disk = usage
	}
	return stats
}

// Shutdown waits for running jobs until ctx expires
func (m *Manager) Shutdown(ctx context.Context) error {
	return m.runner.Shutdown(ctx)
}
