package jobs

import (
	"github.com/vertextoedge/media-download-web/internal/domain"
	"github.com/vertextoedge/media-download-web/internal/port"
	"github.com/vertextoedge/media-download-web/internal/registry"
	"go.uber.org/zap"
)

// Sink translates fetcher callbacks into mutations of one job record.
// Every method is a silent no-op once the record is gone.
type Sink struct {
	registry *registry.Registry
	jobID    string
	logger   *zap.Logger
}

// Ensure Sink implements port.ProgressSink
var _ port.ProgressSink = (*Sink)(nil)

// NewSink creates a sink bound to jobID
func NewSink(reg *registry.Registry, jobID string, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{registry: reg, jobID: jobID, logger: logger}
}

// Debug records a plain log line
func (s *Sink) Debug(msg string) {
	s.registry.Mutate(s.jobID, func(j *domain.Job) {
		j.AppendLog(msg)
	})
}

// Warning records a prefixed warning line
func (s *Sink) Warning(msg string) {
	s.registry.Mutate(s.jobID, func(j *domain.Job) {
		j.AppendLog(domain.WarningPrefix + msg)
	})
}

// Error records a prefixed error line and the job's error message.
// The status is left to the runner.
func (s *Sink) Error(msg string) {
	s.registry.Mutate(s.jobID, func(j *domain.Job) {
		j.AppendLog(domain.ErrorPrefix + msg)
		j.ErrorMessage = msg
	})
}

// Progress drives the job state machine from a structured fetcher event
func (s *Sink) Progress(ev domain.ProgressEvent) {
	applied := true
	live := s.registry.Mutate(s.jobID, func(j *domain.Job) {
		switch ev.State {
		case domain.ProgressDownloading:
			if !j.SetStatus(domain.StatusDownloading) {
				applied = false
				return
			}
			if ev.Percent != "" {
				j.Progress = ev.Percent
			}
			if ev.Speed != "" {
				j.Speed = ev.Speed
			}
			if ev.ETA != "" {
				j.ETA = ev.ETA
			}
		case domain.ProgressFinished:
			if !j.SetStatus(domain.StatusProcessing) {
				applied = false
				return
			}
			j.Progress = domain.ProgressDone
			if ev.Filename != "" {
				j.Filename = ev.Filename
			}
		default:
			applied = false
		}
	})

	if live && !applied {
		s.logger.Debug("progress event ignored",
			zap.String("download_id", s.jobID),
			zap.String("state", string(ev.State)))
	}
}
