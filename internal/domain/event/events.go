package event

import (
	"path/filepath"
	"time"

	"github.com/vertextoedge/media-download-web/internal/domain"
)

// Event names
const (
	NameJobCreated   = "job.created"
	NameJobCompleted = "job.completed"
	NameJobFailed    = "job.failed"
	NameJobRemoved   = "job.removed"
	NameAll          = "*"
)

// Removal reasons carried by JobRemoved
const (
	ReasonCleanup = "cleanup"
	ReasonEvicted = "evicted"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	// EventName returns the name of the event
	EventName() string
	// OccurredAt returns when the event occurred
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all events
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt returns when the event occurred
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// JobSummary is the part of a job record carried on events
type JobSummary struct {
	JobID        string     `json:"download_id"`
	URL          string     `json:"url"`
	FormatID     string     `json:"format_id,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error,omitempty"`
	ArtifactName string     `json:"artifact,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// Summarize builds a JobSummary from a job snapshot
func Summarize(job domain.Job) JobSummary {
	s := JobSummary{
		JobID:        job.ID,
		URL:          job.URL,
		FormatID:     job.FormatID,
		Status:       job.Status.String(),
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		FinishedAt:   job.FinishedAt,
	}
	if job.ArtifactPath != "" {
		s.ArtifactName = filepath.Base(job.ArtifactPath)
	}
	return s
}

// JobCreated is raised when a job is registered and its runner launched
type JobCreated struct {
	BaseEvent
	JobSummary
}

// EventName returns the event name
func (e JobCreated) EventName() string {
	return NameJobCreated
}

// NewJobCreated creates a new JobCreated event
func NewJobCreated(job domain.Job) JobCreated {
	return JobCreated{
		BaseEvent:  BaseEvent{Timestamp: time.Now()},
		JobSummary: Summarize(job),
	}
}

// JobCompleted is raised when a job's artifact has been resolved
type JobCompleted struct {
	BaseEvent
	JobSummary
	Size     int64         `json:"size"`
	Duration time.Duration `json:"duration_ns"`
}

// EventName returns the event name
func (e JobCompleted) EventName() string {
	return NameJobCompleted
}

// NewJobCompleted creates a new JobCompleted event
func NewJobCompleted(job domain.Job, size int64) JobCompleted {
	return JobCompleted{
		BaseEvent:  BaseEvent{Timestamp: time.Now()},
		JobSummary: Summarize(job),
		Size:       size,
		Duration:   job.Duration(),
	}
}

// JobFailed is raised when a job ends in the error state
type JobFailed struct {
	BaseEvent
	JobSummary
	Duration time.Duration `json:"duration_ns"`
}

// EventName returns the event name
func (e JobFailed) EventName() string {
	return NameJobFailed
}

// NewJobFailed creates a new JobFailed event
func NewJobFailed(job domain.Job) JobFailed {
	return JobFailed{
		BaseEvent:  BaseEvent{Timestamp: time.Now()},
		JobSummary: Summarize(job),
		Duration:   job.Duration(),
	}
}

// JobRemoved is raised when a record leaves the registry
type JobRemoved struct {
	BaseEvent
	JobSummary
	Reason string `json:"reason"`
}

// EventName returns the event name
func (e JobRemoved) EventName() string {
	return NameJobRemoved
}

// NewJobRemoved creates a new JobRemoved event
func NewJobRemoved(job domain.Job, reason string) JobRemoved {
	return JobRemoved{
		BaseEvent:  BaseEvent{Timestamp: time.Now()},
		JobSummary: Summarize(job),
		Reason:     reason,
	}
}
