package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Status is the lifecycle state of a download job
type Status string

// Job status constants
const (
	StatusStarting    Status = "starting"
	StatusDownloading Status = "downloading"
	StatusProcessing  Status = "processing"
	StatusComplete    Status = "complete"
	StatusError       Status = "error"
)

// Display placeholders used before the fetcher reports anything
const (
	ProgressNone     = "0%"
	ProgressDone     = "100%"
	NotAvailable     = "N/A"
	StatusLogsWindow = 5
)

// rank orders statuses; complete and error share the terminal rank
func (s Status) rank() int {
	switch s {
	case StatusStarting:
		return 0
	case StatusDownloading:
		return 1
	case StatusProcessing:
		return 2
	case StatusComplete, StatusError:
		return 3
	default:
		return -1
	}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for complete and error
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusError
}

// IsActive returns true while the job's task may still be running
func (s Status) IsActive() bool {
	return s == StatusStarting || s == StatusDownloading || s == StatusProcessing
}

// CanTransitionTo reports whether moving from s to next keeps the
// status sequence monotonic. Repeating downloading is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if next.rank() < 0 || s.IsTerminal() {
		return false
	}
	return next.rank() >= s.rank()
}

// Job is the mutable state of one download. It is owned by the registry;
// everything outside it works on copies returned by Snapshot.
type Job struct {
	ID           string
	URL          string
	FormatID     string
	Status       Status
	Progress     string
	Speed        string
	ETA          string
	Filename     string // name reported by the fetcher when the transfer finished
	ArtifactPath string
	ErrorMessage string
	Logs         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	FinishedAt   *time.Time
}

// NewJob creates a job in the starting state
func NewJob(id, url, formatID string) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		URL:       url,
		FormatID:  formatID,
		Status:    StatusStarting,
		Progress:  ProgressNone,
		Speed:     NotAvailable,
		ETA:       NotAvailable,
		Logs:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot returns a deep copy safe to hand out of the registry
func (j *Job) Snapshot() Job {
	cp := *j
	cp.Logs = append([]string(nil), j.Logs...)
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		cp.FinishedAt = &t
	}
	return cp
}

// SetStatus moves the job forward. Regressions and moves out of a
// terminal state are ignored; the return value reports whether it applied.
func (j *Job) SetStatus(next Status) bool {
	if j.Status == next && !next.IsTerminal() {
		return true
	}
	if !j.Status.CanTransitionTo(next) {
		return false
	}
	j.Status = next
	j.UpdatedAt = time.Now()
	if next.IsTerminal() {
		t := j.UpdatedAt
		j.FinishedAt = &t
	}
	return true
}

// AppendLog records one line of fetcher output
func (j *Job) AppendLog(line string) {
	j.Logs = append(j.Logs, line)
	j.UpdatedAt = time.Now()
}

// RecentLogs returns at most n of the newest log lines
func (j *Job) RecentLogs(n int) []string {
	if n <= 0 || len(j.Logs) == 0 {
		return []string{}
	}
	if len(j.Logs) <= n {
		return append([]string(nil), j.Logs...)
	}
	return append([]string(nil), j.Logs[len(j.Logs)-n:]...)
}

// MarkComplete finalizes a successful job with its artifact
func (j *Job) MarkComplete(artifactPath string) bool {
	if !j.SetStatus(StatusComplete) {
		return false
	}
	j.Progress = ProgressDone
	j.ArtifactPath = artifactPath
	return true
}

// MarkFailed finalizes a failed job. The first recorded message wins.
func (j *Job) MarkFailed(message string) bool {
	if !j.SetStatus(StatusError) {
		return false
	}
	if j.ErrorMessage == "" {
		j.ErrorMessage = message
	}
	return true
}

// Duration returns the time from creation to finish, or so far
func (j *Job) Duration() time.Duration {
	if j.FinishedAt != nil {
		return j.FinishedAt.Sub(j.CreatedAt)
	}
	return time.Since(j.CreatedAt)
}

// ArtifactDisplayName returns the artifact's base name without the
// "<id>_" ownership prefix, as offered to clients.
func ArtifactDisplayName(jobID, artifactPath string) string {
	name := filepath.Base(artifactPath)
	prefix := jobID + "_"
	if jobID != "" && strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
		return name[len(prefix):]
	}
	return name
}
