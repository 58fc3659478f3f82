package domain

import "time"

// HistoryEntry is the persisted summary of a finished job
type HistoryEntry struct {
	JobID         string     `json:"download_id"`
	URL           string     `json:"url"`
	FormatID      string     `json:"format_id,omitempty"`
	Status        Status     `json:"status"`
	ErrorMessage  string     `json:"error,omitempty"`
	ArtifactName  string     `json:"artifact,omitempty"`
	Size          int64      `json:"size"`
	CreatedAt     time.Time  `json:"created_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	RemovedAt     *time.Time `json:"removed_at,omitempty"`
	RemovalReason string     `json:"removal_reason,omitempty"`
}
