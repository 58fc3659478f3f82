package port

import (
	"github.com/vertextoedge/media-download-web/internal/domain"
)

// HistoryRepository stores finished jobs for later inspection.
// It is a ledger only; live jobs are never restored from it.
type HistoryRepository interface {
	// Record inserts or replaces the entry for a job
	Record(entry *domain.HistoryEntry) error

	// MarkRemoved stamps when and why a job left the registry
	MarkRemoved(jobID, reason string) error

	// Recent returns the newest entries, newest first
	Recent(limit int) ([]*domain.HistoryEntry, error)

	// Ping checks storage connectivity
	Ping() error

	// Close releases the storage
	Close() error
}
