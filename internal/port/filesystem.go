package port

import (
	"time"
)

// DiskUsage represents disk usage statistics
type DiskUsage struct {
	Total   uint64  // Total disk space in bytes
	Used    uint64  // Used disk space in bytes
	Free    uint64  // Free disk space in bytes
	UsedPct float64 // Used percentage (0-100)
}

// ArtifactFile is a finished file found in the download directory
type ArtifactFile struct {
	Path    string
	JobID   string
	Size    int64
	ModTime time.Time
}

// ArtifactStore defines the download directory operations
type ArtifactStore interface {
	// RootDir returns the download directory
	RootDir() string

	// OutputTemplate returns the fetcher output template for a job
	OutputTemplate(jobID string) string

	// FindArtifact scans for a finished file carrying the job id prefix
	FindArtifact(jobID string) (string, bool, error)

	// DeleteFile removes a file; a missing file is not an error
	DeleteFile(path string) error

	// FileExists checks if a file exists
	FileExists(path string) bool

	// GetFileSize returns the size of a file
	GetFileSize(path string) (int64, error)

	// ListArtifacts returns finished files that follow the naming convention
	ListArtifacts() ([]ArtifactFile, error)

	// GetDiskUsage returns disk usage statistics
	GetDiskUsage() (*DiskUsage, error)

	// CleanOldTempFiles removes partial download files older than the duration.
	// Returns the number of files deleted.
	CleanOldTempFiles(olderThan time.Duration) (int, error)
}
