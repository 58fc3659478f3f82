package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vertextoedge/media-download-web/internal/port"
)

// Naming convention for artifacts: <job id>_<title>.<ext>
const (
	idSeparator  = "_"
	titlePattern = "%(title)s.%(ext)s"
)

// Suffixes the fetcher uses for in-progress files
var tempSuffixes = []string{".part", ".ytdl", ".temp"}

// Manager handles download directory operations
type Manager struct {
	rootDir string
}

// Ensure Manager implements port.ArtifactStore
var _ port.ArtifactStore = (*Manager)(nil)

// NewManager creates a new filesystem manager, creating rootDir if needed
func NewManager(rootDir string) (*Manager, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve download dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	return &Manager{rootDir: abs}, nil
}

// RootDir returns the download directory
func (m *Manager) RootDir() string {
	return m.rootDir
}

// OutputTemplate returns the fetcher output template for a job
func (m *Manager) OutputTemplate(jobID string) string {
	return filepath.Join(m.rootDir, jobID+idSeparator+titlePattern)
}

// FindArtifact scans the download directory for a finished file owned by jobID
func (m *Manager) FindArtifact(jobID string) (string, bool, error) {
	if jobID == "" {
		return "", false, nil
	}

	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to read download dir: %w", err)
	}

	prefix := jobID + idSeparator
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, prefix) && !isTempFile(name) {
			return filepath.Join(m.rootDir, name), true, nil
		}
	}
	return "", false, nil
}

// DeleteFile removes a file
func (m *Manager) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FileExists checks if a regular file exists
func (m *Manager) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetFileSize returns the size of a file
func (m *Manager) GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ListArtifacts returns finished files following the naming convention
func (m *Manager) ListArtifacts() ([]port.ArtifactFile, error) {
	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read download dir: %w", err)
	}

	files := make([]port.ArtifactFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || isTempFile(entry.Name()) {
			continue
		}
		jobID, _, ok := strings.Cut(entry.Name(), idSeparator)
		if !ok || jobID == "" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, port.ArtifactFile{
			Path:    filepath.Join(m.rootDir, entry.Name()),
			JobID:   jobID,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// CleanOldTempFiles removes partial download files older than the specified duration
func (m *Manager) CleanOldTempFiles(olderThan time.Duration) (int, error) {
	count := 0
	threshold := time.Now().Add(-olderThan)

	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read download dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isTempFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(threshold) {
			if removeErr := os.Remove(filepath.Join(m.rootDir, entry.Name())); removeErr == nil {
				count++
			}
		}
	}
	return count, nil
}

// isTempFile reports whether name is an in-progress fetcher file,
// including fragment files such as "x.mp4.part-Frag3".
func isTempFile(name string) bool {
	for _, suffix := range tempSuffixes {
		if strings.HasSuffix(name, suffix) || strings.Contains(name, suffix+"-Frag") {
			return true
		}
	}
	return false
}
