//go:build windows

package filesystem

import (
	"errors"

	"github.com/vertextoedge/media-download-web/internal/port"
)

// GetDiskUsage is not implemented on Windows
func (m *Manager) GetDiskUsage() (*port.DiskUsage, error) {
	return nil, errors.New("disk usage is not supported on windows")
}
