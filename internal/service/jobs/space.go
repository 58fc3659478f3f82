package jobs

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/vertextoedge/media-download-web/internal/domain"
	"github.com/vertextoedge/media-download-web/internal/port"
)

// SpaceGuard refuses new downloads once the download volume is too full
type SpaceGuard struct {
	store           port.ArtifactStore
	maxDiskUsagePct float64
}

// NewSpaceGuard creates a new SpaceGuard; a non-positive limit disables it
func NewSpaceGuard(store port.ArtifactStore, maxDiskUsagePct float64) *SpaceGuard {
	return &SpaceGuard{store: store, maxDiskUsagePct: maxDiskUsagePct}
}

// Check returns domain.ErrNoSpace when disk usage is at or above the limit.
// Usage that cannot be read does not block downloads.
func (g *SpaceGuard) Check() error {
	if g == nil || g.maxDiskUsagePct <= 0 {
		return nil
	}

	usage, err := g.store.GetDiskUsage()
	if err != nil || usage == nil || usage.Total == 0 {
		return nil
	}

	if usage.UsedPct >= g.maxDiskUsagePct {
		return fmt.Errorf("%w: %.1f%% used, %s free", domain.ErrNoSpace,
			usage.UsedPct, humanize.IBytes(usage.Free))
	}
	return nil
}
