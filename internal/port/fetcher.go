package port

import (
	"context"

	"github.com/vertextoedge/media-download-web/internal/domain"
)

// ProgressSink receives log lines and progress events from a fetcher
// for one job. Implementations must never panic or block for long.
type ProgressSink interface {
	Debug(msg string)
	Warning(msg string)
	Error(msg string)
	Progress(event domain.ProgressEvent)
}

// DownloadRequest describes one fetcher invocation
type DownloadRequest struct {
	JobID    string
	URL      string
	FormatID string // empty selects the fetcher's default

	// OutputTemplate is the fetcher output template; it embeds the job id
	// so the artifact can be found by prefix afterwards.
	OutputTemplate string
}

// Fetcher is the external media-fetching capability
type Fetcher interface {
	// ExtractInfo resolves metadata without downloading
	ExtractInfo(ctx context.Context, url string) (*domain.MediaInfo, error)

	// Download performs the transfer, reporting through sink.
	// It returns once the fetcher has exited.
	Download(ctx context.Context, req DownloadRequest, sink ProgressSink) error
}
