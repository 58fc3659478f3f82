// Package ytdlp adapts the yt-dlp command line tool to the Fetcher port.
package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/vertextoedge/media-download-web/internal/domain"
	"github.com/vertextoedge/media-download-web/internal/port"
	"go.uber.org/zap"
)

// Config contains fetcher settings
type Config struct {
	// NoPlaylist downloads only the referenced item of a playlist URL
	NoPlaylist bool

	// ProgressInterval throttles progress callbacks
	ProgressInterval time.Duration
}

// Fetcher runs yt-dlp for metadata and downloads
type Fetcher struct {
	cfg    Config
	logger *zap.Logger
}

// Ensure Fetcher implements port.Fetcher
var _ port.Fetcher = (*Fetcher)(nil)

// New creates a new Fetcher
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{cfg: cfg, logger: logger}
}

// Install makes sure a yt-dlp binary is available, downloading one if needed
func (f *Fetcher) Install(ctx context.Context) error {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	f.logger.Info("yt-dlp ready",
		zap.String("executable", resolved.Executable),
		zap.String("version", resolved.Version))
	return nil
}

func (f *Fetcher) command() *ytdlp.Command {
	cmd := ytdlp.New()
	if f.cfg.NoPlaylist {
		cmd = cmd.NoPlaylist()
	}
	return cmd
}

// ExtractInfo resolves metadata without downloading
func (f *Fetcher) ExtractInfo(ctx context.Context, url string) (*domain.MediaInfo, error) {
	result, err := f.command().
		DumpJSON().
		SkipDownload().
		NoWarnings().
		Run(ctx, url)
	if err != nil {
		return nil, fetchError(url, result, err)
	}

	info, err := parseInfo([]byte(result.Stdout))
	if err != nil {
		return nil, domain.NewFetchError(url, "", err)
	}
	return info, nil
}

// Download performs the transfer, forwarding output and progress to sink
func (f *Fetcher) Download(ctx context.Context, req port.DownloadRequest, sink port.ProgressSink) error {
	cmd := f.command().Output(req.OutputTemplate)
	if req.FormatID != "" {
		cmd = cmd.Format(req.FormatID)
	}
	cmd = cmd.ProgressFunc(f.cfg.ProgressInterval, func(update ytdlp.ProgressUpdate) {
		ev, ok := progressEvent(update.Status, int64(update.DownloadedBytes), int64(update.TotalBytes),
			update.Started, update.ETA(), update.Filename)
		if ok {
			sink.Progress(ev)
		}
	})

	result, err := cmd.Run(ctx, req.URL)
	if result != nil {
		forwardOutput(result.Stdout, sink)
		forwardOutput(result.Stderr, sink)
	}
	if err != nil {
		f.logger.Debug("yt-dlp exited with error",
			zap.String("download_id", req.JobID),
			zap.Error(err))
		return fetchError(req.URL, result, err)
	}
	return nil
}

// forwardOutput replays yt-dlp output lines into the sink by severity
func forwardOutput(output string, sink port.ProgressSink) {
	for _, line := range strings.Split(output, "\n") {
		severity, msg := classifyLine(line)
		switch severity {
		case severityNone:
		case severityError:
			sink.Error(msg)
		case severityWarning:
			sink.Warning(msg)
		default:
			sink.Debug(msg)
		}
	}
}

// fetchError prefers the last ERROR line yt-dlp printed over the bare exit error
func fetchError(url string, result *ytdlp.Result, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var msg string
	if result != nil {
		msg = lastErrorLine(result.Stderr)
	}
	return domain.NewFetchError(url, msg, err)
}
