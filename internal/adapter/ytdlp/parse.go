package ytdlp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lrstanley/go-ytdlp"
	"github.com/vertextoedge/media-download-web/internal/domain"
)

// rawInfo is the subset of yt-dlp's --dump-json output we expose
type rawInfo struct {
	Title     *string     `json:"title"`
	Thumbnail *string     `json:"thumbnail"`
	Duration  *float64    `json:"duration"`
	Uploader  *string     `json:"uploader"`
	ViewCount *int64      `json:"view_count"`
	Formats   []rawFormat `json:"formats"`
}

type rawFormat struct {
	FormatID   *string         `json:"format_id"`
	Ext        *string         `json:"ext"`
	FormatNote *string         `json:"format_note"`
	Quality    json.RawMessage `json:"quality"`
	Filesize   *int64          `json:"filesize"`
	Resolution *string         `json:"resolution"`
	VCodec     *string         `json:"vcodec"`
}

const unknownTitle = "Unknown"

// parseInfo converts the first JSON document of a --dump-json run
func parseInfo(data []byte) (*domain.MediaInfo, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var raw rawInfo
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse media info: %w", err)
	}

	info := &domain.MediaInfo{
		Title:     stringOr(raw.Title, unknownTitle),
		Thumbnail: stringOr(raw.Thumbnail, ""),
		Uploader:  stringOr(raw.Uploader, unknownTitle),
		Formats:   make([]domain.Format, 0, len(raw.Formats)),
	}
	if raw.Duration != nil {
		info.Duration = *raw.Duration
	}
	if raw.ViewCount != nil {
		info.ViewCount = *raw.ViewCount
	}

	for _, f := range raw.Formats {
		format := domain.Format{
			FormatID: stringOr(f.FormatID, domain.Unknown),
			Ext:      stringOr(f.Ext, domain.Unknown),
			Quality:  formatQuality(f),
		}
		if f.Filesize != nil {
			format.Filesize = *f.Filesize
		}
		switch {
		case f.Resolution != nil:
			format.Resolution = *f.Resolution
		case f.VCodec != nil && *f.VCodec == "none":
			format.Resolution = "audio only"
		default:
			format.Resolution = domain.Unknown
		}
		info.Formats = append(info.Formats, format)
	}
	return info, nil
}

// formatQuality uses format_note, falling back to the numeric quality rank
func formatQuality(f rawFormat) string {
	if f.FormatNote != nil {
		return *f.FormatNote
	}
	q := strings.TrimSpace(string(f.Quality))
	if q == "" || q == "null" {
		return domain.Unknown
	}
	if s, err := strconv.Unquote(q); err == nil {
		return s
	}
	return q
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

type severity int

const (
	severityNone severity = iota
	severityDebug
	severityWarning
	severityError
)

// classifyLine maps one line of yt-dlp output to a log severity,
// stripping the severity prefix
func classifyLine(line string) (severity, string) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return severityNone, ""
	}
	switch {
	case strings.HasPrefix(line, domain.ErrorPrefix):
		return severityError, strings.TrimPrefix(line, domain.ErrorPrefix)
	case strings.HasPrefix(line, domain.WarningPrefix):
		return severityWarning, strings.TrimPrefix(line, domain.WarningPrefix)
	default:
		return severityDebug, line
	}
}

// lastErrorLine returns the message of the last ERROR line in output
func lastErrorLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if sev, msg := classifyLine(lines[i]); sev == severityError {
			return msg
		}
	}
	return ""
}

// progressEvent maps a yt-dlp progress update to a domain event.
// Statuses other than downloading and finished are dropped.
func progressEvent(status ytdlp.ProgressStatus, downloaded, total int64, started time.Time, eta time.Duration, filename string) (domain.ProgressEvent, bool) {
	switch status {
	case ytdlp.ProgressStatusDownloading:
		ev := domain.ProgressEvent{State: domain.ProgressDownloading}
		if total > 0 {
			ev.Percent = formatPercent(float64(downloaded) / float64(total) * 100)
		}
		if !started.IsZero() {
			if elapsed := time.Since(started).Seconds(); elapsed > 0 && downloaded > 0 {
				ev.Speed = humanize.Bytes(uint64(float64(downloaded)/elapsed)) + "/s"
			}
		}
		if eta > 0 {
			ev.ETA = formatETA(eta)
		}
		return ev, true
	case ytdlp.ProgressStatusFinished:
		return domain.ProgressEvent{State: domain.ProgressFinished, Filename: filename}, true
	default:
		return domain.ProgressEvent{}, false
	}
}

func formatPercent(p float64) string {
	if p > 100 {
		p = 100
	}
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

// formatETA renders mm:ss, or h:mm:ss for long transfers
func formatETA(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
