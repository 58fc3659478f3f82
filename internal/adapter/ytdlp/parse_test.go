package ytdlp

import (
	"strings"
	"testing"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/vertextoedge/media-download-web/internal/domain"
)

func TestParseInfo(t *testing.T) {
	data := `{
		"title": "Big Buck Bunny",
		"thumbnail": "https://img.example/bbb.jpg",
		"duration": 596.5,
		"uploader": "Blender",
		"view_count": 1234567,
		"formats": [
			{"format_id": "140", "ext": "m4a", "format_note": "medium", "filesize": 9000000, "vcodec": "none"},
			{"format_id": "22", "ext": "mp4", "format_note": "720p", "filesize": null, "resolution": "1280x720", "vcodec": "avc1"},
			{"format_id": "hls-1", "quality": 7},
			{}
		]
	}
	{"title": "second playlist entry"}`

	info, err := parseInfo([]byte(data))
	if err != nil {
		t.Fatalf("parseInfo() error = %v", err)
	}

	if info.Title != "Big Buck Bunny" || info.Uploader != "Blender" || info.Duration != 596.5 || info.ViewCount != 1234567 {
		t.Errorf("info = %+v", info)
	}
	if len(info.Formats) != 4 {
		t.Fatalf("formats = %d, want 4", len(info.Formats))
	}

	want := []domain.Format{
		{FormatID: "140", Ext: "m4a", Quality: "medium", Filesize: 9000000, Resolution: "audio only"},
		{FormatID: "22", Ext: "mp4", Quality: "720p", Filesize: 0, Resolution: "1280x720"},
		{FormatID: "hls-1", Ext: domain.Unknown, Quality: "7", Resolution: domain.Unknown},
		{FormatID: domain.Unknown, Ext: domain.Unknown, Quality: domain.Unknown, Resolution: domain.Unknown},
	}
	for i, f := range info.Formats {
		if f != want[i] {
			t.Errorf("formats[%d] = %+v, want %+v", i, f, want[i])
		}
	}
}

func TestParseInfo_Defaults(t *testing.T) {
	info, err := parseInfo([]byte(`{}`))
	if err != nil {
		t.Fatalf("parseInfo() error = %v", err)
	}
	if info.Title != "Unknown" || info.Uploader != "Unknown" || info.Thumbnail != "" {
		t.Errorf("info = %+v", info)
	}
	if info.Formats == nil {
		t.Error("Formats should be an empty slice, not nil")
	}
}

func TestParseInfo_Invalid(t *testing.T) {
	if _, err := parseInfo([]byte("not json")); err == nil {
		t.Error("parseInfo() expected error")
	}
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line    string
		wantSev severity
		wantMsg string
	}{
		{"", severityNone, ""},
		{"   \r", severityNone, ""},
		{"[youtube] abc: Downloading webpage", severityDebug, "[youtube] abc: Downloading webpage"},
		{"WARNING: falling back to generic extractor", severityWarning, "falling back to generic extractor"},
		{"ERROR: Unsupported URL: https://x\r", severityError, "Unsupported URL: https://x"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			sev, msg := classifyLine(tt.line)
			if sev != tt.wantSev || msg != tt.wantMsg {
				t.Errorf("classifyLine(%q) = %v, %q; want %v, %q", tt.line, sev, msg, tt.wantSev, tt.wantMsg)
			}
		})
	}
}

func TestLastErrorLine(t *testing.T) {
	out := strings.Join([]string{
		"ERROR: first",
		"WARNING: something",
		"ERROR: network unreachable",
		"",
	}, "\n")
	if got := lastErrorLine(out); got != "network unreachable" {
		t.Errorf("lastErrorLine() = %q", got)
	}
	if got := lastErrorLine("all fine"); got != "" {
		t.Errorf("lastErrorLine() = %q, want empty", got)
	}
}

// recordingSink captures sink calls
type recordingSink struct {
	debug, warning, errs []string
	progress             []domain.ProgressEvent
}

func (s *recordingSink) Debug(msg string)                 { s.debug = append(s.debug, msg) }
func (s *recordingSink) Warning(msg string)               { s.warning = append(s.warning, msg) }
func (s *recordingSink) Error(msg string)                 { s.errs = append(s.errs, msg) }
func (s *recordingSink) Progress(ev domain.ProgressEvent) { s.progress = append(s.progress, ev) }

func TestForwardOutput(t *testing.T) {
	sink := &recordingSink{}
	forwardOutput("[info] a\nWARNING: b\n\nERROR: c\n", sink)

	if len(sink.debug) != 1 || sink.debug[0] != "[info] a" {
		t.Errorf("debug = %v", sink.debug)
	}
	if len(sink.warning) != 1 || sink.warning[0] != "b" {
		t.Errorf("warning = %v", sink.warning)
	}
	if len(sink.errs) != 1 || sink.errs[0] != "c" {
		t.Errorf("errors = %v", sink.errs)
	}
}

func TestProgressEvent(t *testing.T) {
	started := time.Now().Add(-2 * time.Second)

	ev, ok := progressEvent(ytdlp.ProgressStatusDownloading, 1000, 10000, started, 9*time.Second, "")
	if !ok {
		t.Fatal("downloading update dropped")
	}
	if ev.State != domain.ProgressDownloading || ev.Percent != "10.0%" || ev.ETA != "00:09" {
		t.Errorf("event = %+v", ev)
	}
	if !strings.HasSuffix(ev.Speed, "/s") {
		t.Errorf("Speed = %q", ev.Speed)
	}

	ev, ok = progressEvent(ytdlp.ProgressStatusDownloading, 500, 0, time.Time{}, 0, "")
	if !ok || ev.Percent != "" || ev.Speed != "" || ev.ETA != "" {
		t.Errorf("unknown-size event = %+v, %v", ev, ok)
	}

	ev, ok = progressEvent(ytdlp.ProgressStatusFinished, 10000, 10000, started, 0, "/dl/ab12cd34_x.mp4")
	if !ok || ev.State != domain.ProgressFinished || ev.Filename != "/dl/ab12cd34_x.mp4" {
		t.Errorf("finished event = %+v, %v", ev, ok)
	}

	if _, ok := progressEvent(ytdlp.ProgressStatus("starting"), 0, 0, started, 0, ""); ok {
		t.Error("starting update should be dropped")
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{9 * time.Second, "00:09"},
		{75 * time.Second, "01:15"},
		{3723 * time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		if got := formatETA(tt.in); got != tt.want {
			t.Errorf("formatETA(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := formatPercent(33.333); got != "33.3%" {
		t.Errorf("formatPercent() = %q", got)
	}
	if got := formatPercent(120); got != "100.0%" {
		t.Errorf("formatPercent() clamps to %q", got)
	}
}
