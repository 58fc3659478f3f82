package domain

import (
	"testing"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusStarting, StatusDownloading, true},
		{StatusStarting, StatusProcessing, true},
		{StatusStarting, StatusError, true},
		{StatusDownloading, StatusDownloading, true},
		{StatusDownloading, StatusProcessing, true},
		{StatusProcessing, StatusComplete, true},
		{StatusProcessing, StatusError, true},
		{StatusProcessing, StatusDownloading, false},
		{StatusDownloading, StatusStarting, false},
		{StatusComplete, StatusError, false},
		{StatusError, StatusComplete, false},
		{StatusComplete, StatusDownloading, false},
		{StatusStarting, Status("paused"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("abc12345", "https://example.com/v", "")

	if job.Status != StatusStarting {
		t.Errorf("Status = %s, want %s", job.Status, StatusStarting)
	}
	if job.Progress != ProgressNone || job.Speed != NotAvailable || job.ETA != NotAvailable {
		t.Errorf("unexpected placeholders: %q %q %q", job.Progress, job.Speed, job.ETA)
	}
	if job.Logs == nil || len(job.Logs) != 0 {
		t.Errorf("Logs = %v, want empty", job.Logs)
	}
	if job.FinishedAt != nil {
		t.Error("FinishedAt should be nil for a new job")
	}
}

func TestJob_TerminalStatesAreFinal(t *testing.T) {
	job := NewJob("id", "u", "")
	if !job.MarkComplete("/tmp/id_x.mp4") {
		t.Fatal("MarkComplete() from starting should apply")
	}
	if job.FinishedAt == nil {
		t.Error("FinishedAt should be set on completion")
	}
	if job.MarkFailed("late failure") {
		t.Error("MarkFailed() after complete should not apply")
	}
	if job.Status != StatusComplete || job.ErrorMessage != "" {
		t.Errorf("job regressed: status=%s error=%q", job.Status, job.ErrorMessage)
	}
	if job.SetStatus(StatusDownloading) {
		t.Error("SetStatus(downloading) after complete should not apply")
	}
}

func TestJob_MarkFailedKeepsFirstMessage(t *testing.T) {
	job := NewJob("id", "u", "")
	job.ErrorMessage = "network unreachable"

	if !job.MarkFailed("something else") {
		t.Fatal("MarkFailed() should apply")
	}
	if job.ErrorMessage != "network unreachable" {
		t.Errorf("ErrorMessage = %q, want the first message", job.ErrorMessage)
	}
}

func TestJob_RecentLogs(t *testing.T) {
	job := NewJob("id", "u", "")
	if got := job.RecentLogs(StatusLogsWindow); len(got) != 0 {
		t.Errorf("RecentLogs() on empty = %v", got)
	}

	for _, l := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		job.AppendLog(l)
	}
	got := job.RecentLogs(StatusLogsWindow)
	want := []string{"3", "4", "5", "6", "7"}
	if len(got) != len(want) {
		t.Fatalf("RecentLogs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RecentLogs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestJob_SnapshotIsIndependent(t *testing.T) {
	job := NewJob("id", "u", "")
	job.AppendLog("first")

	snap := job.Snapshot()
	job.AppendLog("second")
	job.Logs[0] = "changed"

	if len(snap.Logs) != 1 || snap.Logs[0] != "first" {
		t.Errorf("snapshot logs mutated: %v", snap.Logs)
	}
}

func TestArtifactDisplayName(t *testing.T) {
	tests := []struct {
		id, path, want string
	}{
		{"ab12cd34", "/downloads/ab12cd34_My Clip.mp4", "My Clip.mp4"},
		{"ab12cd34", "/downloads/other_My Clip.mp4", "other_My Clip.mp4"},
		{"ab12cd34", "/downloads/ab12cd34_", "ab12cd34_"},
		{"", "/downloads/x_y.mp4", "x_y.mp4"},
	}
	for _, tt := range tests {
		if got := ArtifactDisplayName(tt.id, tt.path); got != tt.want {
			t.Errorf("ArtifactDisplayName(%q, %q) = %q, want %q", tt.id, tt.path, got, tt.want)
		}
	}
}
