package jobs

import (
	"errors"
	"testing"

	"github.com/vertextoedge/media-download-web/internal/domain"
	"github.com/vertextoedge/media-download-web/internal/domain/event"
)

type mockHistory struct {
	recorded []*domain.HistoryEntry
	removed  map[string]string
	err      error
}

func (m *mockHistory) Record(entry *domain.HistoryEntry) error {
	if m.err != nil {
		return m.err
	}
	m.recorded = append(m.recorded, entry)
	return nil
}

func (m *mockHistory) MarkRemoved(jobID, reason string) error {
	if m.err != nil {
		return m.err
	}
	if m.removed == nil {
		m.removed = make(map[string]string)
	}
	m.removed[jobID] = reason
	return nil
}

func (m *mockHistory) Recent(limit int) ([]*domain.HistoryEntry, error) { return m.recorded, m.err }
func (m *mockHistory) Ping() error                                      { return m.err }
func (m *mockHistory) Close() error                                     { return nil }

func TestHistoryHandler(t *testing.T) {
	hist := &mockHistory{}
	h := NewHistoryHandler(hist)

	done := domain.NewJob("aaaa1111", "https://a", "22")
	done.MarkComplete("/dl/aaaa1111_a.mp4")
	failed := domain.NewJob("bbbb2222", "https://b", "")
	failed.MarkFailed("network unreachable")

	events := []event.DomainEvent{
		event.NewJobCreated(done.Snapshot()),
		event.NewJobCompleted(done.Snapshot(), 4096),
		event.NewJobFailed(failed.Snapshot()),
		event.NewJobRemoved(done.Snapshot(), event.ReasonCleanup),
	}
	for _, e := range events {
		if err := h.Handle(e); err != nil {
			t.Fatalf("Handle(%s) error = %v", e.EventName(), err)
		}
	}

	if len(hist.recorded) != 2 {
		t.Fatalf("recorded %d entries, want 2", len(hist.recorded))
	}
	if e := hist.recorded[0]; e.JobID != "aaaa1111" || e.Size != 4096 || e.ArtifactName != "aaaa1111_a.mp4" || e.Status != domain.StatusComplete || e.FinishedAt == nil {
		t.Errorf("completed entry = %+v", e)
	}
	if e := hist.recorded[1]; e.Status != domain.StatusError || e.ErrorMessage != "network unreachable" {
		t.Errorf("failed entry = %+v", e)
	}
	if hist.removed["aaaa1111"] != event.ReasonCleanup {
		t.Errorf("removed = %v", hist.removed)
	}
}

func TestHistoryHandler_Error(t *testing.T) {
	h := NewHistoryHandler(&mockHistory{err: errors.New("disk I/O error")})
	job := domain.NewJob("cccc3333", "u", "")
	job.MarkFailed("x")
	if err := h.Handle(event.NewJobFailed(job.Snapshot())); err == nil {
		t.Error("Handle() expected error")
	}
}
