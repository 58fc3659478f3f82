package event

import (
	"errors"
	"sync"
	"testing"

	"github.com/vertextoedge/media-download-web/internal/domain"
	"go.uber.org/zap"
)

type recordingHandler struct {
	mu     sync.Mutex
	names  []string
	events []DomainEvent
	err    error
}

func (h *recordingHandler) Handle(e DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return h.err
}

func (h *recordingHandler) HandledEvents() []string { return h.names }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func TestInMemoryDispatcher_RoutesByName(t *testing.T) {
	d := NewInMemoryDispatcher(false, zap.NewNop())
	completed := &recordingHandler{names: []string{NameJobCompleted}}
	all := &recordingHandler{names: []string{NameAll}}
	d.Subscribe(completed)
	d.Subscribe(all)

	job := domain.NewJob("abc", "https://example.com", "")
	d.Dispatch(NewJobCreated(job.Snapshot()))
	job.MarkComplete("/downloads/abc_clip.mp4")
	d.Dispatch(NewJobCompleted(job.Snapshot(), 42))

	if got := completed.count(); got != 1 {
		t.Errorf("completed handler got %d events, want 1", got)
	}
	if got := all.count(); got != 2 {
		t.Errorf("wildcard handler got %d events, want 2", got)
	}

	e, ok := completed.events[0].(JobCompleted)
	if !ok {
		t.Fatalf("event type = %T, want JobCompleted", completed.events[0])
	}
	if e.ArtifactName != "abc_clip.mp4" || e.Size != 42 {
		t.Errorf("unexpected payload: %+v", e)
	}
}

func TestInMemoryDispatcher_AsyncWaitAndErrors(t *testing.T) {
	d := NewInMemoryDispatcher(true, zap.NewNop())
	failing := &recordingHandler{names: []string{NameJobFailed}, err: errors.New("publish failed")}
	d.Subscribe(failing)

	job := domain.NewJob("abc", "u", "")
	job.MarkFailed("network unreachable")
	for i := 0; i < 5; i++ {
		d.Dispatch(NewJobFailed(job.Snapshot()))
	}
	d.Wait()

	if got := failing.count(); got != 5 {
		t.Errorf("handler got %d events, want 5", got)
	}
}

func TestNullDispatcher(t *testing.T) {
	d := NewNullDispatcher()
	h := &recordingHandler{names: []string{NameAll}}
	d.Subscribe(h)
	d.Dispatch(NewJobRemoved(domain.NewJob("a", "u", "").Snapshot(), ReasonCleanup))
	if h.count() != 0 {
		t.Error("NullDispatcher should not deliver events")
	}
}
