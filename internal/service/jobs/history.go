package jobs

import (
	"fmt"

	"github.com/vertextoedge/media-download-web/internal/domain"
	"github.com/vertextoedge/media-download-web/internal/domain/event"
	"github.com/vertextoedge/media-download-web/internal/port"
)

// HistoryHandler records finished and removed jobs in the history ledger
type HistoryHandler struct {
	history port.HistoryRepository
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(history port.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// Handle writes the event to the ledger
func (h *HistoryHandler) Handle(e event.DomainEvent) error {
	switch ev := e.(type) {
	case event.JobCompleted:
		entry := historyEntry(ev.JobSummary)
		entry.Size = ev.Size
		return h.record(entry)
	case event.JobFailed:
		return h.record(historyEntry(ev.JobSummary))
	case event.JobRemoved:
		if err := h.history.MarkRemoved(ev.JobID, ev.Reason); err != nil {
			return fmt.Errorf("failed to mark %s removed: %w", ev.JobID, err)
		}
	}
	return nil
}

func (h *HistoryHandler) record(entry *domain.HistoryEntry) error {
	if err := h.history.Record(entry); err != nil {
		return fmt.Errorf("failed to record history for %s: %w", entry.JobID, err)
	}
	return nil
}

// HandledEvents returns the terminal and removal events
func (h *HistoryHandler) HandledEvents() []string {
	return []string{event.NameJobCompleted, event.NameJobFailed, event.NameJobRemoved}
}

func historyEntry(s event.JobSummary) *domain.HistoryEntry {
	return &domain.HistoryEntry{
		JobID:        s.JobID,
		URL:          s.URL,
		FormatID:     s.FormatID,
		Status:       domain.Status(s.Status),
		ErrorMessage: s.ErrorMessage,
		ArtifactName: s.ArtifactName,
		CreatedAt:    s.CreatedAt,
		FinishedAt:   s.FinishedAt,
	}
}
