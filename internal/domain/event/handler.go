package event

import (
	"go.uber.org/zap"
)

// LoggingHandler logs all events
type LoggingHandler struct {
	logger *zap.Logger
}

// NewLoggingHandler creates a new LoggingHandler
func NewLoggingHandler(logger *zap.Logger) *LoggingHandler {
	return &LoggingHandler{logger: logger}
}

// Handle logs the event
func (h *LoggingHandler) Handle(event DomainEvent) error {
	switch e := event.(type) {
	case JobCreated:
		h.logger.Info("download job created",
			zap.String("download_id", e.JobID),
			zap.String("url", e.URL),
			zap.String("format_id", e.FormatID),
		)
	case JobCompleted:
		h.logger.Info("download job completed",
			zap.String("download_id", e.JobID),
			zap.String("artifact", e.ArtifactName),
			zap.Int64("size", e.Size),
			zap.Duration("duration", e.Duration),
		)
	case JobFailed:
		h.logger.Warn("download job failed",
			zap.String("download_id", e.JobID),
			zap.String("url", e.URL),
			zap.String("error", e.ErrorMessage),
			zap.Duration("duration", e.Duration),
		)
	case JobRemoved:
		h.logger.Info("download job removed",
			zap.String("download_id", e.JobID),
			zap.String("status", e.Status),
			zap.String("reason", e.Reason),
		)
	default:
		h.logger.Debug("unknown event", zap.String("event", event.EventName()))
	}
	return nil
}

// HandledEvents returns all event names
func (h *LoggingHandler) HandledEvents() []string {
	return []string{NameAll}
}
