package natsbus

import (
	"fmt"
	"strings"

	"github.com/vertextoedge/media-download-web/internal/domain/event"
	"github.com/vertextoedge/media-download-web/internal/port"
)

// DefaultSubjectPrefix is used when no prefix is configured
const DefaultSubjectPrefix = "media.jobs"

// PublishHandler forwards job events to <prefix>.<event name>
type PublishHandler struct {
	publisher port.EventPublisher
	prefix    string
}

// NewPublishHandler creates a new PublishHandler
func NewPublishHandler(publisher port.EventPublisher, prefix string) *PublishHandler {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &PublishHandler{publisher: publisher, prefix: prefix}
}

// Subject returns the subject an event is published on
func (h *PublishHandler) Subject(eventName string) string {
	return h.prefix + "." + eventName
}

// Handle publishes the event
func (h *PublishHandler) Handle(e event.DomainEvent) error {
	subject := h.Subject(e.EventName())
	if err := h.publisher.PublishJSON(subject, e); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

// HandledEvents returns the job lifecycle events
func (h *PublishHandler) HandledEvents() []string {
	return []string{
		event.NameJobCreated,
		event.NameJobCompleted,
		event.NameJobFailed,
		event.NameJobRemoved,
	}
}
