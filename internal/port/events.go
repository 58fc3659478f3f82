package port

// EventPublisher sends job events to an external message bus
type EventPublisher interface {
	// PublishJSON marshals v and publishes it on subject
	PublishJSON(subject string, v any) error
}
