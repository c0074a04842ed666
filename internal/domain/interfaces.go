package domain

import "context"

// ConfigSource supplies the raw configuration documents by name.
// Missing documents are reported with an error wrapping ErrDocumentNotFound.
type ConfigSource interface {
	// Fetch returns the raw bytes of the named document.
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// EventPublisher publishes engine events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(eventType string, data map[string]interface{})
}

// Engine event types.
const (
	EventItemToggled   = "pricing.item_toggled"
	EventValueClamped  = "pricing.value_clamped"
	EventLookupWarning = "pricing.lookup_warning"
)
