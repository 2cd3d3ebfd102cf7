// Package events distributes verification events to subscribers.
//
// The Broker connects the verifier's hooks to transports such as the
// WebSocket hub and the AMQP publisher through a single fan-out point.
package events

import "time"

// EventType represents the type of verification event.
type EventType string

// Event types.
const (
	// PropertyUnified is published after a property was unified and stored.
	PropertyUnified EventType = "property.unified"

	// PropertyFailed is published when verification of a property failed.
	PropertyFailed EventType = "property.failed"

	// ClientConnected is sent to a transport client when it connects.
	ClientConnected EventType = "client.connected"
)

// Event represents an event with type, timestamp, and data.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// UnifiedPayload is the data of a PropertyUnified event.
type UnifiedPayload struct {
	PropertyID string   `json:"propertyId"`
	Revision   int64    `json:"revision"`
	Sources    []string `json:"sources"`
}

// FailedPayload is the data of a PropertyFailed event.
type FailedPayload struct {
	PropertyID string `json:"propertyId"`
	Error      string `json:"error"`
}
