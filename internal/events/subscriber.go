package events

// Subscriber is an interface for event consumers.
// Implementations adapt the event stream to a specific transport
// (WebSocket, AMQP, ...).
type Subscriber interface {
	// Send delivers an event to the subscriber.
	// Implementations should be non-blocking and handle errors gracefully.
	Send(Event) error

	// Close cleanly shuts down the subscriber.
	Close() error
}
