package logging

// Sink consumes audit events. Implementations must be safe for concurrent
// use; a policy check may emit from any goroutine.
type Sink interface {
	// Write persists or forwards a single event without modifying it.
	Write(event *Event) error

	// Close flushes buffered data and releases resources.
	Close() error
}
