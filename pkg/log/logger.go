package log

// Logger is the interface applications implement to receive link events.
// Pass nil or NoopLogger to disable capture.
type Logger interface {
	// Log records a link event. Implementations must be thread-safe and
	// must not block the caller for long; the supervisor loop calls Log inline.
	Log(event Event)
}

// NoopLogger discards all events.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
