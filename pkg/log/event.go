package log

import (
	"time"
)

// MaxFrameCapture is the largest number of payload bytes stored per frame.
// Longer frames are truncated and flagged.
const MaxFrameCapture = 256

// Event represents a link event captured by the supervisor.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies one connection attempt (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Endpoint is the device address (host:port).
	Endpoint string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"6,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"7,keyasint,omitempty"`
	Output      *OutputEvent      `cbor:"8,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"9,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates bytes received from the device.
	DirectionIn Direction = 0
	// DirectionOut indicates bytes sent to the device.
	DirectionOut Direction = 1
	// DirectionLocal indicates an event with no wire traffic.
	DirectionLocal Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionLocal:
		return "LOCAL"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a heartbeat frame.
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryOutput indicates a fail-safe output command.
	CategoryOutput Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryOutput:
		return "OUTPUT"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw heartbeat bytes.
type FrameEvent struct {
	// Size is the frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// NewFrameEvent copies data into a FrameEvent, truncating at MaxFrameCapture.
func NewFrameEvent(data []byte) *FrameEvent {
	n := len(data)
	truncated := false
	if n > MaxFrameCapture {
		n = MaxFrameCapture
		truncated = true
	}
	buf := make([]byte, n)
	copy(buf, data[:n])
	return &FrameEvent{
		Size:      len(data),
		Data:      buf,
		Truncated: truncated,
	}
}

// StateChangeEvent captures connection and fail-safe lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (disconnect reason name, if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntityFailsafe indicates a fail-safe output state change.
	StateEntityFailsafe StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityFailsafe:
		return "FAILSAFE"
	default:
		return "UNKNOWN"
	}
}

// OutputEvent captures a command issued to the I/O capability.
type OutputEvent struct {
	// Channel is the output channel written.
	Channel int `cbor:"1,keyasint"`

	// State is the commanded level.
	State bool `cbor:"2,keyasint"`

	// Failed is set when the capability rejected the command.
	Failed bool `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures a failed operation.
type ErrorEventData struct {
	// Stage names the operation that failed (connect, write, read).
	Stage string `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Reason is the classified disconnect reason, if one was computed.
	Reason string `cbor:"3,keyasint,omitempty"`
}
