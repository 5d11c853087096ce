package dio

import (
	"errors"
	"fmt"
	"io"
)

// MaxChannel is the highest addressable channel (8 ports of 8 bits).
const MaxChannel Channel = 63

// FailsafeChannel is the output line reserved for the fail-safe indicator.
const FailsafeChannel Channel = 0

// Errors returned by backends.
var (
	ErrInvalidChannel = errors.New("invalid channel")
	ErrClosed         = errors.New("capability closed")
)

// Channel identifies a single-bit output or input line.
type Channel int

// Validate reports whether c is addressable.
func (c Channel) Validate() error {
	if c < 0 || c > MaxChannel {
		return fmt.Errorf("%w: %d (range 0-%d)", ErrInvalidChannel, int(c), int(MaxChannel))
	}
	return nil
}

// Port returns the byte-wide port holding this channel.
func (c Channel) Port() uint8 {
	return uint8(c / 8)
}

// Mask returns the bit mask of this channel within its port.
func (c Channel) Mask() uint8 {
	return uint8(1) << uint(c%8)
}

// Capability is the digital I/O contract consumed by the supervisor.
type Capability interface {
	// SetOutput drives an output line to state.
	SetOutput(channel Channel, state bool) error

	// GetInput reads an input line.
	GetInput(channel Channel) (bool, error)
}

// Backend is a Capability owned by the process, with a name for logs and
// a Close to release the underlying device.
type Backend interface {
	Capability
	io.Closer

	// Name identifies the backend in logs.
	Name() string
}

// Compile-time interface satisfaction checks.
var (
	_ Backend = (*Simulated)(nil)
	_ Backend = (*Bitmapped)(nil)
)
