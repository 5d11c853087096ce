package dio

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// PortDevice is a byte-organised digital I/O board.
type PortDevice interface {
	// ReadOutputPort returns the current output latch of port.
	ReadOutputPort(port uint8) (uint8, error)

	// ReadInputPort returns the input levels of port.
	ReadInputPort(port uint8) (uint8, error)

	// WritePort replaces the output latch of port.
	WritePort(port, value uint8) error
}

// Bitmapped adapts a PortDevice to the single-bit Capability contract.
type Bitmapped struct {
	// mu serialises read-modify-write cycles on the output latch.
	mu     sync.Mutex
	dev    PortDevice
	name   string
	logger zerolog.Logger
}

// NewBitmapped wraps dev. name is used in logs (e.g. the serial port path).
func NewBitmapped(dev PortDevice, name string, logger zerolog.Logger) *Bitmapped {
	return &Bitmapped{
		dev:    dev,
		name:   name,
		logger: logger,
	}
}

// Name identifies the backend in logs.
func (b *Bitmapped) Name() string {
	return "bitmapped:" + b.name
}

// SetOutput sets or clears the channel bit, leaving the other seven bits of
// the port untouched.
func (b *Bitmapped) SetOutput(channel Channel, state bool) error {
	if err := channel.Validate(); err != nil {
		return err
	}
	port, mask := channel.Port(), channel.Mask()

	b.mu.Lock()
	defer b.mu.Unlock()

	current, err := b.dev.ReadOutputPort(port)
	if err != nil {
		return fmt.Errorf("read output port %d: %w", port, err)
	}

	next := current &^ mask
	if state {
		next = current | mask
	}
	if err := b.dev.WritePort(port, next); err != nil {
		return fmt.Errorf("write output port %d: %w", port, err)
	}

	b.logger.Info().
		Int("channel", int(channel)).
		Uint8("port", port).
		Uint8("mask", mask).
		Bool("state", state).
		Msg("SetOutput")
	return nil
}

// GetInput reads the channel bit from its input port.
func (b *Bitmapped) GetInput(channel Channel) (bool, error) {
	if err := channel.Validate(); err != nil {
		return false, err
	}
	port, mask := channel.Port(), channel.Mask()

	b.mu.Lock()
	defer b.mu.Unlock()

	value, err := b.dev.ReadInputPort(port)
	if err != nil {
		return false, fmt.Errorf("read input port %d: %w", port, err)
	}
	state := value&mask != 0

	b.logger.Info().
		Int("channel", int(channel)).
		Uint8("port", port).
		Bool("state", state).
		Msg("GetInput")
	return state, nil
}

// Close releases the device if it owns a resource.
func (b *Bitmapped) Close() error {
	if c, ok := b.dev.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
