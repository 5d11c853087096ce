package dio

import (
	"fmt"
	"strconv"
	"sync"
)

// Emulator is the device side of the line protocol: eight output latches
// and eight input bytes. Inputs follow outputs unless overridden, which
// matches a board with its outputs looped back to its inputs.
type Emulator struct {
	mu       sync.Mutex
	outputs  [8]uint8
	inputs   [8]uint8
	override [8]bool
	fail     string
}

// NewEmulator creates an Emulator with all lines low.
func NewEmulator() *Emulator {
	return &Emulator{}
}

// Handle answers one request line.
func (e *Emulator) Handle(req string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.fail != "" {
		return replyErr + " " + e.fail
	}
	if len(req) < 2 {
		return replyErr + " short request"
	}

	cmd, rest := req[0], req[1:]
	switch cmd {
	case cmdReadOutput, cmdReadInput:
		port, err := parsePort(rest)
		if err != nil {
			return replyErr + " " + err.Error()
		}
		if cmd == cmdReadOutput {
			return fmt.Sprintf("%02X", e.outputs[port])
		}
		if e.override[port] {
			return fmt.Sprintf("%02X", e.inputs[port])
		}
		return fmt.Sprintf("%02X", e.outputs[port])
	case cmdWrite:
		if len(rest) < 3 {
			return replyErr + " short write"
		}
		port, err := parsePort(rest[:len(rest)-2])
		if err != nil {
			return replyErr + " " + err.Error()
		}
		v, err := strconv.ParseUint(rest[len(rest)-2:], 16, 8)
		if err != nil {
			return replyErr + " bad value"
		}
		e.outputs[port] = uint8(v)
		return replyOK
	default:
		return replyErr + " unknown command"
	}
}

// SetInputPort overrides the input byte of port.
func (e *Emulator) SetInputPort(port, value uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inputs[port%8] = value
	e.override[port%8] = true
}

// OutputPort returns the output latch of port.
func (e *Emulator) OutputPort(port uint8) uint8 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outputs[port%8]
}

// Fail makes every request answer "ERR msg". An empty msg clears it.
func (e *Emulator) Fail(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail = msg
}

func parsePort(s string) (uint8, error) {
	p, err := strconv.ParseUint(s, 10, 8)
	if err != nil || p > 7 {
		return 0, fmt.Errorf("bad port %q", s)
	}
	return uint8(p), nil
}
