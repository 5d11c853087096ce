package dio

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Line protocol spoken by LinePortDevice. Requests and replies are ASCII
// lines terminated by '\n'; port numbers are decimal, values two hex digits.
//
//	O<port>         -> <hh>     read output latch
//	I<port>         -> <hh>     read input levels
//	W<port><hh>     -> OK       write output latch
//	any request     -> ERR <m>  device-side failure
const (
	cmdReadOutput = 'O'
	cmdReadInput  = 'I'
	cmdWrite      = 'W'
	replyOK       = "OK"
	replyErr      = "ERR"
)

// DefaultReplyTimeout bounds how long a request waits for its reply.
const DefaultReplyTimeout = 500 * time.Millisecond

// Errors returned by LinePortDevice.
var (
	ErrReplyTimeout = errors.New("device reply timeout")
	ErrDevice       = errors.New("device error")
	ErrBadReply     = errors.New("malformed device reply")
)

// LinePortDevice is a PortDevice speaking the line protocol over a stream.
// Requests are serialised; the device is expected to answer each in turn.
type LinePortDevice struct {
	mu      sync.Mutex
	rw      io.ReadWriteCloser
	timeout time.Duration
	pending []byte
}

// NewLinePortDevice wraps rw. A non-positive timeout selects
// DefaultReplyTimeout.
//
// rw must not block indefinitely in Read: like a serial port with a read
// timeout set, it should return (0, nil) when nothing arrived.
func NewLinePortDevice(rw io.ReadWriteCloser, timeout time.Duration) *LinePortDevice {
	if timeout <= 0 {
		timeout = DefaultReplyTimeout
	}
	return &LinePortDevice{rw: rw, timeout: timeout}
}

// OpenSerial opens a serial port and returns a LinePortDevice on it.
func OpenSerial(name string, baudRate int, timeout time.Duration) (*LinePortDevice, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	dev := NewLinePortDevice(port, timeout)

	// Short poll so readLine can enforce the reply deadline itself.
	if err := port.SetReadTimeout(50 * time.Millisecond); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", name, err)
	}
	return dev, nil
}

// ReadOutputPort implements PortDevice.
func (d *LinePortDevice) ReadOutputPort(port uint8) (uint8, error) {
	return d.readPort(cmdReadOutput, port)
}

// ReadInputPort implements PortDevice.
func (d *LinePortDevice) ReadInputPort(port uint8) (uint8, error) {
	return d.readPort(cmdReadInput, port)
}

// WritePort implements PortDevice.
func (d *LinePortDevice) WritePort(port, value uint8) error {
	reply, err := d.request(fmt.Sprintf("%c%d%02X", cmdWrite, port, value))
	if err != nil {
		return err
	}
	if reply != replyOK {
		return fmt.Errorf("%w: %q", ErrBadReply, reply)
	}
	return nil
}

// Close closes the underlying stream.
func (d *LinePortDevice) Close() error {
	return d.rw.Close()
}

func (d *LinePortDevice) readPort(cmd byte, port uint8) (uint8, error) {
	reply, err := d.request(fmt.Sprintf("%c%d", cmd, port))
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(reply, 16, 8)
	if err != nil || len(reply) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadReply, reply)
	}
	return uint8(v), nil
}

func (d *LinePortDevice) request(line string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := io.WriteString(d.rw, line+"\n"); err != nil {
		return "", fmt.Errorf("write request %q: %w", line, err)
	}

	reply, err := d.readLine(time.Now().Add(d.timeout))
	if err != nil {
		return "", fmt.Errorf("request %q: %w", line, err)
	}
	if reply == replyErr || strings.HasPrefix(reply, replyErr+" ") {
		return "", fmt.Errorf("%w: %s", ErrDevice, strings.TrimSpace(strings.TrimPrefix(reply, replyErr)))
	}
	return reply, nil
}

// readLine returns the next reply line without its terminator.
// Bytes past the newline are kept for the next call.
func (d *LinePortDevice) readLine(deadline time.Time) (string, error) {
	buf := make([]byte, 64)
	for {
		if i := strings.IndexByte(string(d.pending), '\n'); i >= 0 {
			line := strings.TrimRight(string(d.pending[:i]), "\r")
			d.pending = d.pending[i+1:]
			return line, nil
		}
		if time.Now().After(deadline) {
			return "", ErrReplyTimeout
		}

		n, err := d.rw.Read(buf)
		d.pending = append(d.pending, buf[:n]...)
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if n == 0 {
			if errors.Is(err, io.EOF) {
				return "", io.ErrUnexpectedEOF
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
}
