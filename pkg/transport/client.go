package transport

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ratchanon22/hostlink/pkg/disconnect"
)

// DefaultConnectTimeout bounds a connection attempt.
const DefaultConnectTimeout = 5 * time.Second

// ErrConnectionClosed is returned for I/O on a locally closed Conn.
var ErrConnectionClosed = errors.New("connection closed")

// Dialer opens bounded connections to an Endpoint.
type Dialer struct {
	// Timeout bounds the connection attempt (default: 5s).
	Timeout time.Duration
}

// Dial connects to ep. The attempt ends at the earlier of Timeout and ctx.
// On success the Result is OK and the returned Conn must be closed by the
// caller; otherwise the Conn is nil.
func (d Dialer) Dial(ctx context.Context, ep Endpoint) (*Conn, Result) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	var nd net.Dialer
	nc, err := nd.DialContext(dialCtx, "tcp", ep.String())
	elapsed := time.Since(start)
	if err != nil {
		r := resultFromError(disconnect.StageConnect, err)
		r.Elapsed = elapsed
		return nil, r
	}

	return newConn(nc), Result{
		Status:  StatusOK,
		Stage:   disconnect.StageConnect,
		Elapsed: elapsed,
	}
}

// Conn is one supervised connection. Write and Read are meant to be called
// from a single goroutine; Close may be called from any.
type Conn struct {
	conn net.Conn
	id   string

	closeOnce sync.Once
	closed    chan struct{}
}

func newConn(nc net.Conn) *Conn {
	return &Conn{
		conn:   nc,
		id:     uuid.New().String(),
		closed: make(chan struct{}),
	}
}

// ID returns the unique identifier of this connection.
func (c *Conn) ID() string {
	return c.id
}

// LocalAddr returns the local network address.
func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Open reports whether Close has not been called.
func (c *Conn) Open() bool {
	select {
	case <-c.closed:
		return false
	default:
		return true
	}
}

// Write sends p, bounded by deadline and ctx.
func (c *Conn) Write(ctx context.Context, p []byte, deadline time.Time) Result {
	start := time.Now()
	r := c.do(ctx, disconnect.StageWrite, deadline, func() (int, error) {
		return c.conn.Write(p)
	})
	r.Elapsed = time.Since(start)
	return r
}

// Read performs one read into buf, bounded by deadline and ctx. A
// successful Result carries a copy of the bytes read. A zero-byte read
// reports StatusClosed.
func (c *Conn) Read(ctx context.Context, buf []byte, deadline time.Time) Result {
	start := time.Now()
	var n int
	r := c.do(ctx, disconnect.StageRead, deadline, func() (int, error) {
		var err error
		n, err = c.conn.Read(buf)
		return n, err
	})
	r.Elapsed = time.Since(start)

	if n > 0 {
		// Data that arrived before an error is still a successful read;
		// the error resurfaces on the next call.
		r.Status = StatusOK
		r.Err = nil
		r.Data = append([]byte(nil), buf[:n]...)
		return r
	}
	if r.OK() {
		r.Status = StatusClosed
	}
	return r
}

func (c *Conn) do(ctx context.Context, stage disconnect.Stage, deadline time.Time, op func() (int, error)) Result {
	if !c.Open() {
		return Result{Status: StatusError, Stage: stage, Err: ErrConnectionClosed}
	}
	if err := ctx.Err(); err != nil {
		return Result{Status: StatusTimedOut, Stage: stage, Err: err}
	}

	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return resultFromError(stage, err)
	}

	// Cancellation moves the deadline to now, unblocking the call.
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
	})
	_, err := op()
	stop()

	if err != nil && ctx.Err() != nil {
		return Result{Status: StatusTimedOut, Stage: stage, Err: ctx.Err()}
	}
	if err != nil && !c.Open() {
		return Result{Status: StatusError, Stage: stage, Err: ErrConnectionClosed}
	}
	return resultFromError(stage, err)
}

// Close closes the connection. It is safe to call Close multiple times.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}
