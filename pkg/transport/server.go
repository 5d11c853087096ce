package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ratchanon22/hostlink/pkg/log"
)

// Responder defaults.
const (
	DefaultAck               = "ACK"
	DefaultResponderBufSize  = 1024
	responderEndpointUnknown = "unknown"
)

// ResponderMode controls how the responder answers each message.
type ResponderMode uint32

const (
	// ModeAck replies with the acknowledgment to every read.
	ModeAck ResponderMode = iota

	// ModeMute reads but never replies, so the peer's reads time out.
	ModeMute

	// ModeHangup closes the connection gracefully after the next read.
	ModeHangup

	// ModeReset aborts the connection with a reset after the next read.
	ModeReset
)

// String returns the mode name.
func (m ResponderMode) String() string {
	switch m {
	case ModeAck:
		return "ack"
	case ModeMute:
		return "mute"
	case ModeHangup:
		return "hangup"
	case ModeReset:
		return "reset"
	default:
		return fmt.Sprintf("ResponderMode(%d)", uint32(m))
	}
}

// ResponderConfig configures a Responder.
type ResponderConfig struct {
	// Address to listen on (e.g. ":5000" or "127.0.0.1:0").
	Address string

	// Ack is the reply sent for every message (default: "ACK").
	Ack string

	// BufferSize is the per-read buffer size (default: 1024).
	BufferSize int

	// Logger receives operational logs.
	Logger zerolog.Logger

	// EventLogger captures link events (optional).
	EventLogger log.Logger

	// OnConnect is called when a client connects.
	OnConnect func(conn *ResponderConn)

	// OnDisconnect is called when a client connection ends.
	OnDisconnect func(conn *ResponderConn)

	// OnMessage is called for every read, before replying.
	OnMessage func(conn *ResponderConn, msg []byte)
}

// Responder is the echo counterpart of the supervisor: it accepts clients
// and answers every read with a fixed acknowledgment.
type Responder struct {
	config   ResponderConfig
	listener net.Listener

	// Active connections
	conns   map[*ResponderConn]struct{}
	connsMu sync.RWMutex

	mode  atomic.Uint32
	ackMu sync.RWMutex
	ack   []byte

	// State
	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewResponder creates a Responder. It does not listen until Start.
func NewResponder(config ResponderConfig) *Responder {
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	if config.Ack == "" {
		config.Ack = DefaultAck
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultResponderBufSize
	}
	return &Responder{
		config: config,
		conns:  make(map[*ResponderConn]struct{}),
		ack:    []byte(config.Ack),
	}
}

// Start listens and begins accepting connections.
func (s *Responder) Start(ctx context.Context) error {
	if s.running.Load() {
		return fmt.Errorf("responder already running")
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running.Store(true)

	s.config.Logger.Info().Str("address", listener.Addr().String()).Msg("listening")

	s.wg.Add(1)
	go s.acceptLoop()

	// Stop when the parent context ends.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-s.ctx.Done()
		_ = s.listener.Close()
	}()

	return nil
}

// Stop closes the listener and every connection and waits for all
// goroutines to finish.
func (s *Responder) Stop() error {
	if !s.running.Swap(false) {
		return nil
	}
	s.cancel()
	_ = s.listener.Close()
	s.CloseAll()
	s.wg.Wait()

	s.config.Logger.Info().Msg("shut down")
	return nil
}

// Addr returns the listen address, or nil before Start.
func (s *Responder) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// ConnectionCount returns the number of active connections.
func (s *Responder) ConnectionCount() int {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	return len(s.conns)
}

// SetMode changes how subsequent reads are answered.
func (s *Responder) SetMode(mode ResponderMode) {
	s.mode.Store(uint32(mode))
}

// Mode returns the current answering mode.
func (s *Responder) Mode() ResponderMode {
	return ResponderMode(s.mode.Load())
}

// SetAck replaces the acknowledgment text.
func (s *Responder) SetAck(ack string) {
	s.ackMu.Lock()
	defer s.ackMu.Unlock()
	s.ack = []byte(ack)
}

// Ack returns the acknowledgment text.
func (s *Responder) Ack() string {
	s.ackMu.RLock()
	defer s.ackMu.RUnlock()
	return string(s.ack)
}

// CloseAll closes every connection gracefully and returns how many there
// were.
func (s *Responder) CloseAll() int {
	return s.forEachConn(func(c *ResponderConn) { _ = c.Close() })
}

// ResetAll aborts every connection with a TCP reset and returns how many
// there were.
func (s *Responder) ResetAll() int {
	return s.forEachConn(func(c *ResponderConn) { _ = c.Reset() })
}

func (s *Responder) forEachConn(fn func(c *ResponderConn)) int {
	s.connsMu.RLock()
	conns := make([]*ResponderConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.connsMu.RUnlock()

	for _, c := range conns {
		fn(c)
	}
	return len(conns)
}

func (s *Responder) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || !s.running.Load() {
				return
			}
			s.config.Logger.Warn().Err(err).Msg("accept error")
			continue
		}

		rc, ok := s.register(conn)
		if !ok {
			return
		}
		s.wg.Add(1)
		go s.handleConnection(rc)
	}
}

// register adds conn to the active set. A connection accepted while Stop
// is running is closed instead, so CloseAll never misses it.
func (s *Responder) register(conn net.Conn) (*ResponderConn, bool) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()

	if !s.running.Load() {
		_ = conn.Close()
		return nil, false
	}

	rc := &ResponderConn{
		conn:       conn,
		responder:  s,
		id:         uuid.New().String(),
		remoteAddr: conn.RemoteAddr(),
		connected:  time.Now(),
	}
	s.conns[rc] = struct{}{}
	return rc, true
}

func (s *Responder) handleConnection(rc *ResponderConn) {
	defer s.wg.Done()

	s.config.Logger.Info().Str("remote", rc.remote()).Msg("connected")
	rc.logState("", "CONNECTED")
	if s.config.OnConnect != nil {
		s.config.OnConnect(rc)
	}

	rc.readLoop()
	_ = rc.Close()

	s.connsMu.Lock()
	delete(s.conns, rc)
	s.connsMu.Unlock()

	s.config.Logger.Info().Str("remote", rc.remote()).Msg("disconnected")
	rc.logState("CONNECTED", "DISCONNECTED")
	if s.config.OnDisconnect != nil {
		s.config.OnDisconnect(rc)
	}
}

// ResponderConn is one client connection of a Responder.
type ResponderConn struct {
	conn       net.Conn
	responder  *Responder
	id         string
	remoteAddr net.Addr
	connected  time.Time
	messages   atomic.Int64

	closeOnce sync.Once
	writeMu   sync.Mutex
}

// ID returns the unique connection identifier.
func (c *ResponderConn) ID() string {
	return c.id
}

// RemoteAddr returns the client address.
func (c *ResponderConn) RemoteAddr() net.Addr {
	return c.remoteAddr
}

// Messages returns how many reads this connection has served.
func (c *ResponderConn) Messages() int64 {
	return c.messages.Load()
}

// Close closes the connection gracefully.
func (c *ResponderConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

// Reset aborts the connection: with SO_LINGER set to zero the close sends
// a TCP reset instead of a FIN.
func (c *ResponderConn) Reset() error {
	if tcp, ok := c.conn.(*net.TCPConn); ok {
		_ = tcp.SetLinger(0)
	}
	return c.Close()
}

func (c *ResponderConn) readLoop() {
	s := c.responder
	buf := make([]byte, s.config.BufferSize)

	for {
		n, err := c.conn.Read(buf)
		if n == 0 || err != nil {
			if err != nil && !errors.Is(err, net.ErrClosed) && s.running.Load() {
				s.config.Logger.Debug().Str("remote", c.remote()).Err(err).Msg("read ended")
			}
			return
		}

		msg := append([]byte(nil), buf[:n]...)
		c.messages.Add(1)
		c.logFrame(log.DirectionIn, msg)
		s.config.Logger.Info().
			Str("remote", c.remote()).
			Str("text", DecodeText(msg)).
			Msg("received")
		if s.config.OnMessage != nil {
			s.config.OnMessage(c, msg)
		}

		switch s.Mode() {
		case ModeMute:
			continue
		case ModeHangup:
			_ = c.Close()
			return
		case ModeReset:
			_ = c.Reset()
			return
		}

		ack := []byte(s.Ack())
		c.writeMu.Lock()
		_, err = c.conn.Write(ack)
		c.writeMu.Unlock()
		if err != nil {
			s.config.Logger.Debug().Str("remote", c.remote()).Err(err).Msg("write failed")
			return
		}
		c.logFrame(log.DirectionOut, ack)
	}
}

func (c *ResponderConn) remote() string {
	if c.remoteAddr == nil {
		return responderEndpointUnknown
	}
	return c.remoteAddr.String()
}

func (c *ResponderConn) logFrame(direction log.Direction, data []byte) {
	if c.responder.config.EventLogger == nil {
		return
	}
	c.responder.config.EventLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.id,
		Direction:    direction,
		Category:     log.CategoryMessage,
		Endpoint:     c.remote(),
		Frame:        log.NewFrameEvent(data),
	})
}

func (c *ResponderConn) logState(oldState, newState string) {
	if c.responder.config.EventLogger == nil {
		return
	}
	c.responder.config.EventLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.id,
		Direction:    log.DirectionLocal,
		Category:     log.CategoryState,
		Endpoint:     c.remote(),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
		},
	})
}

// ResolveListenAddress picks the address a responder should bind.
//
// An empty, unparsable or unbindable ip falls back to the any-address;
// an out-of-range port falls back to DefaultPort. Each fallback is logged.
func ResolveListenAddress(ip string, port int, logger zerolog.Logger) string {
	host := ""
	switch parsed := net.ParseIP(ip); {
	case parsed == nil:
		logger.Warn().Str("ip", ip).Msg("invalid or missing IP, listening on all interfaces")
	case !canBind(parsed):
		logger.Warn().Str("ip", ip).Msg("cannot bind to IP, listening on all interfaces")
	default:
		host = parsed.String()
	}

	if !ValidPort(port) {
		logger.Warn().Int("port", port).Int("default", DefaultPort).Msg("invalid port, using default")
		port = DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func canBind(ip net.IP) bool {
	l, err := net.Listen("tcp", net.JoinHostPort(ip.String(), "0"))
	if err != nil {
		return false
	}
	_ = l.Close()
	return true
}
