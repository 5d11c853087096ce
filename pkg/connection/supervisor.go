package connection

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ratchanon22/hostlink/pkg/audit"
	"github.com/Ratchanon22/hostlink/pkg/dio"
	"github.com/Ratchanon22/hostlink/pkg/disconnect"
	"github.com/Ratchanon22/hostlink/pkg/failsafe"
	"github.com/Ratchanon22/hostlink/pkg/log"
	"github.com/Ratchanon22/hostlink/pkg/metrics"
	"github.com/Ratchanon22/hostlink/pkg/transport"
)

// ErrAlreadyRunning is returned when Run is called on a running Supervisor.
var ErrAlreadyRunning = errors.New("supervisor already running")

// Config holds the supervisor timing.
type Config struct {
	// ConnectTimeout bounds each connection attempt (default: 5s).
	ConnectTimeout time.Duration

	// Heartbeat configures the per-cycle exchange.
	Heartbeat transport.HeartbeatConfig

	// RetryDelay is the delay before the next connection attempt
	// (default: 10s).
	RetryDelay time.Duration

	// MaxRetryDelay enables exponential backoff when above RetryDelay.
	MaxRetryDelay time.Duration
}

// DefaultConfig returns the default supervisor configuration.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout: transport.DefaultConnectTimeout,
		Heartbeat:      transport.DefaultHeartbeatConfig(),
		RetryDelay:     DefaultRetryDelay,
	}
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = transport.DefaultConnectTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	c.Heartbeat = c.Heartbeat.WithDefaults()
	return c
}

// Disconnect describes one classified failure.
type Disconnect struct {
	Time    time.Time
	Reason  disconnect.Reason
	Failure disconnect.Failure

	// WasConnected is true when the failure ended an established
	// connection, false when a connection attempt failed.
	WasConnected bool
}

// Supervisor keeps the device link alive and the fail-safe output in step
// with it. Create one with New; it is not reusable concurrently.
type Supervisor struct {
	endpoint transport.Endpoint
	config   Config

	dialer     transport.LinkDialer
	classifier disconnect.Classifier
	failsafe   *failsafe.Output
	backoff    *Backoff

	logger  zerolog.Logger
	events  log.Logger
	audit   audit.Writer
	metrics bool
	now     func() time.Time

	state   atomic.Uint32
	running atomic.Bool

	// connID identifies the connection the current fail-safe command
	// belongs to. Only touched on the Run goroutine.
	connID string

	// Callbacks
	onStateChange func(oldState, newState State)
	onDisconnect  func(d Disconnect)
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithConfig sets the timing configuration.
func WithConfig(cfg Config) Option {
	return func(s *Supervisor) { s.config = cfg }
}

// WithLogger sets the operational logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Supervisor) { s.logger = logger }
}

// WithAuditWriter sets where disconnect records go (default: the audit
// package's default file).
func WithAuditWriter(w audit.Writer) Option {
	return func(s *Supervisor) { s.audit = w }
}

// WithEventLogger enables link-event capture.
func WithEventLogger(l log.Logger) Option {
	return func(s *Supervisor) { s.events = l }
}

// WithClassifier replaces the disconnect classifier.
func WithClassifier(c disconnect.Classifier) Option {
	return func(s *Supervisor) { s.classifier = c }
}

// WithMetrics enables recording into the metrics package collectors.
func WithMetrics(enabled bool) Option {
	return func(s *Supervisor) { s.metrics = enabled }
}

// WithDialer replaces the transport dialer.
func WithDialer(d transport.LinkDialer) Option {
	return func(s *Supervisor) { s.dialer = d }
}

// WithClock replaces the audit timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) { s.now = now }
}

// OnStateChange registers a callback for every state transition. It runs on
// the supervisor goroutine after the fail-safe command for that transition.
func OnStateChange(fn func(oldState, newState State)) Option {
	return func(s *Supervisor) { s.onStateChange = fn }
}

// OnDisconnect registers a callback for every classified failure.
func OnDisconnect(fn func(d Disconnect)) Option {
	return func(s *Supervisor) { s.onDisconnect = fn }
}

// New creates a Supervisor for endpoint driving the fail-safe line of
// capability.
func New(endpoint transport.Endpoint, capability dio.Capability, opts ...Option) *Supervisor {
	s := &Supervisor{
		endpoint: endpoint,
		config:   DefaultConfig(),
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.config = s.config.withDefaults()
	if s.dialer == nil {
		s.dialer = transport.Dialer{Timeout: s.config.ConnectTimeout}
	}
	if s.audit == nil {
		s.audit = audit.NewFileWriter(audit.DefaultPath)
	}
	s.backoff = NewBackoffWithConfig(RetryPolicy(s.config.RetryDelay, s.config.MaxRetryDelay))

	s.failsafe = failsafe.NewOutput(capability,
		failsafe.WithLogger(s.logger),
		failsafe.OnCommand(s.failsafeCommanded),
		failsafe.OnStateChange(s.failsafeChanged),
	)

	return s
}

// Run supervises the link until ctx is cancelled, then returns nil.
func Run(ctx context.Context, endpoint transport.Endpoint, capability dio.Capability, opts ...Option) error {
	return New(endpoint, capability, opts...).Run(ctx)
}

// State returns the current connection state.
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

// Failsafe returns the fail-safe output driven by this supervisor.
func (s *Supervisor) Failsafe() *failsafe.Output {
	return s.failsafe
}

// Endpoint returns the supervised endpoint.
func (s *Supervisor) Endpoint() transport.Endpoint {
	return s.endpoint
}

// Run supervises the link until ctx is cancelled. It returns nil on
// cancellation and ErrAlreadyRunning if another Run is active.
func (s *Supervisor) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	s.logger.Info().
		Str("endpoint", s.endpoint.String()).
		Dur("connect_timeout", s.config.ConnectTimeout).
		Dur("operation_timeout", s.config.Heartbeat.OperationTimeout).
		Msg("supervisor started")
	if s.metrics {
		metrics.SetConnected(false, s.endpoint.String())
	}

	for ctx.Err() == nil {
		connID, failure := s.connectAndServe(ctx)
		if ctx.Err() != nil {
			break
		}
		s.handleFailure(connID, failure)

		delay := s.backoff.Next()
		s.logger.Info().Dur("delay", delay).Int("attempt", s.backoff.Attempts()).Msg("retrying")
		if !sleep(ctx, delay) {
			break
		}
	}

	s.logger.Info().Msg("supervisor stopped")
	return nil
}

// connectAndServe runs one outer-loop iteration: a connection attempt and,
// on success, heartbeat cycles until the link fails. The connection is
// closed on every return path. The returned failure is meaningless when
// ctx was cancelled.
func (s *Supervisor) connectAndServe(ctx context.Context) (string, disconnect.Failure) {
	s.logger.Info().Str("endpoint", s.endpoint.String()).Msg("attempting to connect")
	if s.metrics {
		metrics.ConnectAttemptsTotal.Inc()
	}

	conn, res := s.dialer.Dial(ctx, s.endpoint)
	if !res.OK() {
		return uuid.New().String(), res.Failure()
	}
	defer conn.Close()

	s.connected(conn)

	payload := []byte(s.config.Heartbeat.Payload)
	for {
		r := transport.Exchange(ctx, conn, s.config.Heartbeat)
		if ctx.Err() != nil {
			return conn.ID(), disconnect.Failure{}
		}
		if s.metrics {
			metrics.RecordHeartbeat(r.Status.String(), r.Elapsed)
		}
		if r.Stage == disconnect.StageRead {
			s.logger.Info().Str("payload", string(payload)).Msg("sent")
			s.logFrame(conn.ID(), log.DirectionOut, payload)
		}

		switch r.Status {
		case transport.StatusOK:
			s.logFrame(conn.ID(), log.DirectionIn, r.Data)
			s.logger.Info().
				Str("hex", transport.HexString(r.Data)).
				Str("text", transport.DecodeText(r.Data)).
				Int("bytes", len(r.Data)).
				Msg("received")
			if !sleep(ctx, s.config.Heartbeat.Interval) {
				return conn.ID(), disconnect.Failure{}
			}

		case transport.StatusTimedOut:
			s.logger.Warn().
				Str("stage", r.Stage.String()).
				Dur("budget", s.config.Heartbeat.OperationTimeout).
				Msg("operation timed out, continuing")

		case transport.StatusClosed:
			s.logger.Warn().Msg("device closed the connection")
			return conn.ID(), r.Failure()

		case transport.StatusAborted:
			s.logger.Warn().Err(r.Err).Msg("connection reset by the device during an active operation")
			return conn.ID(), r.Failure()

		default:
			s.logger.Error().Err(r.Err).Str("stage", r.Stage.String()).Msg("heartbeat error")
			return conn.ID(), r.Failure()
		}
	}
}

// connected performs the AttemptingConnect to Connected transition.
func (s *Supervisor) connected(conn *transport.Conn) {
	s.logger.Info().
		Str("endpoint", s.endpoint.String()).
		Str("conn_id", conn.ID()).
		Str("local", conn.LocalAddr().String()).
		Str("remote", conn.RemoteAddr().String()).
		Msg("connected to device")

	s.connID = conn.ID()
	_ = s.failsafe.Clear()
	s.transition(conn.ID(), StateConnected, "")
	s.backoff.Reset()
}

// handleFailure classifies a failure, performs the Connected to
// AttemptingConnect transition if needed, and appends the audit record.
func (s *Supervisor) handleFailure(connID string, f disconnect.Failure) {
	reason := s.classifier.Classify(f)
	wasConnected := s.State() == StateConnected

	if wasConnected {
		s.connID = connID
		_ = s.failsafe.Assert()
		s.transition(connID, StateAttemptingConnect, reason.String())
		s.logger.Warn().
			Str("reason", reason.String()).
			Str("stage", f.Stage.String()).
			Msg("connection lost")
	} else {
		s.logger.Warn().
			Str("reason", reason.String()).
			Str("error", f.Error()).
			Msg("retry failed")
	}

	rec := audit.Record{Timestamp: s.now(), Reason: reason}
	if err := s.audit.Append(rec); err != nil {
		s.logger.Error().Err(err).Msg("failed to append audit record")
	}

	if s.metrics {
		metrics.RecordDisconnect(reason.String())
	}
	s.logEvent(log.Event{
		ConnectionID: connID,
		Direction:    log.DirectionLocal,
		Category:     log.CategoryError,
		Error: &log.ErrorEventData{
			Stage:   f.Stage.String(),
			Message: f.Error(),
			Reason:  reason.String(),
		},
	})

	if s.onDisconnect != nil {
		s.onDisconnect(Disconnect{
			Time:         rec.Timestamp,
			Reason:       reason,
			Failure:      f,
			WasConnected: wasConnected,
		})
	}
}

func (s *Supervisor) transition(connID string, newState State, reason string) {
	oldState := State(s.state.Swap(uint32(newState)))
	if oldState == newState {
		return
	}

	if s.metrics {
		metrics.SetConnected(newState == StateConnected, s.endpoint.String())
	}
	s.logEvent(log.Event{
		ConnectionID: connID,
		Direction:    log.DirectionLocal,
		Category:     log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState.String(),
			NewState: newState.String(),
			Reason:   reason,
		},
	})
	if s.onStateChange != nil {
		s.onStateChange(oldState, newState)
	}
}

func (s *Supervisor) failsafeCommanded(level bool, err error) {
	if s.metrics {
		metrics.RecordFailsafe(level, err)
	}
	s.logEvent(log.Event{
		ConnectionID: s.connID,
		Direction:    log.DirectionLocal,
		Category:     log.CategoryOutput,
		Output: &log.OutputEvent{
			Channel: int(s.failsafe.Channel()),
			State:   level,
			Failed:  err != nil,
		},
	})
}

func (s *Supervisor) failsafeChanged(oldState, newState failsafe.State) {
	s.logEvent(log.Event{
		ConnectionID: s.connID,
		Direction:    log.DirectionLocal,
		Category:     log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityFailsafe,
			OldState: oldState.String(),
			NewState: newState.String(),
		},
	})
}

func (s *Supervisor) logFrame(connID string, direction log.Direction, data []byte) {
	s.logEvent(log.Event{
		ConnectionID: connID,
		Direction:    direction,
		Category:     log.CategoryMessage,
		Frame:        log.NewFrameEvent(data),
	})
}

func (s *Supervisor) logEvent(e log.Event) {
	if s.events == nil {
		return
	}
	e.Timestamp = time.Now()
	e.Endpoint = s.endpoint.String()
	s.events.Log(e)
}

// sleep waits for d or until ctx is done. It reports whether the full
// delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
