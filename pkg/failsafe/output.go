package failsafe

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Ratchanon22/hostlink/pkg/dio"
)

// State is the last level commanded on the fail-safe line.
type State uint8

const (
	// StateUnknown means no command has been issued yet.
	StateUnknown State = iota

	// StateAsserted means the line was driven true (link down).
	StateAsserted

	// StateCleared means the line was driven false (link up).
	StateCleared
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "UNKNOWN"
	case StateAsserted:
		return "ASSERTED"
	case StateCleared:
		return "CLEARED"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Output drives the fail-safe line of a capability.
type Output struct {
	mu sync.Mutex

	capability dio.Capability
	channel    dio.Channel
	logger     zerolog.Logger

	// Current state
	state State

	// Statistics
	asserts  int
	clears   int
	failures int

	// Callbacks
	onStateChange func(oldState, newState State)
	onCommand     func(state bool, err error)
}

// Option configures an Output.
type Option func(*Output)

// WithChannel overrides the fail-safe channel (default: dio.FailsafeChannel).
func WithChannel(ch dio.Channel) Option {
	return func(o *Output) { o.channel = ch }
}

// WithLogger sets the operational logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Output) { o.logger = logger }
}

// OnStateChange registers a callback for every state change.
func OnStateChange(fn func(oldState, newState State)) Option {
	return func(o *Output) { o.onStateChange = fn }
}

// OnCommand registers a callback invoked after every capability call with
// the commanded level and the call's error.
func OnCommand(fn func(state bool, err error)) Option {
	return func(o *Output) { o.onCommand = fn }
}

// NewOutput creates an Output on capability.
func NewOutput(capability dio.Capability, opts ...Option) *Output {
	o := &Output{
		capability: capability,
		channel:    dio.FailsafeChannel,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Assert drives the line true.
func (o *Output) Assert() error {
	return o.command(true)
}

// Clear drives the line false.
func (o *Output) Clear() error {
	return o.command(false)
}

func (o *Output) command(level bool) error {
	o.mu.Lock()

	err := o.capability.SetOutput(o.channel, level)

	oldState := o.state
	newState := StateCleared
	if level {
		newState = StateAsserted
		o.asserts++
	} else {
		o.clears++
	}
	if err != nil {
		o.failures++
	}
	o.state = newState

	onStateChange := o.onStateChange
	onCommand := o.onCommand
	o.mu.Unlock()

	if err != nil {
		o.logger.Error().Err(err).
			Int("channel", int(o.channel)).
			Bool("state", level).
			Msg("fail-safe output command failed")
		err = fmt.Errorf("set fail-safe channel %d to %t: %w", o.channel, level, err)
	} else {
		o.logger.Info().
			Int("channel", int(o.channel)).
			Bool("state", level).
			Msg("fail-safe output set")
	}

	if onCommand != nil {
		onCommand(level, err)
	}
	if onStateChange != nil && oldState != newState {
		onStateChange(oldState, newState)
	}
	return err
}

// Readback reads the fail-safe channel's input line.
func (o *Output) Readback() (bool, error) {
	return o.capability.GetInput(o.channel)
}

// State returns the last commanded state.
func (o *Output) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Channel returns the fail-safe channel.
func (o *Output) Channel() dio.Channel {
	return o.channel
}

// Counts returns how many assert and clear commands were issued.
func (o *Output) Counts() (asserts, clears int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.asserts, o.clears
}

// Failures returns how many commands the capability rejected.
func (o *Output) Failures() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failures
}
