package dio

import (
	"sync"

	"github.com/rs/zerolog"
)

// Simulated is an in-memory Capability. Writing an output also sets the
// input of the same channel, so a test can observe what the supervisor
// commanded through either half of the interface.
type Simulated struct {
	mu      sync.Mutex
	outputs map[Channel]bool
	inputs  map[Channel]bool
	writes  int
	closed  bool
	logger  zerolog.Logger
}

// NewSimulated creates a Simulated backend. Every call is logged at info
// level on logger.
func NewSimulated(logger zerolog.Logger) *Simulated {
	return &Simulated{
		outputs: make(map[Channel]bool),
		inputs:  make(map[Channel]bool),
		logger:  logger,
	}
}

// Name identifies the backend in logs.
func (s *Simulated) Name() string {
	return "simulated"
}

// SetOutput records state for channel and mirrors it onto the input line.
func (s *Simulated) SetOutput(channel Channel, state bool) error {
	if err := channel.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.outputs[channel] = state
	s.inputs[channel] = state
	s.writes++

	s.logger.Info().Int("channel", int(channel)).Bool("state", state).Msg("SetOutput")
	return nil
}

// GetInput returns the last state mirrored or injected on channel.
// Unknown channels read false.
func (s *Simulated) GetInput(channel Channel) (bool, error) {
	if err := channel.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}
	state := s.inputs[channel]

	s.logger.Info().Int("channel", int(channel)).Bool("state", state).Msg("GetInput")
	return state, nil
}

// SetInput injects an input level, as if an external signal changed.
func (s *Simulated) SetInput(channel Channel, state bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs[channel] = state
}

// Output returns the last commanded level of channel and whether it was
// ever written.
func (s *Simulated) Output(channel Channel) (state, written bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, written = s.outputs[channel]
	return state, written
}

// Writes returns the number of successful SetOutput calls.
func (s *Simulated) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Close marks the backend closed; later calls fail with ErrClosed.
func (s *Simulated) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
