package failsafe

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ratchanon22/hostlink/pkg/dio"
	"github.com/Ratchanon22/hostlink/pkg/dio/mocks"
)

func TestOutputInitialState(t *testing.T) {
	o := NewOutput(dio.NewSimulated(zerolog.Nop()))

	assert.Equal(t, StateUnknown, o.State())
	assert.Equal(t, dio.FailsafeChannel, o.Channel())
	asserts, clears := o.Counts()
	assert.Zero(t, asserts)
	assert.Zero(t, clears)
}

func TestOutputAssertClear(t *testing.T) {
	sim := dio.NewSimulated(zerolog.Nop())
	o := NewOutput(sim)

	require.NoError(t, o.Assert())
	assert.Equal(t, StateAsserted, o.State())
	level, written := sim.Output(dio.FailsafeChannel)
	assert.True(t, written)
	assert.True(t, level)

	readback, err := o.Readback()
	require.NoError(t, err)
	assert.True(t, readback)

	require.NoError(t, o.Clear())
	assert.Equal(t, StateCleared, o.State())
	level, _ = sim.Output(dio.FailsafeChannel)
	assert.False(t, level)

	asserts, clears := o.Counts()
	assert.Equal(t, 1, asserts)
	assert.Equal(t, 1, clears)
}

func TestOutputUsesConfiguredChannel(t *testing.T) {
	capability := mocks.NewMockCapability(t)
	capability.EXPECT().SetOutput(dio.Channel(5), true).Return(nil).Once()

	o := NewOutput(capability, WithChannel(5))
	assert.NoError(t, o.Assert())
}

func TestOutputCapabilityFailure(t *testing.T) {
	capability := mocks.NewMockCapability(t)
	boom := errors.New("board offline")
	capability.EXPECT().SetOutput(dio.FailsafeChannel, true).Return(boom).Once()
	capability.EXPECT().SetOutput(dio.FailsafeChannel, false).Return(nil).Once()

	var buf bytes.Buffer
	o := NewOutput(capability, WithLogger(zerolog.New(&buf)))

	err := o.Assert()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateAsserted, o.State(), "state records the commanded level")
	assert.Equal(t, 1, o.Failures())
	assert.Contains(t, buf.String(), "fail-safe output command failed")

	// The next transition still issues its command.
	require.NoError(t, o.Clear())
	assert.Equal(t, StateCleared, o.State())
}

func TestOutputCallbacks(t *testing.T) {
	type change struct{ from, to State }
	var changes []change
	var commands []bool

	o := NewOutput(dio.NewSimulated(zerolog.Nop()),
		OnStateChange(func(from, to State) { changes = append(changes, change{from, to}) }),
		OnCommand(func(level bool, err error) {
			assert.NoError(t, err)
			commands = append(commands, level)
		}),
	)

	require.NoError(t, o.Assert())
	require.NoError(t, o.Assert())
	require.NoError(t, o.Clear())

	assert.Equal(t, []bool{true, true, false}, commands)
	assert.Equal(t, []change{
		{StateUnknown, StateAsserted},
		{StateAsserted, StateCleared},
	}, changes)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "UNKNOWN", StateUnknown.String())
	assert.Equal(t, "ASSERTED", StateAsserted.String())
	assert.Equal(t, "CLEARED", StateCleared.String())
	assert.Equal(t, "State(7)", State(7).String())
}
