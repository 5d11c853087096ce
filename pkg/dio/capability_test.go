package dio

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelValidate(t *testing.T) {
	for _, ch := range []Channel{0, 7, 8, 63} {
		assert.NoError(t, ch.Validate(), "channel %d", ch)
	}
	for _, ch := range []Channel{-1, 64, 1000} {
		err := ch.Validate()
		assert.True(t, errors.Is(err, ErrInvalidChannel), "channel %d: %v", ch, err)
	}
}

func TestChannelPortMask(t *testing.T) {
	tests := []struct {
		ch   Channel
		port uint8
		mask uint8
	}{
		{0, 0, 0x01},
		{7, 0, 0x80},
		{8, 1, 0x01},
		{13, 1, 0x20},
		{63, 7, 0x80},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.port, tt.ch.Port(), "port of %d", tt.ch)
		assert.Equal(t, tt.mask, tt.ch.Mask(), "mask of %d", tt.ch)
	}
}

func TestSimulated(t *testing.T) {
	t.Run("OutputMirrorsToInput", func(t *testing.T) {
		s := NewSimulated(zerolog.Nop())

		require.NoError(t, s.SetOutput(FailsafeChannel, true))
		in, err := s.GetInput(FailsafeChannel)
		require.NoError(t, err)
		assert.True(t, in)

		require.NoError(t, s.SetOutput(FailsafeChannel, false))
		in, err = s.GetInput(FailsafeChannel)
		require.NoError(t, err)
		assert.False(t, in)
		assert.Equal(t, 2, s.Writes())
	})

	t.Run("UnknownChannelReadsFalse", func(t *testing.T) {
		s := NewSimulated(zerolog.Nop())
		in, err := s.GetInput(5)
		require.NoError(t, err)
		assert.False(t, in)

		_, written := s.Output(5)
		assert.False(t, written)
	})

	t.Run("InjectedInput", func(t *testing.T) {
		s := NewSimulated(zerolog.Nop())
		s.SetInput(3, true)
		in, err := s.GetInput(3)
		require.NoError(t, err)
		assert.True(t, in)
	})

	t.Run("InvalidChannel", func(t *testing.T) {
		s := NewSimulated(zerolog.Nop())
		assert.ErrorIs(t, s.SetOutput(64, true), ErrInvalidChannel)
		_, err := s.GetInput(-1)
		assert.ErrorIs(t, err, ErrInvalidChannel)
		assert.Equal(t, 0, s.Writes())
	})

	t.Run("Closed", func(t *testing.T) {
		s := NewSimulated(zerolog.Nop())
		require.NoError(t, s.Close())
		assert.ErrorIs(t, s.SetOutput(0, true), ErrClosed)
		_, err := s.GetInput(0)
		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestNewFactory(t *testing.T) {
	t.Run("Simulated", func(t *testing.T) {
		b, err := New(Settings{Simulated: true}, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "simulated", b.Name())
		assert.NoError(t, b.Close())
	})

	t.Run("HardwareWithoutPort", func(t *testing.T) {
		_, err := New(Settings{}, zerolog.Nop())
		assert.ErrorIs(t, err, ErrNoDevicePort)
	})

	t.Run("HardwareMissingPort", func(t *testing.T) {
		_, err := New(Settings{DevicePort: "/dev/hostlink-does-not-exist"}, zerolog.Nop())
		assert.Error(t, err)
	})
}
