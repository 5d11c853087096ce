package log

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLogger records events for testing
type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.events = append(r.events, event)
}

func TestMultiLoggerCallsAll(t *testing.T) {
	rec1 := &recordingLogger{}
	rec2 := &recordingLogger{}
	rec3 := &recordingLogger{}

	multi := NewMultiLogger(rec1, rec2, rec3)
	multi.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionOut,
		Category:     CategoryMessage,
	})

	for i, rec := range []*recordingLogger{rec1, rec2, rec3} {
		require.Len(t, rec.events, 1, "logger %d", i)
		assert.Equal(t, "conn-123", rec.events[0].ConnectionID, "logger %d", i)
	}
}

func TestMultiLoggerEmptyList(t *testing.T) {
	multi := NewMultiLogger()
	multi.Log(Event{Timestamp: time.Now(), ConnectionID: "conn-123"})
}

func TestMultiLoggerSkipsNil(t *testing.T) {
	rec := &recordingLogger{}
	multi := NewMultiLogger(nil, rec, nil)

	multi.Log(Event{ConnectionID: "conn-456"})

	require.Len(t, rec.events, 1)
	assert.Equal(t, "conn-456", rec.events[0].ConnectionID)
}
