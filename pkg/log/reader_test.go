package log

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.clog")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)
	for _, e := range events {
		logger.Log(e)
	}
	require.NoError(t, logger.Close())
	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, event)
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	now := time.Now()
	path := createTestLogFile(t, []Event{
		{Timestamp: now, ConnectionID: "conn-1", Direction: DirectionOut, Category: CategoryMessage},
		{Timestamp: now, ConnectionID: "conn-1", Direction: DirectionIn, Category: CategoryMessage},
		{Timestamp: now, ConnectionID: "conn-2", Direction: DirectionLocal, Category: CategoryState},
	})

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	read := readAll(t, reader)
	require.Len(t, read, 3)
	assert.Equal(t, DirectionOut, read[0].Direction)
	assert.Equal(t, DirectionIn, read[1].Direction)
	assert.Equal(t, "conn-2", read[2].ConnectionID)
}

func TestReaderHandlesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.clog")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderHandlesTruncatedFile(t *testing.T) {
	path := createTestLogFile(t, []Event{
		{Timestamp: time.Now(), ConnectionID: "conn-1", Frame: NewFrameEvent([]byte("Hello Device"))},
	})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-4], 0644))

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Next()
	require.Error(t, err)
	assert.NotEqual(t, io.EOF, err, "truncation must not look like a clean end")
}

func TestReaderFilterByConnectionID(t *testing.T) {
	path := createTestLogFile(t, []Event{
		{Timestamp: time.Now(), ConnectionID: "conn-1"},
		{Timestamp: time.Now(), ConnectionID: "conn-2"},
		{Timestamp: time.Now(), ConnectionID: "conn-1"},
	})

	reader, err := NewFilteredReader(path, Filter{ConnectionID: "conn-1"})
	require.NoError(t, err)
	defer reader.Close()

	read := readAll(t, reader)
	assert.Len(t, read, 2)
	for _, e := range read {
		assert.Equal(t, "conn-1", e.ConnectionID)
	}
}

func TestReaderFilterByCategoryAndDirection(t *testing.T) {
	path := createTestLogFile(t, []Event{
		{Timestamp: time.Now(), Direction: DirectionOut, Category: CategoryMessage},
		{Timestamp: time.Now(), Direction: DirectionIn, Category: CategoryMessage},
		{Timestamp: time.Now(), Direction: DirectionLocal, Category: CategoryError},
	})

	category := CategoryMessage
	direction := DirectionIn
	reader, err := NewFilteredReader(path, Filter{Category: &category, Direction: &direction})
	require.NoError(t, err)
	defer reader.Close()

	read := readAll(t, reader)
	require.Len(t, read, 1)
	assert.Equal(t, DirectionIn, read[0].Direction)
}

func TestReaderFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	path := createTestLogFile(t, []Event{
		{Timestamp: base, ConnectionID: "early"},
		{Timestamp: base.Add(time.Minute), ConnectionID: "middle"},
		{Timestamp: base.Add(2 * time.Minute), ConnectionID: "late"},
	})

	start := base.Add(30 * time.Second)
	end := base.Add(2 * time.Minute)
	reader, err := NewFilteredReader(path, Filter{TimeStart: &start, TimeEnd: &end})
	require.NoError(t, err)
	defer reader.Close()

	read := readAll(t, reader)
	require.Len(t, read, 1)
	assert.Equal(t, "middle", read[0].ConnectionID)
}

func TestReaderMissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "nope.clog"))
	assert.Error(t, err)
}
