package log

import (
	"github.com/rs/zerolog"
)

// ZerologAdapter mirrors link events into an operational logger at debug
// level. Useful during bring-up to watch the heartbeat on the console.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a ZerologAdapter writing to logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Log writes the event at debug level.
func (a *ZerologAdapter) Log(event Event) {
	e := a.logger.Debug().
		Str("conn_id", event.ConnectionID).
		Str("direction", event.Direction.String()).
		Str("category", event.Category.String())

	if event.Endpoint != "" {
		e = e.Str("endpoint", event.Endpoint)
	}

	switch {
	case event.Frame != nil:
		e = e.Int("frame_size", event.Frame.Size).
			Bool("truncated", event.Frame.Truncated)
	case event.StateChange != nil:
		e = e.Str("entity", event.StateChange.Entity.String()).
			Str("old_state", event.StateChange.OldState).
			Str("new_state", event.StateChange.NewState)
		if event.StateChange.Reason != "" {
			e = e.Str("reason", event.StateChange.Reason)
		}
	case event.Output != nil:
		e = e.Int("channel", event.Output.Channel).
			Bool("state", event.Output.State).
			Bool("failed", event.Output.Failed)
	case event.Error != nil:
		e = e.Str("stage", event.Error.Stage).
			Str("error_msg", event.Error.Message)
		if event.Error.Reason != "" {
			e = e.Str("reason", event.Error.Reason)
		}
	}

	e.Msg("link event")
}

// Compile-time interface satisfaction check.
var _ Logger = (*ZerologAdapter)(nil)
