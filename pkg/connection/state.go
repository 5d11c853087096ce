package connection

// State is the supervisor's connection state.
type State uint32

const (
	// StateAttemptingConnect means no connection is confirmed.
	StateAttemptingConnect State = iota

	// StateConnected means a connection is established.
	StateConnected
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateAttemptingConnect:
		return "ATTEMPTING_CONNECT"
	case StateConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}
