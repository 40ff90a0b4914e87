package dbconn

import "time"

// State is a Connection Manager state.
type State int

const (
	// StateDisconnected is the initial state, before Start.
	StateDisconnected State = iota

	// StateConnecting means a handshake is in flight.
	StateConnecting

	// StateConnected means a handle is available and the schema is in place.
	StateConnected

	// StateFailed means the last attempt failed. It is terminal once the
	// retry budget is exhausted (see Status.Terminal).
	StateFailed
)

var stateNames = [...]string{
	StateDisconnected: "disconnected",
	StateConnecting:   "connecting",
	StateConnected:    "connected",
	StateFailed:       "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Status is a snapshot of the Connection Manager.
type Status struct {
	State     State
	Connected bool

	// Attempts counts every connection attempt made so far, whatever its outcome.
	Attempts int

	// Terminal is set once the retry budget is exhausted; the manager will not
	// try again until the process restarts.
	Terminal bool

	LastError   string
	ConnectedAt time.Time

	// SuspectErrors counts store errors reported through MarkSuspect while connected.
	SuspectErrors int
}
