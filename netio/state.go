package netio

// State is the lifecycle state of a connection or server.
//
// Transitions are monotonic: StateOpen -> StateClosing -> StateClosed. The
// closing state is entered on an explicit close request or on an observed
// I/O failure; the closed state is entered unconditionally by the background
// loop's teardown and is terminal.
type State int32

const (
	// StateOpen means the socket is usable and the background loop runs
	StateOpen State = iota
	// StateClosing means shutdown was requested, the loop finishes its
	// current iteration and tears down
	StateClosing
	// StateClosed is terminal: the socket is released and the background
	// loop has finished
	StateClosed
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
