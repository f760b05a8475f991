package netio

import (
	"time"
)

// --------------------------------------------------------------------------
// Connection
// --------------------------------------------------------------------------

// IConnection is the application-facing interface of one connection.
//
// All methods are safe for concurrent use from any number of goroutines.
// With the exception of Close, no method ever blocks on network I/O - the
// actual transmission and reception happen in the connection's background
// loop, the application only ever touches the in-memory packet queues.
type IConnection interface {
	// ID returns the unique id of this connection
	ID() string

	// RemoteAddr returns the address of the remote endpoint
	RemoteAddr() string

	// LastActive returns the time of the last successful socket activity
	LastActive() time.Time

	// State returns the current lifecycle state
	State() State

	// IsOpen reports whether the connection is in StateOpen
	IsOpen() bool

	// SendData appends the given bytes as one packet to the outbound queue.
	// Returns false without effect if the connection is not open.
	SendData(data []byte) bool

	// SendString sends the given string, see SendData
	SendString(s string) bool

	// ReceiveData removes and returns all currently buffered inbound bytes.
	// Returns an empty slice if nothing is buffered.
	ReceiveData() []byte

	// ReceiveN removes and returns exactly n buffered bytes, or an empty
	// slice if fewer than n bytes are buffered (nothing is removed then).
	ReceiveN(n int) []byte

	// ReceiveString scans the buffered bytes for the first occurrence of
	// delim and returns everything up to and including it as a string. If
	// delim is not buffered, "" is returned and nothing is removed.
	ReceiveString(delim byte) string

	// Close requests shutdown and blocks until the background loop has
	// terminated. Idempotent and safe to call concurrently.
	Close()
}

// --------------------------------------------------------------------------
// Server
// --------------------------------------------------------------------------

// IServer is the application-facing interface of one listening server.
//
// All methods are safe for concurrent use. GetIncomingConnection never
// blocks; Close blocks until the accept loop has terminated.
type IServer interface {
	// Addr returns the address the server is listening on
	Addr() string

	// State returns the current lifecycle state
	State() State

	// IsOpen reports whether the server is in StateOpen
	IsOpen() bool

	// GetIncomingConnection removes and returns the oldest pending accepted
	// connection, or nil if none is pending. Ownership of the returned
	// connection transfers fully to the caller.
	GetIncomingConnection() IConnection

	// Connections returns all accepted connections that are still alive,
	// including those not yet retrieved by the application.
	Connections() []IConnection

	// Close force-closes every pending (never retrieved) connection, then
	// shuts down the accept loop and blocks until it has terminated.
	// Idempotent and safe to call concurrently.
	Close()
}
