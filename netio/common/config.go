package common

import (
	"fmt"
	"strings"
)

const (
	// DefaultPollIntervalMs is the bounded wait of one read poll in the
	// connection's background loop
	DefaultPollIntervalMs = 1

	// DefaultAcceptPollIntervalMs is the bounded wait of one accept poll in
	// the server's background loop
	DefaultAcceptPollIntervalMs = 5

	// DefaultReadChunkSize is the maximum number of bytes read from the
	// socket in one loop iteration
	DefaultReadChunkSize = 4096

	// DefaultWriteTimeoutSec bounds one send attempt of the background loop
	DefaultWriteTimeoutSec = 5
)

// --------------------------------------------------------------------------
// Socket level configuration
// --------------------------------------------------------------------------

// SocketConf holds socket buffer settings (a value of 0 keeps the OS default)
type SocketConf struct {
	ReadBufferSize  int
	WriteBufferSize int
}

// TCPConf holds TCP specific settings, ignored by non-TCP connectors
type TCPConf struct {
	// TCPNoDelay disables Nagle's algorithm
	TCPNoDelay bool
	// TCPKeepAliveSec enables keep-alive with the given period (0 = off)
	TCPKeepAliveSec int
	// TCPLingerSec sets the linger time (-1 = OS default)
	TCPLingerSec int
}

// --------------------------------------------------------------------------
// Connection configuration struct
// --------------------------------------------------------------------------

// ConnectionConfig holds all tuning parameters of a single connection and
// its background read/write loop.
type ConnectionConfig struct {
	SocketConf SocketConf
	TCPConf    TCPConf

	// PollIntervalMs bounds how long one read poll may block. It also
	// bounds how quickly the loop observes a close request.
	PollIntervalMs int

	// ReadChunkSize is the size of the read buffer, i.e. the maximum size
	// of one inbound packet.
	ReadChunkSize int

	// WriteTimeoutSec bounds one send attempt. A timed out send counts as
	// a failed send and closes the connection (0 = no deadline).
	WriteTimeoutSec int
}

// DefaultConnectionConfig returns the configuration used when the caller
// passes the zero value
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		TCPConf:         TCPConf{TCPNoDelay: true, TCPLingerSec: -1},
		PollIntervalMs:  DefaultPollIntervalMs,
		ReadChunkSize:   DefaultReadChunkSize,
		WriteTimeoutSec: DefaultWriteTimeoutSec,
	}
}

// Normalized returns a copy with all unset values replaced by their defaults
func (c ConnectionConfig) Normalized() ConnectionConfig {
	if c.PollIntervalMs <= 0 {
		c.PollIntervalMs = DefaultPollIntervalMs
	}
	if c.ReadChunkSize <= 0 {
		c.ReadChunkSize = DefaultReadChunkSize
	}
	return c
}

// String returns a formatted string representation of the configuration
func (c ConnectionConfig) String() string {
	var sb strings.Builder

	addSection(&sb, "Connection")
	addField(&sb, "Poll Interval", fmt.Sprintf("%d ms", c.PollIntervalMs))
	addField(&sb, "Read Chunk Size", fmt.Sprintf("%d bytes", c.ReadChunkSize))
	addField(&sb, "Write Timeout", fmt.Sprintf("%d sec", c.WriteTimeoutSec))

	addSection(&sb, "Socket")
	addField(&sb, "Read Buffer", fmt.Sprintf("%d bytes", c.SocketConf.ReadBufferSize))
	addField(&sb, "Write Buffer", fmt.Sprintf("%d bytes", c.SocketConf.WriteBufferSize))

	addSection(&sb, "TCP")
	addField(&sb, "No Delay", fmt.Sprintf("%t", c.TCPConf.TCPNoDelay))
	addField(&sb, "Keep Alive", fmt.Sprintf("%d sec", c.TCPConf.TCPKeepAliveSec))
	addField(&sb, "Linger", fmt.Sprintf("%d sec", c.TCPConf.TCPLingerSec))

	return sb.String()
}

// --------------------------------------------------------------------------
// Server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all tuning parameters of a listening server. Accepted
// connections inherit the embedded ConnectionConfig.
type ServerConfig struct {
	Connection ConnectionConfig

	// AcceptPollIntervalMs bounds how long one accept poll may block
	AcceptPollIntervalMs int

	// LogLevel is the level at which logs will be output (debug, info,
	// warn, error)
	LogLevel string
}

// DefaultServerConfig returns the configuration used when the caller passes
// the zero value
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Connection:           DefaultConnectionConfig(),
		AcceptPollIntervalMs: DefaultAcceptPollIntervalMs,
		LogLevel:             "info",
	}
}

// Normalized returns a copy with all unset values replaced by their defaults
func (c ServerConfig) Normalized() ServerConfig {
	c.Connection = c.Connection.Normalized()
	if c.AcceptPollIntervalMs <= 0 {
		c.AcceptPollIntervalMs = DefaultAcceptPollIntervalMs
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}

// String returns a formatted string representation of the configuration
func (c ServerConfig) String() string {
	var sb strings.Builder

	addSection(&sb, "Server")
	addField(&sb, "Accept Poll Interval", fmt.Sprintf("%d ms", c.AcceptPollIntervalMs))
	addField(&sb, "Log Level", c.LogLevel)

	sb.WriteString(c.Connection.String())
	return sb.String()
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func addSection(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
}

func addField(sb *strings.Builder, name, value string) {
	sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
}
