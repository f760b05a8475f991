package transport

import (
	"net"

	"github.com/ValentinKolb/tcpIO/netio/common"
)

// IConnector defines the interface for transport-specific socket operations
type IConnector interface {
	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// Dial establishes a single connection to the given endpoint
	Dial(endpoint string) (net.Conn, error)

	// Listen creates a listener on the given endpoint and returns it
	Listen(endpoint string) (net.Listener, error)

	// UpgradeConnection applies protocol-specific settings from the given
	// configuration to an established connection
	UpgradeConnection(conn net.Conn, conf common.ConnectionConfig) error
}
