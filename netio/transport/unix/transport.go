package unix

import (
	"fmt"
	"net"

	"github.com/ValentinKolb/tcpIO/netio/common"
	"github.com/ValentinKolb/tcpIO/netio/transport"
)

// connector implements the IConnector interface for unix domain sockets
type connector struct{}

// NewUnixConnector creates a new unix domain socket connector
func NewUnixConnector() transport.IConnector {
	return &connector{}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IConnector)
// --------------------------------------------------------------------------

func (c *connector) GetName() string {
	return "unix"
}

func (c *connector) Dial(endpoint string) (net.Conn, error) {
	return net.Dial("unix", endpoint)
}

func (c *connector) Listen(endpoint string) (net.Listener, error) {
	listener, err := net.Listen("unix", endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket: %v", err)
	}

	return listener, nil
}

func (c *connector) UpgradeConnection(conn net.Conn, conf common.ConnectionConfig) error {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil // Not a unix socket, nothing to upgrade
	}

	// Set socket write buffer size if configured
	if conf.SocketConf.WriteBufferSize > 0 {
		if err := unixConn.SetWriteBuffer(conf.SocketConf.WriteBufferSize); err != nil {
			return err
		}
	}

	// Set socket read buffer size if configured
	if conf.SocketConf.ReadBufferSize > 0 {
		if err := unixConn.SetReadBuffer(conf.SocketConf.ReadBufferSize); err != nil {
			return err
		}
	}

	return nil
}
