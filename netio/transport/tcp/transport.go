package tcp

import (
	"fmt"
	"net"
	"time"

	"github.com/ValentinKolb/tcpIO/netio/common"
	"github.com/ValentinKolb/tcpIO/netio/transport"
)

// connector implements the IConnector interface for TCP sockets
type connector struct{}

// NewTCPConnector creates a new TCP connector
func NewTCPConnector() transport.IConnector {
	return &connector{}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IConnector)
// --------------------------------------------------------------------------

func (c *connector) GetName() string {
	return "tcp"
}

func (c *connector) Dial(endpoint string) (net.Conn, error) {
	return net.Dial("tcp", endpoint)
}

func (c *connector) Listen(endpoint string) (net.Listener, error) {
	// Create TCP socket listener
	listener, err := net.Listen("tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create TCP socket: %v", err)
	}

	return listener, nil
}

// UpgradeConnection applies performance optimizations to a TCP connection
// using configuration values from TCPConf and SocketConf
func (c *connector) UpgradeConnection(conn net.Conn, conf common.ConnectionConfig) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil // Not a TCP connection, nothing to upgrade
	}

	// Disable Nagle's algorithm (TCPNoDelay) if configured
	if err := tcpConn.SetNoDelay(conf.TCPConf.TCPNoDelay); err != nil {
		return err
	}

	// Set socket write buffer size if configured
	if conf.SocketConf.WriteBufferSize > 0 {
		if err := tcpConn.SetWriteBuffer(conf.SocketConf.WriteBufferSize); err != nil {
			return err
		}
	}

	// Set socket read buffer size if configured
	if conf.SocketConf.ReadBufferSize > 0 {
		if err := tcpConn.SetReadBuffer(conf.SocketConf.ReadBufferSize); err != nil {
			return err
		}
	}

	// Enable TCP keep-alive if configured
	if conf.TCPConf.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}

		// Set keep-alive period
		keepAlivePeriod := time.Duration(conf.TCPConf.TCPKeepAliveSec) * time.Second
		if err := tcpConn.SetKeepAlivePeriod(keepAlivePeriod); err != nil {
			return err
		}
	}

	// Set TCP linger option if configured
	if conf.TCPConf.TCPLingerSec >= 0 {
		if err := tcpConn.SetLinger(conf.TCPConf.TCPLingerSec); err != nil {
			return err
		}
	}

	return nil
}
