package netio

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/tcpIO/lib/queue"
	"github.com/ValentinKolb/tcpIO/lib/task"
	"github.com/ValentinKolb/tcpIO/netio/common"
	"github.com/ValentinKolb/tcpIO/netio/transport"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("netio")

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// connection implements the IConnection interface.
//
// Every shared resource has its own dedicated lock: the socket handle is
// guarded by connMu, the lifecycle state by stateMu, and each packet queue
// serializes itself internally. When the background loop needs the socket
// and a queue together it acquires connMu first, then the queue lock. The
// last-active timestamp is an atomic so readers never wait behind a socket
// write in progress.
type connection struct {
	id         string
	remoteAddr string
	conf       common.ConnectionConfig

	connMu sync.Mutex
	conn   net.Conn

	lastActive atomic.Int64 // unix nanoseconds

	stateMu sync.Mutex
	state   State

	inQueue  queue.IPacketQueue
	outQueue queue.IPacketQueue

	task *task.Task

	// onTerminated is invoked once from the background loop after the
	// terminal transition to StateClosed (used by the server registry)
	onTerminated func(c *connection)
}

// -----------------------------------------------------------
// Connection Factory Methods
// -----------------------------------------------------------

// Connect opens a connection to the given endpoint using the given transport
// connector. Any dial or upgrade failure is returned as an error, never
// raised otherwise. On success the connection is in StateOpen and its
// background read/write loop is already running.
func Connect(connector transport.IConnector, endpoint string, conf common.ConnectionConfig) (IConnection, error) {
	conf = conf.Normalized()

	raw, err := connector.Dial(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s (%s): %v", endpoint, connector.GetName(), err)
	}

	// Apply socket options
	if err := connector.UpgradeConnection(raw, conf); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("failed to upgrade connection to %s: %v", endpoint, err)
	}

	c := newConnection(raw, conf, nil)
	metricConnectionsDialed.Inc()

	Logger.Infof("Connected to %s (%s)", c.remoteAddr, connector.GetName())
	return c, nil
}

// newConnection wraps an established socket into a connection and starts its
// background loop. Used by Connect and by the server's accept loop.
func newConnection(raw net.Conn, conf common.ConnectionConfig, onTerminated func(c *connection)) *connection {
	c := &connection{
		id:           uuid.NewString(),
		remoteAddr:   raw.RemoteAddr().String(),
		conf:         conf,
		conn:         raw,
		state:        StateOpen,
		inQueue:      queue.NewPacketQueue(),
		outQueue:     queue.NewPacketQueue(),
		onTerminated: onTerminated,
	}
	c.lastActive.Store(time.Now().UnixNano())

	c.task = task.New(c.run)
	c.task.Start()
	return c
}

// --------------------------------------------------------------------------
// Interface Methods (docu see netio.IConnection)
// --------------------------------------------------------------------------

func (c *connection) ID() string {
	return c.id
}

func (c *connection) RemoteAddr() string {
	return c.remoteAddr
}

func (c *connection) LastActive() time.Time {
	return time.Unix(0, c.lastActive.Load())
}

func (c *connection) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *connection) IsOpen() bool {
	return c.State() == StateOpen
}

func (c *connection) SendData(data []byte) bool {
	if !c.IsOpen() {
		return false
	}
	c.outQueue.Append(data)
	return true
}

func (c *connection) SendString(s string) bool {
	return c.SendData([]byte(s))
}

func (c *connection) ReceiveData() []byte {
	// unlocked peek, ExtractAll re-checks under the queue lock
	if c.inQueue.SizeHint() == 0 {
		return []byte{}
	}
	return c.inQueue.ExtractAll()
}

func (c *connection) ReceiveN(n int) []byte {
	return c.inQueue.Extract(n)
}

func (c *connection) ReceiveString(delim byte) string {
	data, found := c.inQueue.ExtractDelim(delim)
	if !found {
		return ""
	}
	return string(data)
}

func (c *connection) Close() {
	if c.IsOpen() {
		c.setState(StateClosing)
	}
	c.task.Signal()
	c.task.Join()
}

// --------------------------------------------------------------------------
// Background loop
// --------------------------------------------------------------------------

// run is the body of the connection's background execution unit. It drains
// the outbound queue and polls the socket for inbound data until the state
// leaves StateOpen, then releases the socket and transitions to StateClosed
// unconditionally.
func (c *connection) run(stop <-chan struct{}) {
	buf := make([]byte, c.conf.ReadChunkSize)
	poll := time.Duration(c.conf.PollIntervalMs) * time.Millisecond

	for c.IsOpen() {
		select {
		case <-stop:
			c.setState(StateClosing)
			continue
		default:
		}

		c.drainOutQueue()
		c.readIncoming(buf, poll)
	}

	// unconditional cleanup, even when the loop was left via an error
	c.connMu.Lock()
	if err := c.conn.Close(); err != nil {
		Logger.Debugf("Connection %s: close: %v", c.id, err)
	}
	c.connMu.Unlock()

	c.setState(StateClosed)
	metricConnectionsClosed.Inc()

	Logger.Debugf("Connection %s to %s closed", c.id, c.remoteAddr)

	if c.onTerminated != nil {
		c.onTerminated(c)
	}
}

// drainOutQueue sends all queued outbound packets in order. A failed or
// timed out send transitions the state to StateClosing and aborts the drain.
func (c *connection) drainOutQueue() {
	// this may give a wrong result, but requires no locking - PopPacket
	// re-checks under the queue lock
	if c.outQueue.SizeHint() == 0 {
		return
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	for {
		packet, ok := c.outQueue.PopPacket()
		if !ok {
			return
		}

		if c.conf.WriteTimeoutSec > 0 {
			timeout := time.Duration(c.conf.WriteTimeoutSec) * time.Second
			if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
				Logger.Errorf("Connection %s: failed to set write deadline: %v", c.id, err)
				c.setState(StateClosing)
				return
			}
		}

		if _, err := c.conn.Write(packet); err != nil {
			Logger.Warningf("Connection %s: send to %s failed: %v", c.id, c.remoteAddr, err)
			c.setState(StateClosing)
			return
		}

		c.lastActive.Store(time.Now().UnixNano())
		metricBytesSent.Add(len(packet))
		metricPacketsSent.Inc()
		metricPacketSizeSent.Update(float64(len(packet)))
	}
}

// readIncoming reads available inbound data, blocking at most one poll
// interval per read. Every received chunk is appended to the inbound queue
// with its exact length; EOF or a real error transitions to StateClosing.
func (c *connection) readIncoming(buf []byte, poll time.Duration) {
	for c.IsOpen() {
		c.connMu.Lock()
		if err := c.conn.SetReadDeadline(time.Now().Add(poll)); err != nil {
			c.connMu.Unlock()
			Logger.Errorf("Connection %s: failed to set read deadline: %v", c.id, err)
			c.setState(StateClosing)
			return
		}

		n, err := c.conn.Read(buf)
		c.connMu.Unlock()

		if n > 0 {
			c.lastActive.Store(time.Now().UnixNano())
			c.inQueue.Append(buf[:n])
			metricBytesReceived.Add(n)
			metricPacketsReceived.Inc()
			metricPacketSizeReceived.Update(float64(n))
		}

		if err == nil {
			continue
		}

		// Case timeout: no data within the poll interval, continue with writing
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return
		}

		// Case EOF: peer has shut down
		if errors.Is(err, io.EOF) {
			Logger.Debugf("Connection %s: closed by peer %s", c.id, c.remoteAddr)
			c.setState(StateClosing)
			return
		}

		// Case error: log and close
		Logger.Warningf("Connection %s: receive from %s failed: %v", c.id, c.remoteAddr, err)
		c.setState(StateClosing)
		return
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// setState advances the lifecycle state. Transitions are monotonic, a
// request to move backwards is ignored.
func (c *connection) setState(s State) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if s > c.state {
		c.state = s
	}
}
