package netio

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/tcpIO/lib/task"
	"github.com/ValentinKolb/tcpIO/netio/common"
	"github.com/ValentinKolb/tcpIO/netio/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// server implements the IServer interface.
//
// The listening socket is guarded by listenerMu, the lifecycle state by
// stateMu and the queue of pending accepted connections by pendingMu. The
// registry additionally tracks every accepted connection that is still
// alive, whether retrieved by the application or not.
type server struct {
	addr      string
	conf      common.ServerConfig
	connector transport.IConnector

	listenerMu sync.Mutex
	listener   net.Listener

	stateMu sync.Mutex
	state   State

	pendingMu sync.Mutex
	pending   []*connection

	registry *xsync.MapOf[string, *connection]

	task *task.Task
}

// -----------------------------------------------------------
// Server Factory Method
// -----------------------------------------------------------

// CreateServer binds and listens on the given endpoint using the given
// transport connector. Any bind or listen failure is returned as an error.
// On success the server is in StateOpen and its accept loop is already
// running.
func CreateServer(connector transport.IConnector, endpoint string, conf common.ServerConfig) (IServer, error) {
	conf = conf.Normalized()

	listener, err := connector.Listen(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s (%s): %v", endpoint, connector.GetName(), err)
	}

	s := &server{
		addr:      listener.Addr().String(),
		conf:      conf,
		connector: connector,
		listener:  listener,
		state:     StateOpen,
		registry:  xsync.NewMapOf[string, *connection](),
	}

	s.task = task.New(s.run)
	s.task.Start()

	Logger.Infof("Starting %s server on %s", connector.GetName(), s.addr)
	return s, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see netio.IServer)
// --------------------------------------------------------------------------

func (s *server) Addr() string {
	return s.addr
}

func (s *server) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *server) IsOpen() bool {
	return s.State() == StateOpen
}

func (s *server) GetIncomingConnection() IConnection {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}

	c := s.pending[0]
	s.pending = s.pending[1:]
	return c
}

func (s *server) Connections() []IConnection {
	conns := make([]IConnection, 0)
	s.registry.Range(func(_ string, c *connection) bool {
		conns = append(conns, c)
		return true
	})
	return conns
}

func (s *server) Close() {
	if s.IsOpen() {
		s.setState(StateClosing)
	}
	s.task.Signal()
	s.task.Join()

	// Force-close every connection never retrieved by the application so
	// no background units are leaked. The sweep runs after the accept loop
	// has terminated, so an accept still in flight during the close request
	// cannot slip a live connection in behind it.
	s.pendingMu.Lock()
	pending := s.pending
	s.pending = nil
	s.pendingMu.Unlock()

	for _, c := range pending {
		c.Close()
	}
}

// --------------------------------------------------------------------------
// Background loop
// --------------------------------------------------------------------------

// run is the body of the server's background execution unit: a bounded-poll
// accept loop. On exit the listening socket is released and the state
// transitions to StateClosed unconditionally.
func (s *server) run(stop <-chan struct{}) {
	poll := time.Duration(s.conf.AcceptPollIntervalMs) * time.Millisecond

	for s.IsOpen() {
		select {
		case <-stop:
			s.setState(StateClosing)
			continue
		default:
		}

		s.acceptOne(poll)
	}

	s.listenerMu.Lock()
	if err := s.listener.Close(); err != nil {
		Logger.Debugf("Server %s: close listener: %v", s.addr, err)
	}
	s.listenerMu.Unlock()

	s.setState(StateClosed)
	Logger.Infof("Server on %s closed", s.addr)
}

// acceptOne polls for one incoming connection, blocking at most one poll
// interval. An accepted socket is wrapped into a connection (whose own
// background loop starts immediately) and appended to the pending queue.
func (s *server) acceptOne(poll time.Duration) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	// all stdlib listeners support deadlines, this bounds the wait
	if dl, ok := s.listener.(interface{ SetDeadline(t time.Time) error }); ok {
		if err := dl.SetDeadline(time.Now().Add(poll)); err != nil {
			Logger.Errorf("Server %s: failed to set accept deadline: %v", s.addr, err)
			s.setState(StateClosing)
			return
		}
	}

	raw, err := s.listener.Accept()
	if err != nil {
		// Case timeout: nothing to accept within the poll interval
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return
		}

		// Case error: log and shut down
		Logger.Errorf("Server %s: accept error: %v", s.addr, err)
		metricAcceptErrors.Inc()
		s.setState(StateClosing)
		return
	}

	// Apply socket options; a failed upgrade only discards this socket
	if err := s.connector.UpgradeConnection(raw, s.conf.Connection); err != nil {
		Logger.Warningf("Server %s: failed to upgrade connection from %s: %v", s.addr, raw.RemoteAddr(), err)
		_ = raw.Close()
		return
	}

	c := newConnection(raw, s.conf.Connection, s.unregister)
	s.registry.Store(c.id, c)
	metricConnectionsAccepted.Inc()

	s.pendingMu.Lock()
	s.pending = append(s.pending, c)
	s.pendingMu.Unlock()

	Logger.Debugf("Server %s: accepted connection %s from %s", s.addr, c.id, c.remoteAddr)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// unregister is handed to every accepted connection and runs after its
// terminal transition
func (s *server) unregister(c *connection) {
	s.registry.Delete(c.id)
}

// setState advances the lifecycle state. Transitions are monotonic, a
// request to move backwards is ignored.
func (s *server) setState(state State) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if state > s.state {
		s.state = state
	}
}
