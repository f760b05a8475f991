package clocksync

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/tcpIO/lib/task"
	"github.com/ValentinKolb/tcpIO/netio"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("clocksync")

const (
	// wire format: 6 byte magic, followed by the server's clock reading as
	// int64 nanoseconds (big endian) in responses
	requestMagic  = "rqTime"
	responseMagic = "reTime"
	responseSize  = 6 + 8

	// requestIntervalMs is the pause between two client rounds
	requestIntervalMs = 453

	// responseTimeoutSec bounds the client's wait for one response
	responseTimeoutSec = 1

	// serverPollMs bounds one read poll of the server loop (and therefore
	// how quickly it observes a close request)
	serverPollMs = 50
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ISynchronizer is the application-facing interface of a running clock
// synchronizer (either mode). All methods are safe for concurrent use.
type ISynchronizer interface {
	// Addr returns the local UDP address the synchronizer is bound to
	Addr() string

	// Offset returns the current smoothed clock offset (always zero in
	// server mode and before the first completed client round)
	Offset() time.Duration

	// Now returns the local clock corrected by the current offset
	Now() time.Time

	// State returns the current lifecycle state
	State() netio.State

	// Close requests shutdown and blocks until the background loop has
	// terminated. Idempotent.
	Close()
}

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type mode int

const (
	modeServer mode = iota
	modeClient
)

// synchronizer implements ISynchronizer for both modes
type synchronizer struct {
	mode mode
	conn *net.UDPConn

	stateMu sync.Mutex
	state   netio.State

	offsetMu sync.Mutex
	offset   time.Duration
	rounds   uint64 // completed client rounds, guarded by offsetMu

	task *task.Task
}

// -----------------------------------------------------------
// Synchronizer Factory Methods
// -----------------------------------------------------------

// CreateServer binds a UDP socket on the given endpoint (e.g. ":9053") and
// starts answering time requests.
func CreateServer(endpoint string) (ISynchronizer, error) {
	addr, err := net.ResolveUDPAddr("udp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %v", endpoint, err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind UDP socket on %s: %v", endpoint, err)
	}

	s := newSynchronizer(modeServer, conn)
	Logger.Infof("Clock sync server listening on %s", conn.LocalAddr())
	return s, nil
}

// CreateClient connects a UDP socket to the given server endpoint and starts
// the periodic offset estimation.
func CreateClient(endpoint string) (ISynchronizer, error) {
	addr, err := net.ResolveUDPAddr("udp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %v", endpoint, err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to open UDP socket to %s: %v", endpoint, err)
	}

	s := newSynchronizer(modeClient, conn)
	Logger.Infof("Clock sync client targeting %s", endpoint)
	return s, nil
}

func newSynchronizer(m mode, conn *net.UDPConn) *synchronizer {
	s := &synchronizer{
		mode:  m,
		conn:  conn,
		state: netio.StateOpen,
	}
	s.task = task.New(s.run)
	s.task.Start()
	return s
}

// --------------------------------------------------------------------------
// Interface Methods (docu see clocksync.ISynchronizer)
// --------------------------------------------------------------------------

func (s *synchronizer) Addr() string {
	return s.conn.LocalAddr().String()
}

func (s *synchronizer) Offset() time.Duration {
	s.offsetMu.Lock()
	defer s.offsetMu.Unlock()
	return s.offset
}

func (s *synchronizer) Now() time.Time {
	return time.Now().Add(s.Offset())
}

func (s *synchronizer) State() netio.State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *synchronizer) Close() {
	if s.State() == netio.StateOpen {
		s.setState(netio.StateClosing)
	}
	s.task.Signal()
	s.task.Join()
}

// --------------------------------------------------------------------------
// Background loop
// --------------------------------------------------------------------------

func (s *synchronizer) run(stop <-chan struct{}) {
	if s.mode == modeServer {
		s.runServer(stop)
	} else {
		s.runClient(stop)
	}

	// unconditional cleanup
	if err := s.conn.Close(); err != nil {
		Logger.Debugf("Clock sync: close: %v", err)
	}
	s.setState(netio.StateClosed)
}

// runServer answers every valid request datagram with the current clock
func (s *synchronizer) runServer(stop <-chan struct{}) {
	buf := make([]byte, 64)
	response := make([]byte, responseSize)
	copy(response, responseMagic)

	for s.State() == netio.StateOpen {
		select {
		case <-stop:
			s.setState(netio.StateClosing)
			continue
		default:
		}

		_ = s.conn.SetReadDeadline(time.Now().Add(serverPollMs * time.Millisecond))
		n, remote, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			Logger.Warningf("Clock sync server: receive failed: %v", err)
			s.setState(netio.StateClosing)
			continue
		}

		if !bytes.Equal(buf[:n], []byte(requestMagic)) {
			Logger.Warningf("Clock sync server: unknown request from %s: %q", remote, buf[:n])
			continue
		}

		binary.BigEndian.PutUint64(response[6:], uint64(time.Now().UnixNano()))
		if _, err := s.conn.WriteToUDP(response, remote); err != nil {
			Logger.Warningf("Clock sync server: send to %s failed: %v", remote, err)
		}
	}
}

// runClient performs one request/response round per interval and folds each
// new offset sample into the smoothed estimate
func (s *synchronizer) runClient(stop <-chan struct{}) {
	buf := make([]byte, 64)

	for s.State() == netio.StateOpen {
		s.clientRound(buf)

		select {
		case <-stop:
			s.setState(netio.StateClosing)
		case <-time.After(requestIntervalMs * time.Millisecond):
		}
	}
}

// clientRound sends one time request and processes the response. Timeouts
// and malformed answers are logged and skipped.
func (s *synchronizer) clientRound(buf []byte) {
	start := time.Now()

	if _, err := s.conn.Write([]byte(requestMagic)); err != nil {
		Logger.Warningf("Clock sync client: request failed: %v", err)
		return
	}

	_ = s.conn.SetReadDeadline(start.Add(responseTimeoutSec * time.Second))
	n, err := s.conn.Read(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			Logger.Warningf("Clock sync client: server timeout")
			return
		}
		Logger.Warningf("Clock sync client: receive failed: %v", err)
		return
	}

	if n != responseSize || string(buf[:6]) != responseMagic {
		Logger.Warningf("Clock sync client: unknown answer: %q", buf[:n])
		return
	}

	// half the round trip approximates the one-way latency
	latency := time.Since(start) / 2
	serverTime := time.Unix(0, int64(binary.BigEndian.Uint64(buf[6:n]))).Add(latency)
	sample := serverTime.Sub(time.Now())

	s.offsetMu.Lock()
	if s.rounds == 0 {
		s.offset = sample
	} else {
		s.offset = (s.offset*4 + sample) / 5
	}
	s.rounds++
	s.offsetMu.Unlock()

	Logger.Debugf("Clock sync client: latency %v, sample %v, smoothed offset %v", latency, sample, s.Offset())
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// setState advances the lifecycle state, transitions are monotonic
func (s *synchronizer) setState(state netio.State) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if state > s.state {
		s.state = state
	}
}
