package netio

import (
	"bytes"
	"math/rand"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/tcpIO/netio/common"
	"github.com/ValentinKolb/tcpIO/netio/transport/tcp"
)

func TestMain(m *testing.M) {
	// keep the test output free of info logs
	common.InitLoggers("error")
	os.Exit(m.Run())
}

// waitUntil polls cond every few milliseconds until it holds or the timeout
// expires
func waitUntil(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

// newConnectedPair creates a listening server, dials it and retrieves the
// accepted peer connection. All three are closed on test cleanup.
func newConnectedPair(t *testing.T) (client, peer IConnection, srv IServer) {
	t.Helper()
	connector := tcp.NewTCPConnector()

	srv, err := CreateServer(connector, "127.0.0.1:0", common.DefaultServerConfig())
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	t.Cleanup(srv.Close)

	client, err = Connect(connector, srv.Addr(), common.DefaultConnectionConfig())
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(client.Close)

	if !waitUntil(2*time.Second, func() bool {
		peer = srv.GetIncomingConnection()
		return peer != nil
	}) {
		t.Fatal("Server did not deliver the accepted connection")
	}
	t.Cleanup(peer.Close)

	return client, peer, srv
}

// TestPingPong verifies the concrete scenario: sendString("PING\n") on one
// side, receiveString('\n') on the other
func TestPingPong(t *testing.T) {
	client, peer, _ := newConnectedPair(t)

	if !client.SendString("PING\n") {
		t.Fatal("SendString on an open connection returned false")
	}

	var got string
	if !waitUntil(2*time.Second, func() bool {
		got = peer.ReceiveString('\n')
		return got != ""
	}) {
		t.Fatal("Peer never received the line")
	}
	if got != "PING\n" {
		t.Errorf("Expected %q, got %q", "PING\n", got)
	}

	// reply in the other direction
	peer.SendString("PONG\n")
	if !waitUntil(2*time.Second, func() bool {
		got = client.ReceiveString('\n')
		return got != ""
	}) {
		t.Fatal("Client never received the reply")
	}
	if got != "PONG\n" {
		t.Errorf("Expected %q, got %q", "PONG\n", got)
	}
}

// TestReceiveStringWithoutDelimiter verifies that an absent delimiter leaves
// the buffered data untouched
func TestReceiveStringWithoutDelimiter(t *testing.T) {
	client, peer, _ := newConnectedPair(t)

	client.SendString("incomplete")

	// give the data time to arrive, the scan must keep coming back empty
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		if s := peer.ReceiveString('\n'); s != "" {
			t.Fatalf("Expected empty string without delimiter, got %q", s)
		}
		time.Sleep(5 * time.Millisecond)
	}

	// the repeatedly scanned data must still be fully retrievable
	received := make([]byte, 0, 10)
	if !waitUntil(2*time.Second, func() bool {
		received = append(received, peer.ReceiveData()...)
		return len(received) == 10
	}) {
		t.Fatalf("Expected 10 buffered bytes, got %d", len(received))
	}
	if string(received) != "incomplete" {
		t.Errorf("Expected %q, got %q", "incomplete", received)
	}
}

// TestRoundTripSizes verifies that payloads of sizes 1, 1023, 1024 and 1025
// sent individually arrive byte-identical via repeated ReceiveData calls
func TestRoundTripSizes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, size := range []int{1, 1023, 1024, 1025} {
		client, peer, _ := newConnectedPair(t)

		payload := make([]byte, size)
		rng.Read(payload)

		if !client.SendData(payload) {
			t.Fatalf("Size %d: send failed", size)
		}

		received := make([]byte, 0, size)
		if !waitUntil(2*time.Second, func() bool {
			received = append(received, peer.ReceiveData()...)
			return len(received) >= size
		}) {
			t.Fatalf("Size %d: only %d bytes arrived", size, len(received))
		}

		if !bytes.Equal(received, payload) {
			t.Errorf("Size %d: payload not byte-identical", size)
		}
	}
}

// TestChunkedReceive verifies that the reader's chunking of ReceiveN calls
// never changes the reconstructed byte sequence
func TestChunkedReceive(t *testing.T) {
	client, peer, _ := newConnectedPair(t)

	rng := rand.New(rand.NewSource(7))
	payload := make([]byte, 1000)
	rng.Read(payload)

	// send as ten individual packets
	for i := 0; i < 10; i++ {
		if !client.SendData(payload[i*100 : (i+1)*100]) {
			t.Fatalf("Send of packet %d failed", i)
		}
	}

	// read back in odd-sized chunks that do not align with the packets
	received := make([]byte, 0, len(payload))
	if !waitUntil(5*time.Second, func() bool {
		for {
			chunk := peer.ReceiveN(37)
			if len(chunk) == 0 {
				break
			}
			received = append(received, chunk...)
		}
		return len(received) >= len(payload)-36
	}) {
		t.Fatalf("Only %d bytes arrived", len(received))
	}

	// collect the remainder that is smaller than one chunk
	if !waitUntil(2*time.Second, func() bool {
		received = append(received, peer.ReceiveData()...)
		return len(received) == len(payload)
	}) {
		t.Fatalf("Expected %d bytes, got %d", len(payload), len(received))
	}

	if !bytes.Equal(received, payload) {
		t.Error("Reconstructed stream differs from the sent payload")
	}
}

// TestSendOnClosedConnection verifies the misuse semantics: boolean result,
// no error, no panic
func TestSendOnClosedConnection(t *testing.T) {
	client, _, _ := newConnectedPair(t)

	client.Close()

	if client.State() != StateClosed {
		t.Errorf("Expected state closed after Close, got %v", client.State())
	}
	if client.SendData([]byte("data")) {
		t.Error("SendData on a closed connection must return false")
	}
	if client.SendString("data") {
		t.Error("SendString on a closed connection must return false")
	}
	if data := client.ReceiveData(); len(data) != 0 {
		t.Errorf("Expected no buffered data, got %d bytes", len(data))
	}
}

// TestCloseIdempotent verifies that concurrent Close calls result in exactly
// one terminal transition and no double release
func TestCloseIdempotent(t *testing.T) {
	client, _, _ := newConnectedPair(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client.Close()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Concurrent Close calls did not return")
	}

	if client.State() != StateClosed {
		t.Errorf("Expected state closed, got %v", client.State())
	}
}

// TestPeerShutdownDetected verifies that closing one side drives the other
// side to the closed state via its background loop
func TestPeerShutdownDetected(t *testing.T) {
	client, peer, _ := newConnectedPair(t)

	peer.Close()

	if !waitUntil(2*time.Second, func() bool { return client.State() == StateClosed }) {
		t.Errorf("Client did not observe the peer shutdown, state %v", client.State())
	}
}

// TestLastActiveUpdated verifies the activity timestamp moves with traffic
func TestLastActiveUpdated(t *testing.T) {
	client, peer, _ := newConnectedPair(t)

	before := peer.LastActive()
	time.Sleep(20 * time.Millisecond)

	client.SendString("tick")
	if !waitUntil(2*time.Second, func() bool { return peer.LastActive().After(before) }) {
		t.Error("LastActive was not updated on received data")
	}

	// drain so the next test assertion starts clean
	peer.ReceiveData()
}

// TestLastActiveDoesNotBlockOnStalledWrite verifies that the activity
// timestamp stays readable while the background loop is stuck in a send
func TestLastActiveDoesNotBlockOnStalledWrite(t *testing.T) {
	// a raw peer that accepts but never reads, so the socket buffers fill up
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	defer ln.Close()

	hold := make(chan struct{})
	defer close(hold)
	go func() {
		raw, err := ln.Accept()
		if err != nil {
			return
		}
		defer raw.Close()
		<-hold
	}()

	conf := common.DefaultConnectionConfig()
	conf.SocketConf.WriteBufferSize = 4096
	conf.WriteTimeoutSec = 1
	conn, err := Connect(tcp.NewTCPConnector(), ln.Addr().String(), conf)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	// queue far more than the socket buffers hold, the drain must stall
	payload := make([]byte, 1<<20)
	for i := 0; i < 32; i++ {
		conn.SendData(payload)
	}
	time.Sleep(100 * time.Millisecond)

	done := make(chan time.Time, 1)
	go func() { done <- conn.LastActive() }()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("LastActive blocked behind a stalled send")
	}
}

// TestConnectFailure verifies that a refused dial is reported as an error
// value, not a panic
func TestConnectFailure(t *testing.T) {
	connector := tcp.NewTCPConnector()

	// a freshly closed server's port is very likely to refuse connections
	srv, err := CreateServer(connector, "127.0.0.1:0", common.DefaultServerConfig())
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	addr := srv.Addr()
	srv.Close()

	conn, err := Connect(connector, addr, common.DefaultConnectionConfig())
	if err == nil {
		conn.Close()
		t.Fatal("Expected an error when connecting to a closed port")
	}
}
