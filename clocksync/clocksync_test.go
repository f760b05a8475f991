package clocksync

import (
	"os"
	"testing"
	"time"

	"github.com/ValentinKolb/tcpIO/netio"
	"github.com/ValentinKolb/tcpIO/netio/common"
)

func TestMain(m *testing.M) {
	common.InitLoggers("error")
	os.Exit(m.Run())
}

// TestOffsetConvergesOnSameHost verifies that a client syncing against a
// server on the same host estimates a near-zero offset
func TestOffsetConvergesOnSameHost(t *testing.T) {
	srv, err := CreateServer("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	defer srv.Close()

	client, err := CreateClient(srv.Addr())
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	// wait for at least one completed round
	impl := client.(*synchronizer)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		impl.offsetMu.Lock()
		rounds := impl.rounds
		impl.offsetMu.Unlock()
		if rounds > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	impl.offsetMu.Lock()
	rounds := impl.rounds
	impl.offsetMu.Unlock()
	if rounds == 0 {
		t.Fatal("Client never completed a sync round")
	}

	// both clocks are the same physical clock, the estimate must be small
	if off := client.Offset(); off < -500*time.Millisecond || off > 500*time.Millisecond {
		t.Errorf("Expected a near-zero offset on the same host, got %v", off)
	}

	// Now must be local time plus offset
	now := client.Now()
	if d := now.Sub(time.Now().Add(client.Offset())); d < -50*time.Millisecond || d > 50*time.Millisecond {
		t.Errorf("Now deviates from local clock + offset by %v", d)
	}
}

// TestServerIgnoresUnknownRequests verifies that garbage datagrams neither
// crash nor stop the server
func TestServerIgnoresUnknownRequests(t *testing.T) {
	srv, err := CreateServer("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	defer srv.Close()

	// fire a garbage datagram at the server
	probe, err := CreateClient(srv.Addr())
	if err != nil {
		t.Fatalf("Failed to create probe client: %v", err)
	}
	probeImpl := probe.(*synchronizer)
	if _, err := probeImpl.conn.Write([]byte("garbage")); err != nil {
		t.Fatalf("Failed to send garbage: %v", err)
	}
	probe.Close()

	// the server must still be running and answering
	client, err := CreateClient(srv.Addr())
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	impl := client.(*synchronizer)
	ok := false
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		impl.offsetMu.Lock()
		ok = impl.rounds > 0
		impl.offsetMu.Unlock()
		if ok {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !ok {
		t.Error("Server stopped answering after an unknown request")
	}
}

// TestCloseLifecycle verifies the synchronizer follows the same lifecycle
// discipline as the connections
func TestCloseLifecycle(t *testing.T) {
	srv, err := CreateServer("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	if srv.State() != netio.StateOpen {
		t.Errorf("Expected state open, got %v", srv.State())
	}

	srv.Close()
	srv.Close()

	if srv.State() != netio.StateClosed {
		t.Errorf("Expected state closed after Close, got %v", srv.State())
	}
}
