package queue

import (
	"bytes"
	"sync"
	"testing"
)

// fill appends the given packets to a fresh queue
func fill(packets ...[]byte) IPacketQueue {
	q := NewPacketQueue()
	for _, p := range packets {
		q.Append(p)
	}
	return q
}

// TestSizeInvariant verifies that the aggregate byte count always matches the
// sum of the buffered packet lengths
func TestSizeInvariant(t *testing.T) {
	q := fill([]byte("hello"), []byte("world"), []byte("!"))

	if q.Size() != 11 {
		t.Errorf("Expected size 11, got %d", q.Size())
	}
	if q.Packets() != 3 {
		t.Errorf("Expected 3 packets, got %d", q.Packets())
	}

	q.Extract(7) // splits the second packet
	if q.Size() != 4 {
		t.Errorf("Expected size 4 after extraction, got %d", q.Size())
	}

	q.Clear()
	if q.Size() != 0 || q.Packets() != 0 {
		t.Errorf("Expected empty queue after Clear, got size=%d packets=%d", q.Size(), q.Packets())
	}
}

// TestExtractAcrossPacketBoundaries verifies that Extract(n) followed by
// Extract(remaining) reconstructs the original byte sequence for split
// points on, before and after packet boundaries
func TestExtractAcrossPacketBoundaries(t *testing.T) {
	full := []byte("abcdefghij") // buffered as "abc" + "defg" + "hij"

	for n := 0; n <= len(full); n++ {
		q := fill([]byte("abc"), []byte("defg"), []byte("hij"))

		first := q.Extract(n)
		if len(first) != n {
			t.Fatalf("Extract(%d) returned %d bytes", n, len(first))
		}

		second := q.Extract(len(full) - n)
		got := append(append([]byte{}, first...), second...)

		if !bytes.Equal(got, full) {
			t.Errorf("Split at %d: expected %q, got %q", n, full, got)
		}
		if q.Size() != 0 {
			t.Errorf("Split at %d: expected empty queue, %d bytes left", n, q.Size())
		}
	}
}

// TestExtractInsufficientBytes verifies that Extract returns empty and leaves
// the queue unchanged when fewer than n bytes are buffered
func TestExtractInsufficientBytes(t *testing.T) {
	q := fill([]byte("abc"), []byte("de"))

	if data := q.Extract(6); len(data) != 0 {
		t.Errorf("Expected empty result, got %q", data)
	}
	if q.Size() != 5 || q.Packets() != 2 {
		t.Errorf("Queue was modified: size=%d packets=%d", q.Size(), q.Packets())
	}

	// exactly the buffered amount must succeed
	if data := q.Extract(5); !bytes.Equal(data, []byte("abcde")) {
		t.Errorf("Expected %q, got %q", "abcde", data)
	}
}

// TestExtractAll verifies full extraction and the empty-queue edge case
func TestExtractAll(t *testing.T) {
	q := fill([]byte("foo"), []byte("bar"))

	if data := q.ExtractAll(); !bytes.Equal(data, []byte("foobar")) {
		t.Errorf("Expected %q, got %q", "foobar", data)
	}
	if data := q.ExtractAll(); len(data) != 0 {
		t.Errorf("Expected empty result on drained queue, got %q", data)
	}
}

// TestExtractDelim verifies delimiter extraction for delimiters in the
// first, a middle and the last packet, and the delimiter-absent case
func TestExtractDelim(t *testing.T) {
	tests := []struct {
		name    string
		packets [][]byte
		delim   byte
		want    string
		found   bool
		left    int
	}{
		{"first packet", [][]byte{[]byte("ab\ncd"), []byte("ef")}, '\n', "ab\n", true, 4},
		{"later packet", [][]byte{[]byte("abc"), []byte("de"), []byte("f\ng")}, '\n', "abcdef\n", true, 1},
		{"last byte", [][]byte{[]byte("abc"), []byte("de\n")}, '\n', "abcde\n", true, 0},
		{"absent", [][]byte{[]byte("abc"), []byte("def")}, '\n', "", false, 6},
		{"nul delimiter", [][]byte{[]byte("ping"), {0}, []byte("pong")}, 0, "ping\x00", true, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := fill(tt.packets...)

			data, found := q.ExtractDelim(tt.delim)
			if found != tt.found {
				t.Fatalf("Expected found=%t, got %t", tt.found, found)
			}
			if found && string(data) != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, data)
			}
			if q.Size() != tt.left {
				t.Errorf("Expected %d bytes left, got %d", tt.left, q.Size())
			}
		})
	}
}

// TestExtractDelimAfterSplit verifies that the delimiter scan honors the
// head offset of a previously split packet
func TestExtractDelimAfterSplit(t *testing.T) {
	q := fill([]byte("x\nab\ncd"))

	// consume past the first delimiter, the remaining head is "ab\ncd"
	q.Extract(2)

	data, found := q.ExtractDelim('\n')
	if !found || string(data) != "ab\n" {
		t.Errorf("Expected %q, got %q (found=%t)", "ab\n", data, found)
	}
}

// TestPopPacket verifies whole-packet extraction including split heads
func TestPopPacket(t *testing.T) {
	q := fill([]byte("abcd"), []byte("ef"))

	q.Extract(2) // head packet becomes "cd"

	packet, ok := q.PopPacket()
	if !ok || !bytes.Equal(packet, []byte("cd")) {
		t.Errorf("Expected %q, got %q (ok=%t)", "cd", packet, ok)
	}

	packet, ok = q.PopPacket()
	if !ok || !bytes.Equal(packet, []byte("ef")) {
		t.Errorf("Expected %q, got %q (ok=%t)", "ef", packet, ok)
	}

	if _, ok := q.PopPacket(); ok {
		t.Error("Expected PopPacket on empty queue to return false")
	}
}

// TestConcurrentAppendExtract verifies that no bytes are lost or duplicated
// under a concurrent producer and consumer
func TestConcurrentAppendExtract(t *testing.T) {
	const producers = 4
	const packetsPerProducer = 500

	q := NewPacketQueue()
	var wg sync.WaitGroup

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < packetsPerProducer; i++ {
				q.Append([]byte{1, 2, 3, 4})
			}
		}()
	}

	total := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for total < producers*packetsPerProducer*4 {
			total += len(q.ExtractAll())
		}
	}()

	wg.Wait()
	<-done

	if total != producers*packetsPerProducer*4 {
		t.Errorf("Expected %d bytes, got %d", producers*packetsPerProducer*4, total)
	}
	if q.Size() != 0 {
		t.Errorf("Expected empty queue, %d bytes left", q.Size())
	}
}
