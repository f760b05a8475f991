package queue

// IPacketQueue defines the interface for a thread-safe packet queue.
//
// A packet is an immutable byte buffer. Packets are extracted in FIFO order;
// the byte stream formed by concatenating all packets is what the extraction
// methods operate on.
type IPacketQueue interface {
	// Append adds the given bytes as one packet to the end of the queue.
	// The data is copied, the caller may reuse the slice afterwards.
	Append(data []byte)

	// Size returns the aggregate number of buffered bytes.
	Size() int

	// SizeHint returns the aggregate byte count without taking the queue
	// mutex. The value may be stale and must only be used as a scheduling
	// hint, never as a correctness-bearing read.
	SizeHint() int

	// Packets returns the number of buffered packets.
	Packets() int

	// ExtractAll removes and returns all currently buffered bytes. Returns
	// an empty slice if the queue is empty.
	ExtractAll() []byte

	// Extract removes and returns exactly n bytes. If fewer than n bytes
	// are buffered (or n == 0), nothing is removed and an empty slice is
	// returned. A packet straddling the boundary is split; its tail remains
	// as the new head of the queue.
	Extract(n int) []byte

	// ExtractDelim scans the buffered bytes for the first occurrence of
	// delim. If found, all bytes up to and including delim are removed and
	// returned together with true. If delim is not buffered, the queue is
	// left untouched and (nil, false) is returned.
	ExtractDelim(delim byte) ([]byte, bool)

	// PopPacket removes and returns the oldest packet as a whole, or
	// (nil, false) if the queue is empty.
	PopPacket() ([]byte, bool)

	// Clear removes all buffered packets.
	Clear()
}
