package queue

import (
	"bytes"
	"sync"
	"sync/atomic"

	ring "github.com/eapache/queue"
)

// packetQueue implements IPacketQueue on top of a ring buffer.
//
// A split packet is handled with headOff (the number of already consumed
// bytes of the front packet) instead of replacing the front element, so the
// stored buffers stay immutable.
type packetQueue struct {
	mu      sync.Mutex
	ring    *ring.Queue // of []byte
	headOff int
	size    atomic.Int64 // aggregate bytes, written only under mu
}

// NewPacketQueue creates a new empty packet queue.
func NewPacketQueue() IPacketQueue {
	return &packetQueue{
		ring: ring.New(),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see queue.IPacketQueue)
// --------------------------------------------------------------------------

func (q *packetQueue) Append(data []byte) {
	if len(data) == 0 {
		return
	}

	// copy so the caller may reuse its buffer
	packet := make([]byte, len(data))
	copy(packet, data)

	q.mu.Lock()
	defer q.mu.Unlock()

	q.ring.Add(packet)
	q.size.Add(int64(len(packet)))
}

func (q *packetQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int(q.size.Load())
}

func (q *packetQueue) SizeHint() int {
	// intentionally unlocked - see package docu
	return int(q.size.Load())
}

func (q *packetQueue) Packets() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.Length()
}

func (q *packetQueue) ExtractAll() []byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.extract(int(q.size.Load()))
}

func (q *packetQueue) Extract(n int) []byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n <= 0 || int(q.size.Load()) < n {
		return []byte{}
	}
	return q.extract(n)
}

func (q *packetQueue) ExtractDelim(delim byte) ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	// scan the buffered packets in order for the delimiter
	pos := 0
	for i := 0; i < q.ring.Length(); i++ {
		packet := q.ring.Get(i).([]byte)
		if i == 0 {
			packet = packet[q.headOff:]
		}
		if idx := bytes.IndexByte(packet, delim); idx >= 0 {
			// scan and extraction happen under the same lock acquisition,
			// concurrent appends can not invalidate the computed offset
			return q.extract(pos + idx + 1), true
		}
		pos += len(packet)
	}
	return nil, false
}

func (q *packetQueue) PopPacket() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ring.Length() == 0 {
		return nil, false
	}

	packet := q.ring.Remove().([]byte)[q.headOff:]
	q.headOff = 0
	q.size.Add(int64(-len(packet)))
	return packet, true
}

func (q *packetQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.ring = ring.New()
	q.headOff = 0
	q.size.Store(0)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// extract removes exactly n bytes from the queue. The caller must hold q.mu
// and must have verified that at least n bytes are buffered.
func (q *packetQueue) extract(n int) []byte {
	data := make([]byte, 0, n)

	remaining := n
	for remaining > 0 {
		head := q.ring.Peek().([]byte)[q.headOff:]

		if len(head) <= remaining {
			// take the full packet
			data = append(data, head...)
			remaining -= len(head)
			q.ring.Remove()
			q.headOff = 0
		} else {
			// only take the remaining bytes, the tail stays as the new head
			data = append(data, head[:remaining]...)
			q.headOff += remaining
			remaining = 0
		}
	}

	q.size.Add(int64(-n))
	return data
}
