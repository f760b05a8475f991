// Package queue provides a thread-safe packet queue used for buffering the
// inbound and outbound side of a network connection. A packet queue is an
// ordered sequence of immutable byte buffers together with a maintained
// aggregate byte count, so that "how many bytes are buffered" is always an
// O(1) question.
//
// The package focuses on:
//   - A unified interface (IPacketQueue) for both directions of a connection
//   - Atomic multi-packet extraction: all bytes, exactly n bytes, or
//     everything up to (and including) a delimiter byte
//
// Key Components:
//
//   - IPacketQueue Interface: The core abstraction. All mutating operations
//     are serialized by the queue's own mutex, so a queue can be shared
//     between arbitrarily many application goroutines and the connection's
//     background goroutine without external locking.
//
//   - SizeHint: A lock-free read of the aggregate byte count. It is a
//     scheduling hint only - it may be stale the moment it is returned - and
//     every extraction method re-checks the real size under the mutex before
//     acting. Callers use it to skip taking the lock when there is most
//     likely nothing to do.
//
//   - Extraction Semantics: Extract(n) either removes exactly n bytes or
//     nothing at all. When the n-th byte falls inside a packet, that packet
//     is split and its unconsumed tail remains the new head of the queue.
//     ExtractDelim performs scan and removal as a single atomic operation so
//     concurrent producers can never invalidate a previously computed offset.
//
// The backing store is the ring buffer from github.com/eapache/queue; the
// split-packet case is handled with a head offset instead of re-queueing the
// remainder, which keeps every buffered packet immutable.
package queue
