// Package netio provides a concurrent TCP connection and listening-server
// abstraction that decouples application code from raw socket I/O timing.
//
// Every connection and every server owns one dedicated background goroutine
// that performs the actual socket I/O, while application goroutines interact
// only through thread-safe, non-blocking operations on in-memory packet
// queues. Sending enqueues, receiving dequeues - no application-facing call
// except Close ever blocks on the network.
//
// Key Components:
//
//   - IConnection: one bidirectional connection. Outbound packets are
//     transmitted in the order enqueued; inbound bytes are delivered to the
//     extraction calls (ReceiveData, ReceiveN, ReceiveString) in the order
//     received. Construction via Connect or via a server's accept loop.
//
//   - IServer: one listening socket with a queue of accepted connections
//     awaiting retrieval through GetIncomingConnection. Every accepted
//     connection starts its own background loop immediately, so it buffers
//     inbound data even before the application picks it up.
//
//   - Lifecycle: both types move monotonically through OPEN -> CLOSING ->
//     CLOSED. Transport-level failures never surface as errors of unrelated
//     application calls; they drive the CLOSING transition and are logged.
//     Close() joins the background goroutine before returning, so after
//     Close no background unit of the object is left running. There is no
//     built-in retry or reconnect - that policy belongs to the application.
//
//   - Transport selection: the concrete socket medium is injected as a
//     transport.IConnector (tcp or unix sub-package), the core contains no
//     medium-specific code.
//
// The per-object background unit model deliberately trades goroutine count
// for simplicity: there is no shared poller, each connection's loop performs
// blocking-style reads bounded by a small poll interval, which also bounds
// how quickly a close request is observed.
package netio
