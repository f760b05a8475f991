// Package tcp implements the TCP socket backend of the transport connector
// interface. It applies the TCP level performance settings from the
// connection configuration (NoDelay, keep-alive, linger, socket buffer
// sizes) when a connection is established or accepted.
//
// See the transport package documentation for how backends are selected.
package tcp
