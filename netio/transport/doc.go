// Package transport defines the connector interface that decouples the netio
// core from the concrete socket medium.
//
// The core only ever talks to an IConnector: dial an endpoint, create a
// listener, apply socket options to an established connection. The concrete
// backends live in the sub-packages:
//
//   - "github.com/ValentinKolb/tcpIO/netio/transport/tcp": TCP sockets with
//     NoDelay, keep-alive, linger and buffer tuning
//
//   - "github.com/ValentinKolb/tcpIO/netio/transport/unix": unix domain
//     sockets
//
// Selecting the backend is a pure dependency injection decision made by the
// caller of netio.Connect / netio.CreateServer - there is no runtime
// branching on the medium inside the core.
package transport
