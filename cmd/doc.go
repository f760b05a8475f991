// Package cmd implements the command-line interface of the tcpIO library.
// It provides a hierarchical command structure to run the demo echo server,
// talk to it as a client and run the clock synchronizer.
//
// The package is organized into several subpackages:
//
//   - serve: Command for starting the line echo server
//   - send: Command for sending one line to an echo server
//   - sync: Commands for the UDP clock synchronizer (server and client)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See tcpio -help for a list of all commands.
package cmd
