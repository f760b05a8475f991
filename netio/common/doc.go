// Package common provides the configuration types and the logging setup
// shared by the netio core, the transport connectors and the command line
// interface.
//
// Configuration is plain data: ConnectionConfig tunes one connection's
// background loop (poll interval, read chunk size) and its socket options,
// ServerConfig additionally tunes the accept loop. Both come with Default*
// constructors and a String() pretty printer used by the CLI.
//
// Logging uses the logger facility of the dragonboat library: every package
// obtains a named logger via logger.GetLogger and the custom factory in this
// package gives all of them a uniform output format and configurable level.
package common
