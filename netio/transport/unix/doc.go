// Package unix implements the unix domain socket backend of the transport
// connector interface. TCP specific settings from the configuration are
// ignored, socket buffer sizes are applied.
package unix
