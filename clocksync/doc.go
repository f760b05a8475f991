// Package clocksync estimates the clock offset between two hosts with a
// minimal UDP request/response exchange.
//
// A synchronizer runs in one of two modes. The server answers every time
// request datagram with its current clock reading. The client periodically
// sends a request, halves the measured round trip time as the latency
// estimate and maintains a smoothed offset between the server's clock and
// its own. Smoothing weighs the accumulated estimate four times as much as
// a new sample, so a single outlier round trip cannot jolt the offset.
//
// Both modes run on the same background-unit lifecycle as the netio
// connections: construction starts the loop, Close signals it and joins.
// Lost datagrams and timeouts are logged and skipped, never fatal - the
// offset simply keeps its last value until the next successful round.
package clocksync
