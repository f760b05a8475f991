// Package task provides a small abstraction for a background execution unit:
// a single goroutine whose lifetime is bound to its owning object.
//
// Every network connection and every server in this library owns exactly one
// such unit. The owner starts it on construction, the unit runs the owner's
// loop body, and the owner's Close() signals cancellation and then joins the
// unit before returning. There are no detached goroutines - if Join returned,
// the body has returned.
//
// The body receives a stop channel that is closed by Signal. It is the body's
// responsibility to observe the channel (or an equivalent state flag) within
// its poll interval.
package task
