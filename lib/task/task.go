package task

import (
	"sync"
	"sync/atomic"
)

// Task is a background execution unit running one body function in its own
// goroutine. The zero value is not usable, use New.
type Task struct {
	body       func(stop <-chan struct{})
	stop       chan struct{}
	done       chan struct{}
	active     atomic.Bool
	startOnce  sync.Once
	signalOnce sync.Once
}

// New creates a new, not yet started task for the given body. The body is
// expected to return promptly once the stop channel is closed.
func New(body func(stop <-chan struct{})) *Task {
	return &Task{
		body: body,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start launches the background goroutine. Subsequent calls are no-ops.
func (t *Task) Start() {
	t.startOnce.Do(func() {
		t.active.Store(true)
		go func() {
			defer func() {
				t.active.Store(false)
				close(t.done)
			}()
			t.body(t.stop)
		}()
	})
}

// IsActive reports whether the body is currently running.
func (t *Task) IsActive() bool {
	return t.active.Load()
}

// Signal requests cancellation by closing the stop channel. Idempotent and
// safe to call concurrently.
func (t *Task) Signal() {
	t.signalOnce.Do(func() {
		close(t.stop)
	})
}

// Join blocks until the body has returned. Joining a task that was never
// started blocks until it is started and finished, so callers should only
// join tasks they have created and started themselves.
func (t *Task) Join() {
	<-t.done
}
