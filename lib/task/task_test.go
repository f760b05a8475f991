package task

import (
	"sync"
	"testing"
	"time"
)

// TestLifecycle verifies the start -> signal -> join sequence
func TestLifecycle(t *testing.T) {
	started := make(chan struct{})

	tk := New(func(stop <-chan struct{}) {
		close(started)
		<-stop
	})

	if tk.IsActive() {
		t.Error("Task must not be active before Start")
	}

	tk.Start()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("Body did not start")
	}

	if !tk.IsActive() {
		t.Error("Task must be active while the body runs")
	}

	tk.Signal()
	tk.Join()

	if tk.IsActive() {
		t.Error("Task must not be active after Join")
	}
}

// TestSignalIdempotent verifies that concurrent Signal calls are safe and
// that Join can be called from multiple goroutines
func TestSignalIdempotent(t *testing.T) {
	tk := New(func(stop <-chan struct{}) {
		<-stop
	})
	tk.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tk.Signal()
			tk.Join()
		}()
	}

	doneCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneCh)
	}()

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("Concurrent Signal/Join did not complete")
	}
}

// TestStartOnce verifies that the body runs exactly once even if Start is
// called repeatedly
func TestStartOnce(t *testing.T) {
	var mu sync.Mutex
	runs := 0

	tk := New(func(stop <-chan struct{}) {
		mu.Lock()
		runs++
		mu.Unlock()
	})

	tk.Start()
	tk.Start()
	tk.Join()
	tk.Start()

	mu.Lock()
	defer mu.Unlock()
	if runs != 1 {
		t.Errorf("Expected exactly one run, got %d", runs)
	}
}
