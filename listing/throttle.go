package listing

import (
	"sync"
	"time"
)

// Throttle is a trailing-edge throttle: the first call arms a timer, later
// calls inside the window only replace the argument, and fn runs once with
// the latest argument when the window closes.
type Throttle[A any] struct {
	window time.Duration
	fn     func(A)

	mu      sync.Mutex
	timer   *time.Timer
	pending A
	armed   bool
	stopped bool
}

// NewThrottle creates a throttle calling fn at most once per window
func NewThrottle[A any](window time.Duration, fn func(A)) *Throttle[A] {
	return &Throttle[A]{window: window, fn: fn}
}

// Trigger schedules fn with arg
func (t *Throttle[A]) Trigger(arg A) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	t.pending = arg
	if t.armed {
		return
	}
	t.armed = true
	t.timer = time.AfterFunc(t.window, t.fire)
}

// Pending reports whether a call is waiting for the window to close
func (t *Throttle[A]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

// Stop cancels a pending call and ignores further triggers
func (t *Throttle[A]) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.armed = false
}

func (t *Throttle[A]) fire() {
	t.mu.Lock()
	if !t.armed || t.stopped {
		t.mu.Unlock()
		return
	}
	arg := t.pending
	var zero A
	t.pending = zero
	t.armed = false
	t.mu.Unlock()

	t.fn(arg)
}
