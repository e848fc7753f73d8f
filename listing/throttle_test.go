package listing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottleCollapsesBurst(t *testing.T) {
	var mu sync.Mutex
	var calls []int
	done := make(chan struct{}, 4)

	th := NewThrottle(40*time.Millisecond, func(n int) {
		mu.Lock()
		calls = append(calls, n)
		mu.Unlock()
		done <- struct{}{}
	})

	for i := 1; i <= 5; i++ {
		th.Trigger(i)
	}
	assert.True(t, th.Pending())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("throttle never fired")
	}
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{5}, calls, "one call with the latest argument")
	assert.False(t, th.Pending())
}

func TestThrottleStop(t *testing.T) {
	fired := make(chan struct{}, 1)
	th := NewThrottle(20*time.Millisecond, func(struct{}) { fired <- struct{}{} })

	th.Trigger(struct{}{})
	th.Stop()
	th.Trigger(struct{}{})

	select {
	case <-fired:
		t.Fatal("stopped throttle fired")
	case <-time.After(80 * time.Millisecond):
	}
}
