package latch

import (
	"context"
	"sync"
	"time"
)

// waiter is the local wait handle of a latch proxy: a non-negative counter
// that releases every waiter when it reaches zero. The counter only ever
// moves toward zero; the zero channel is closed exactly once.
type waiter struct {
	mu    sync.Mutex
	count int32
	zero  chan struct{}
}

func newWaiter(count int32) *waiter {
	w := &waiter{count: count, zero: make(chan struct{})}
	if count <= 0 {
		w.count = 0
		close(w.zero)
	}
	return w
}

func (w *waiter) Count() int32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// countTo drives the counter down toward cnt. Calls with cnt at or above the
// current counter are ignored, which makes out-of-order deliveries harmless.
func (w *waiter) countTo(cnt int32) {
	if cnt < 0 {
		cnt = 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if cnt >= w.count {
		return
	}
	w.count = cnt
	if w.count == 0 {
		close(w.zero)
	}
}

// Wait blocks until the counter reaches zero or ctx is done.
func (w *waiter) Wait(ctx context.Context) error {
	select {
	case <-w.zero:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitTimeout reports whether the counter reached zero within d.
func (w *waiter) WaitTimeout(d time.Duration) bool {
	select {
	case <-w.zero:
		return true
	case <-time.After(d):
		return false
	}
}
