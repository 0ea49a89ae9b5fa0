package bridge

import (
	"context"
	"sync"
)

// dispatchGate is a context-aware, dynamically-resizable concurrency limiter
// for the secondary dispatch pool.
//
// A limit of 0 means unlimited: Acquire always succeeds immediately.
// Use SetLimit to adjust capacity at runtime; blocked goroutines are notified
// via Cond.Broadcast so they can re-evaluate.
type dispatchGate struct {
	mu       sync.Mutex
	cond     *sync.Cond
	limit    int // 0 = unlimited
	acquired int
}

// newDispatchGate creates a gate with the given initial limit.
// A limit of 0 means unlimited. Negative values are clamped to 0.
func newDispatchGate(limit int) *dispatchGate {
	if limit < 0 {
		limit = 0
	}
	g := &dispatchGate{limit: limit}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Acquire blocks until a slot is available or the context is cancelled.
// Returns nil on success, or the context error if cancelled.
func (g *dispatchGate) Acquire(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	// Unlimited mode: always grant immediately.
	if g.limit == 0 {
		g.acquired++
		return nil
	}

	// Spin on the condition variable, checking context between waits.
	// A helper goroutine broadcasts on context cancellation so that
	// blocked waiters wake up and can return the context error.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// Take the lock so the broadcast cannot slip between a waiter's
			// context check and its Wait.
			g.mu.Lock()
			g.cond.Broadcast()
			g.mu.Unlock()
		case <-done:
		}
	}()

	for g.acquired >= g.limit && g.limit > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.cond.Wait()
	}

	// Re-check context after waking; the wake may have been from cancellation.
	if err := ctx.Err(); err != nil {
		return err
	}

	g.acquired++
	return nil
}

// Release frees a slot and signals one waiting goroutine.
func (g *dispatchGate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.acquired > 0 {
		g.acquired--
	}
	g.cond.Signal()
}

// SetLimit adjusts the capacity. Negative values are clamped to 0 (unlimited).
// Broadcasts to wake all blocked goroutines so they can re-evaluate against
// the new limit.
func (g *dispatchGate) SetLimit(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n < 0 {
		n = 0
	}
	g.limit = n
	g.cond.Broadcast()
}

// Limit returns the current limit (0 = unlimited).
func (g *dispatchGate) Limit() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.limit
}
