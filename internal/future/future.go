// Package future provides a single-assignment promise bridging asynchronous
// command completion to callers awaiting a result.
package future

import (
	"context"
	"sync"

	"github.com/PRIESt512/uibridge/internal/errors"
)

// Future is a single-assignment response promise. It is resolved at most
// once, with either a value or an error; later resolution attempts are
// no-ops. It is safe for concurrent use.
type Future[R any] struct {
	mu       sync.Mutex
	done     chan struct{}
	value    R
	err      error
	resolved bool
}

// New creates an unresolved Future.
func New[R any]() *Future[R] {
	return &Future[R]{
		done: make(chan struct{}),
	}
}

// Complete resolves the future with a value.
// Returns false if the future was already resolved.
func (f *Future[R]) Complete(value R) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.resolved {
		return false
	}
	f.value = value
	f.resolved = true
	close(f.done)
	return true
}

// Fail resolves the future with an error.
// Returns false if the future was already resolved.
func (f *Future[R]) Fail(err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.resolved {
		return false
	}
	f.err = err
	f.resolved = true
	close(f.done)
	return true
}

// Get blocks until the future resolves or ctx is done. If the wait is
// interrupted it returns errors.ErrInterrupted wrapping the context error;
// the future itself stays unresolved and a later Get may still succeed.
func (f *Future[R]) Get(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.result()
	case <-ctx.Done():
		var zero R
		return zero, errors.Join(errors.ErrInterrupted, ctx.Err())
	}
}

// TryGet returns the result without blocking. The third return value
// reports whether the future has resolved.
func (f *Future[R]) TryGet() (R, error, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.resolved {
		var zero R
		return zero, nil, false
	}
	return f.value, f.err, true
}

// Done returns a channel that is closed when the future resolves.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// result reads the resolved value. Only call after done is closed.
func (f *Future[R]) result() (R, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}
