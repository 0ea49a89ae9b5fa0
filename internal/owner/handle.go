package owner

import "sync/atomic"

// Handle states. A handle moves pending → running → done, or
// pending → cancelled.
const (
	handlePending int32 = iota
	handleRunning
	handleDone
	handleCancelled
)

// Handle represents one closure scheduled onto an owner's exclusive context.
// It runs at most once.
type Handle struct {
	fn    func()
	state atomic.Int32
}

func newHandle(fn func()) *Handle {
	return &Handle{fn: fn}
}

// Cancel prevents the closure from running if it has not started yet.
// Returns true if this call prevented execution. Cancelling a closure that
// is already running or finished is a no-op; Cancel never panics.
func (h *Handle) Cancel() bool {
	return h.state.CompareAndSwap(handlePending, handleCancelled)
}

// Cancelled reports whether the handle was cancelled before it ran.
func (h *Handle) Cancelled() bool {
	return h.state.Load() == handleCancelled
}

// Done reports whether the closure finished executing.
func (h *Handle) Done() bool {
	return h.state.Load() == handleDone
}

// begin claims the handle for execution. Returns false if it was cancelled.
func (h *Handle) begin() bool {
	return h.state.CompareAndSwap(handlePending, handleRunning)
}

// finish marks the handle as executed.
func (h *Handle) finish() {
	h.state.CompareAndSwap(handleRunning, handleDone)
}
