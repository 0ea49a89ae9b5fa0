// Package owner provides the single-writer execution context that background
// results are delivered into. An Owner stands for one active session/view:
// at most one goroutine executes owner-bound code at any instant, enforced by
// a dedicated drain goroutine over an explicit task queue.
package owner

import (
	"runtime/debug"
	"sync"

	"github.com/google/uuid"

	"github.com/PRIESt512/uibridge/internal/errors"
	"github.com/PRIESt512/uibridge/internal/logging"
)

// State represents the lifecycle state of an Owner.
type State int

const (
	// StateActive indicates the owner accepts and executes work.
	StateActive State = iota

	// StateDetaching indicates teardown has begun; no new work is accepted.
	StateDetaching

	// StateGone indicates the owner has ended. No further code may run
	// against it.
	StateGone
)

// String returns a human-readable string for the state.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDetaching:
		return "detaching"
	case StateGone:
		return "gone"
	default:
		return "unknown"
	}
}

// Owner is a single-writer execution context. Work submitted through
// RunExclusive executes one closure at a time on a dedicated goroutine,
// giving every closure exclusive access to the owner's state for its
// duration.
//
// Lifecycle: Active → Detaching → Gone, driven by Detach. NavigateAway
// signals that the owner's current view is being superseded without ending
// the owner itself.
type Owner struct {
	id     string
	logger *logging.Logger

	mu    sync.Mutex
	cond  *sync.Cond
	queue []*Handle
	state State

	detachListeners []func()
	navListeners    []func()
	detachFired     bool

	drained chan struct{} // closed when the drain goroutine exits
}

// Option configures an Owner.
type Option func(*config)

type config struct {
	logger *logging.Logger
}

// WithLogger sets the logger for the owner.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// New creates an active Owner and starts its drain goroutine.
func New(opts ...Option) *Owner {
	cfg := &config{
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NopLogger()
	}

	o := &Owner{
		id:      uuid.NewString(),
		logger:  cfg.logger.WithOwner(""),
		state:   StateActive,
		drained: make(chan struct{}),
	}
	o.logger = cfg.logger.WithOwner(o.id)
	o.cond = sync.NewCond(&o.mu)

	go o.drain()
	return o
}

// ID returns the owner's unique identifier.
func (o *Owner) ID() string {
	return o.id
}

// State returns the owner's current lifecycle state.
func (o *Owner) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// RunExclusive schedules fn to run under the owner's exclusive context.
// fn runs at most once; the returned Handle can cancel it before it starts.
// Returns errors.ErrOwnerGone once the owner has ended and
// errors.ErrOwnerDetaching while teardown is in progress.
func (o *Owner) RunExclusive(fn func()) (*Handle, error) {
	if fn == nil {
		panic("owner: RunExclusive fn must not be nil")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateGone:
		return nil, errors.NewOwnerError("submit refused", errors.ErrOwnerGone).WithOwnerID(o.id)
	case StateDetaching:
		return nil, errors.NewOwnerError("submit refused", errors.ErrOwnerDetaching).WithOwnerID(o.id)
	}

	h := newHandle(fn)
	o.queue = append(o.queue, h)
	o.cond.Signal()
	return h, nil
}

// OnDetach registers a listener for the owner's teardown signal. Each
// listener fires at most once. A listener registered after the signal
// already fired is invoked immediately, so no teardown is ever missed.
func (o *Owner) OnDetach(listener func()) {
	if listener == nil {
		return
	}

	o.mu.Lock()
	fired := o.detachFired
	if !fired {
		o.detachListeners = append(o.detachListeners, listener)
	}
	o.mu.Unlock()

	if fired {
		listener()
	}
}

// OnNavigateAway registers a listener for navigation signals. Listeners
// persist across navigations: each NavigateAway call fires every registered
// listener once.
func (o *Owner) OnNavigateAway(listener func()) {
	if listener == nil {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.navListeners = append(o.navListeners, listener)
}

// NavigateAway signals that the owner's current view is being replaced.
// The owner stays active; listeners (typically cancelling pending
// deliveries) run on the calling goroutine. No-op once teardown started.
func (o *Owner) NavigateAway() {
	o.mu.Lock()
	if o.state != StateActive {
		o.mu.Unlock()
		return
	}
	listeners := make([]func(), len(o.navListeners))
	copy(listeners, o.navListeners)
	o.mu.Unlock()

	o.logger.Debug("owner navigating away")
	for _, l := range listeners {
		l()
	}
}

// Detach ends the owner: fires detach listeners exactly once, refuses new
// work, cancels anything still queued, and stops the drain goroutine after
// the closure currently running (if any) finishes. Safe to call multiple
// times.
func (o *Owner) Detach() {
	o.mu.Lock()
	if o.state != StateActive {
		o.mu.Unlock()
		return
	}
	o.state = StateDetaching
	o.detachFired = true
	listeners := o.detachListeners
	o.detachListeners = nil
	o.mu.Unlock()

	o.logger.Debug("owner detaching")
	for _, l := range listeners {
		l()
	}

	o.mu.Lock()
	o.state = StateGone
	for _, h := range o.queue {
		h.Cancel()
	}
	o.queue = nil
	o.cond.Broadcast()
	o.mu.Unlock()

	<-o.drained
	o.logger.Debug("owner gone")
}

// drain executes queued handles one at a time until the owner is gone.
func (o *Owner) drain() {
	defer close(o.drained)

	for {
		o.mu.Lock()
		for len(o.queue) == 0 && o.state != StateGone {
			o.cond.Wait()
		}
		if o.state == StateGone {
			o.mu.Unlock()
			return
		}
		h := o.queue[0]
		o.queue = o.queue[1:]
		o.mu.Unlock()

		o.run(h)
	}
}

// run executes a single handle, skipping it if already cancelled.
// A panic in the closure is recovered and logged so one bad callback
// cannot kill the owner's queue.
func (o *Owner) run(h *Handle) {
	if !h.begin() {
		return
	}
	defer h.finish()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("owner: exclusive closure panicked",
				"panic", r, "stack", string(debug.Stack()))
		}
	}()
	h.fn()
}
