package bridge

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/PRIESt512/uibridge/internal/errors"
	"github.com/PRIESt512/uibridge/internal/event"
	"github.com/PRIESt512/uibridge/internal/logging"
	"github.com/PRIESt512/uibridge/internal/owner"
	"github.com/PRIESt512/uibridge/internal/registry"
)

// Bridge marshals command outcomes onto their owners' exclusive contexts
// and tracks in-flight deliveries per owner for lifecycle cancellation.
//
// One Bridge serves the whole process; owners come and go around it.
type Bridge struct {
	registry *registry.Registry
	bus      *event.Bus
	logger   *logging.Logger
	gate     *dispatchGate

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	mu      sync.Mutex
	watched map[string]struct{} // ownerIDs with lifecycle listeners installed
	closed  bool
}

// New creates a Bridge publishing on the given bus.
//
// The bus must be non-nil. Passing nil will panic early to surface wiring
// bugs immediately.
func New(bus *event.Bus, opts ...Option) *Bridge {
	if bus == nil {
		panic("bridge: event.Bus must not be nil")
	}

	cfg := &config{
		dispatchLimit: defaultDispatchLimit,
		logger:        logging.NopLogger(),
		registry:      registry.New(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NopLogger()
	}
	if cfg.registry == nil {
		cfg.registry = registry.New()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Bridge{
		registry: cfg.registry,
		bus:      bus,
		logger:   cfg.logger,
		gate:     newDispatchGate(cfg.dispatchLimit),
		ctx:      ctx,
		cancel:   cancel,
		watched:  make(map[string]struct{}),
	}
}

// Registry exposes the bridge's task registry for observability and tests.
func (b *Bridge) Registry() *registry.Registry {
	return b.registry
}

// SetDispatchLimit adjusts the secondary pool's concurrency at runtime.
// Zero means unlimited. Blocked dispatches re-evaluate against the new limit.
func (b *Bridge) SetDispatchLimit(n int) {
	b.gate.SetLimit(n)
	b.logger.Info("bridge: dispatch limit changed", "limit", n)
}

// DispatchLimit returns the current dispatch concurrency limit (0 = unlimited).
func (b *Bridge) DispatchLimit() int {
	return b.gate.Limit()
}

// Close stops accepting new deliveries, releases blocked dispatches, and
// waits for in-flight dispatch goroutines to finish. Safe to call multiple
// times.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	if r := b.wg.WaitAndRecover(); r != nil {
		b.logger.Error("bridge: dispatch goroutine panicked", "panic", r.Value)
	}
	b.logger.Debug("bridge closed")
}

// isClosed reports whether Close has been called.
func (b *Bridge) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// dispatch hands fn to the secondary pool. The producing goroutine returns
// immediately; fn runs once a gate slot is free. onDrop is invoked instead
// of fn when the bridge is closing, so no waiter is left hanging.
func (b *Bridge) dispatch(fn func(), onDrop func(error)) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		onDrop(errors.ErrBridgeClosed)
		return
	}
	b.wg.Go(func() {
		if err := b.gate.Acquire(b.ctx); err != nil {
			onDrop(errors.ErrBridgeClosed)
			return
		}
		defer b.gate.Release()
		fn()
	})
	b.mu.Unlock()
}

// watchOwner installs the owner's lifecycle listeners the first time any
// delivery is registered for it. Detach tears the registry entry down with
// the owner; navigation only flushes pending deliveries.
func (b *Bridge) watchOwner(own *owner.Owner) {
	b.mu.Lock()
	if _, ok := b.watched[own.ID()]; ok {
		b.mu.Unlock()
		return
	}
	b.watched[own.ID()] = struct{}{}
	b.mu.Unlock()

	own.OnDetach(func() {
		b.forgetOwner(own.ID())
		n := b.registry.CancelAll(own.ID())
		b.logger.Info("bridge: owner detached, cancelled pending deliveries",
			"owner", own.ID(), "cancelled", n)
		b.bus.Publish(event.NewOwnerDetachedEvent(own.ID()))
		b.bus.Publish(event.NewDeliveriesCancelledEvent(own.ID(), n, "detach"))
	})
	own.OnNavigateAway(func() {
		n := b.registry.CancelAll(own.ID())
		b.logger.Info("bridge: owner navigating away, cancelled pending deliveries",
			"owner", own.ID(), "cancelled", n)
		b.bus.Publish(event.NewOwnerNavigatedEvent(own.ID()))
		b.bus.Publish(event.NewDeliveriesCancelledEvent(own.ID(), n, "navigation"))
	})
}

// forgetOwner drops the watched entry so a long-lived bridge does not
// accumulate IDs of dead owners.
func (b *Bridge) forgetOwner(ownerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.watched, ownerID)
}
