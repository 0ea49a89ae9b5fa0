package bridge

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/PRIESt512/uibridge/internal/owner"
)

// Delivery states. A delivery moves pending → applied on natural
// completion, pending → cancelled when an owner lifecycle signal flushes
// it, or pending → failed when submission to the owner is refused.
const (
	deliveryPending int32 = iota
	deliveryApplied
	deliveryCancelled
	deliveryFailed
)

// delivery represents one scheduled-but-not-yet-applied callback onto an
// owner. It owns the link between the registry entry, the owner queue
// handle, and the caller's future, and guarantees the callback is applied
// exactly once or not at all.
type delivery struct {
	id      string
	ownerID string
	state   atomic.Int32

	// onCancel resolves the caller's future when the delivery is flushed,
	// so blocking waiters are released instead of hanging forever.
	onCancel func()

	mu     sync.Mutex
	handle *owner.Handle // set after submission; nil until then
}

func newDelivery(ownerID string, onCancel func()) *delivery {
	return &delivery{
		id:       uuid.NewString(),
		ownerID:  ownerID,
		onCancel: onCancel,
	}
}

// Cancel prevents the callback from applying if it has not yet run and
// releases any waiter on the delivery's future. Cancelling an applied
// delivery is a no-op; Cancel never panics. Implements registry.Delivery.
func (d *delivery) Cancel() bool {
	if !d.state.CompareAndSwap(deliveryPending, deliveryCancelled) {
		return false
	}

	d.mu.Lock()
	h := d.handle
	d.mu.Unlock()
	if h != nil {
		h.Cancel()
	}

	if d.onCancel != nil {
		d.onCancel()
	}
	return true
}

// beginApply claims the delivery for application under the owner's
// exclusive context. Returns false if it was cancelled in the window
// between submission and execution.
func (d *delivery) beginApply() bool {
	return d.state.CompareAndSwap(deliveryPending, deliveryApplied)
}

// fail marks a delivery whose submission was refused. Returns false if the
// delivery already reached a terminal state.
func (d *delivery) fail() bool {
	return d.state.CompareAndSwap(deliveryPending, deliveryFailed)
}

// attach records the owner queue handle once submission succeeded. If the
// delivery was cancelled while the handle did not exist yet, the handle is
// cancelled immediately so the closure never runs.
func (d *delivery) attach(h *owner.Handle) {
	d.mu.Lock()
	d.handle = h
	cancelled := d.state.Load() == deliveryCancelled
	d.mu.Unlock()

	if cancelled {
		h.Cancel()
	}
}
