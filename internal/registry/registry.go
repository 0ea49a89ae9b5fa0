// Package registry tracks in-flight deliveries per owner so they can be
// cancelled in bulk when the owner's lifecycle ends.
package registry

import "sync"

// Delivery is the narrow view the registry needs of a tracked delivery.
// Cancel must be safe to call from any goroutine and must be a no-op once
// the delivery has applied.
type Delivery interface {
	// Cancel prevents the delivery from applying if it has not yet run.
	// Returns true if this call prevented application.
	Cancel() bool
}

// Registry maps owner IDs to their sets of pending deliveries. It is guarded
// by its own mutex, independent of any owner's exclusive context, so
// registration and cancellation never require owner-side locking.
//
// A delivery registered strictly after a CancelAll snapshot is not caught by
// that call. The bridge closes the gap downstream: a gone owner refuses
// submission, which cancels the late delivery at that point.
type Registry struct {
	mu      sync.Mutex
	pending map[string]map[Delivery]struct{} // ownerID → set of deliveries
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		pending: make(map[string]map[Delivery]struct{}),
	}
}

// Register adds a delivery to the owner's set, creating the set lazily on
// first use. Registration must happen before the delivery is submitted for
// execution so that cancellation can always see it.
func (r *Registry) Register(ownerID string, d Delivery) {
	if d == nil {
		panic("registry: delivery must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.pending[ownerID]
	if !ok {
		set = make(map[Delivery]struct{})
		r.pending[ownerID] = set
	}
	set[d] = struct{}{}
}

// Remove drops a delivery from the owner's set on natural completion.
// No-op if the delivery was already removed by a CancelAll.
func (r *Registry) Remove(ownerID string, d Delivery) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.pending[ownerID]
	if !ok {
		return
	}
	delete(set, d)
	if len(set) == 0 {
		delete(r.pending, ownerID)
	}
}

// CancelAll atomically snapshots and clears the owner's set, then cancels
// each delivery outside the registry lock. Returns how many deliveries the
// snapshot contained. Deliveries that already applied ignore the cancel.
func (r *Registry) CancelAll(ownerID string) int {
	r.mu.Lock()
	set := r.pending[ownerID]
	delete(r.pending, ownerID)
	r.mu.Unlock()

	for d := range set {
		d.Cancel()
	}
	return len(set)
}

// Len returns the number of pending deliveries tracked for an owner.
func (r *Registry) Len(ownerID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending[ownerID])
}

// Owners returns the number of owners with at least one pending delivery.
func (r *Registry) Owners() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
