// Package event defines event types for decoupling components in uibridge.
// These events let the demo view, the bridge, and observability hooks
// communicate without direct dependencies.
package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "delivery.applied", "owner.detached")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Delivery Events
// -----------------------------------------------------------------------------

// DeliveryScheduledEvent is emitted when a command's outcome has been handed
// to the bridge and queued onto its owner's exclusive context.
type DeliveryScheduledEvent struct {
	baseEvent
	OwnerID    string // Owner the result will be applied to
	DeliveryID string // Unique identifier for the delivery
	Command    string // Command name, for traceability
}

// NewDeliveryScheduledEvent creates a DeliveryScheduledEvent.
func NewDeliveryScheduledEvent(ownerID, deliveryID, command string) DeliveryScheduledEvent {
	return DeliveryScheduledEvent{
		baseEvent:  newBaseEvent("delivery.scheduled"),
		OwnerID:    ownerID,
		DeliveryID: deliveryID,
		Command:    command,
	}
}

// DeliveryAppliedEvent is emitted after a delivery's callback ran under the
// owner's exclusive context.
type DeliveryAppliedEvent struct {
	baseEvent
	OwnerID    string // Owner the result was applied to
	DeliveryID string // Unique identifier for the delivery
	Success    bool   // Whether the command succeeded or failed
}

// NewDeliveryAppliedEvent creates a DeliveryAppliedEvent.
func NewDeliveryAppliedEvent(ownerID, deliveryID string, success bool) DeliveryAppliedEvent {
	return DeliveryAppliedEvent{
		baseEvent:  newBaseEvent("delivery.applied"),
		OwnerID:    ownerID,
		DeliveryID: deliveryID,
		Success:    success,
	}
}

// DeliveryCancelledEvent is emitted when a single scheduled delivery is
// cancelled before it could run.
type DeliveryCancelledEvent struct {
	baseEvent
	OwnerID    string // Owner the delivery belonged to
	DeliveryID string // Unique identifier for the delivery
	Reason     string // Why the delivery was cancelled (e.g., "detach", "navigation")
}

// NewDeliveryCancelledEvent creates a DeliveryCancelledEvent.
func NewDeliveryCancelledEvent(ownerID, deliveryID, reason string) DeliveryCancelledEvent {
	return DeliveryCancelledEvent{
		baseEvent:  newBaseEvent("delivery.cancelled"),
		OwnerID:    ownerID,
		DeliveryID: deliveryID,
		Reason:     reason,
	}
}

// DeliveryFailedEvent is emitted when a delivery could not be submitted to
// its owner, typically because the owner ended between scheduling and
// submission.
type DeliveryFailedEvent struct {
	baseEvent
	OwnerID    string // Owner the delivery was bound for
	DeliveryID string // Unique identifier for the delivery
	Reason     string // Why submission was refused
}

// NewDeliveryFailedEvent creates a DeliveryFailedEvent.
func NewDeliveryFailedEvent(ownerID, deliveryID, reason string) DeliveryFailedEvent {
	return DeliveryFailedEvent{
		baseEvent:  newBaseEvent("delivery.failed"),
		OwnerID:    ownerID,
		DeliveryID: deliveryID,
		Reason:     reason,
	}
}

// DeliveriesCancelledEvent is emitted when an owner lifecycle signal cancels
// every pending delivery for that owner in bulk.
type DeliveriesCancelledEvent struct {
	baseEvent
	OwnerID string // Owner whose deliveries were cancelled
	Count   int    // How many deliveries the bulk cancel removed
	Reason  string // Lifecycle signal that triggered the cancel
}

// NewDeliveriesCancelledEvent creates a DeliveriesCancelledEvent.
func NewDeliveriesCancelledEvent(ownerID string, count int, reason string) DeliveriesCancelledEvent {
	return DeliveriesCancelledEvent{
		baseEvent: newBaseEvent("deliveries.cancelled"),
		OwnerID:   ownerID,
		Count:     count,
		Reason:    reason,
	}
}

// -----------------------------------------------------------------------------
// Owner Lifecycle Events
// -----------------------------------------------------------------------------

// OwnerDetachedEvent is emitted when an owner begins teardown.
type OwnerDetachedEvent struct {
	baseEvent
	OwnerID string // Owner that detached
}

// NewOwnerDetachedEvent creates an OwnerDetachedEvent.
func NewOwnerDetachedEvent(ownerID string) OwnerDetachedEvent {
	return OwnerDetachedEvent{
		baseEvent: newBaseEvent("owner.detached"),
		OwnerID:   ownerID,
	}
}

// OwnerNavigatedEvent is emitted when an owner's view is superseded by
// navigation. The owner survives; its pending deliveries do not.
type OwnerNavigatedEvent struct {
	baseEvent
	OwnerID string // Owner whose view was replaced
}

// NewOwnerNavigatedEvent creates an OwnerNavigatedEvent.
func NewOwnerNavigatedEvent(ownerID string) OwnerNavigatedEvent {
	return OwnerNavigatedEvent{
		baseEvent: newBaseEvent("owner.navigated"),
		OwnerID:   ownerID,
	}
}
