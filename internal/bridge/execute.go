package bridge

import (
	"context"
	"fmt"

	"github.com/PRIESt512/uibridge/internal/command"
	"github.com/PRIESt512/uibridge/internal/errors"
	"github.com/PRIESt512/uibridge/internal/event"
	"github.com/PRIESt512/uibridge/internal/future"
	"github.com/PRIESt512/uibridge/internal/owner"
)

// ExecuteBlocking runs cmd and blocks the calling goroutine until its
// outcome arrives. A command failure is returned as *errors.ExecutionError
// wrapping the command's own error; a done ctx interrupts the wait with
// errors.ErrInterrupted.
//
// Unlike ExecuteAsync, no owner is captured and nothing is registered for
// cancellation: the caller is already off the owner path and consumes the
// result directly.
func ExecuteBlocking[R any](b *Bridge, ctx context.Context, cmd command.Command[R]) (R, error) {
	var zero R
	if b.isClosed() {
		return zero, errors.ErrBridgeClosed
	}

	name := commandName(cmd)
	fut := future.New[R]()
	cmd.Execute(
		func(r R) { fut.Complete(r) },
		func(err error) {
			fut.Fail(errors.NewExecutionError("command failed", err).WithCommand(name))
		},
	)

	return fut.Get(ctx)
}

// ExecuteAsync runs cmd and returns immediately with a future that resolves
// when the outcome has been applied under the captured owner's exclusive
// context.
//
// The owner is resolved from ctx (see owner.NewContext); if none is bound,
// ExecuteAsync fails synchronously with errors.ErrNoOwnerContext before the
// command is touched. Both command callbacks are wrapped so that, instead
// of running on the worker goroutine that produced the result, they are
// dispatched through the secondary pool and submitted to the owner's queue.
// Each wrapped delivery is registered in the task registry before
// submission, so a lifecycle cancel can never miss it.
//
// If the owner ends before the result applies, the future resolves with an
// error wrapping errors.ErrOwnerGone; fire-and-forget callers that never
// inspect the future simply see no callback run.
func ExecuteAsync[R any](b *Bridge, ctx context.Context, cmd command.Command[R]) (*future.Future[R], error) {
	if b.isClosed() {
		return nil, errors.ErrBridgeClosed
	}

	own, ok := owner.FromContext(ctx)
	if !ok {
		return nil, errors.ErrNoOwnerContext
	}

	name := commandName(cmd)
	fut := future.New[R]()

	onSuccess := func(r R) {
		b.deliver(own, name, true,
			func() { fut.Complete(r) },
			func(err error) { fut.Fail(err) },
		)
	}
	onFailure := func(cmdErr error) {
		execErr := errors.NewExecutionError("command failed", cmdErr).WithCommand(name)
		b.deliver(own, name, false,
			func() { fut.Fail(execErr) },
			func(err error) { fut.Fail(err) },
		)
	}

	cmd.Execute(onSuccess, onFailure)
	return fut, nil
}

// deliver hops the outcome off the producing goroutine onto the secondary
// pool, then submits it to the owner's exclusive queue. apply runs under
// the owner's context exactly once, or never; resolveErr releases the
// caller's future on any path where apply will not run.
func (b *Bridge) deliver(own *owner.Owner, cmdName string, success bool, apply func(), resolveErr func(error)) {
	b.dispatch(
		func() { b.submit(own, cmdName, success, apply, resolveErr) },
		resolveErr,
	)
}

// submit registers the delivery, then hands it to the owner. Registration
// strictly precedes submission: cancellation triggered by a lifecycle
// signal must be able to see every delivery that might still run.
func (b *Bridge) submit(own *owner.Owner, cmdName string, success bool, apply func(), resolveErr func(error)) {
	b.watchOwner(own)

	var d *delivery
	d = newDelivery(own.ID(), func() {
		b.registry.Remove(own.ID(), d)
		resolveErr(errors.NewOwnerError("delivery cancelled", errors.ErrOwnerGone).WithOwnerID(own.ID()))
		b.bus.Publish(event.NewDeliveryCancelledEvent(own.ID(), d.id, "lifecycle"))
	})
	logger := b.logger.WithOwner(own.ID()).WithDelivery(d.id).WithCommand(cmdName)

	b.registry.Register(own.ID(), d)
	b.bus.Publish(event.NewDeliveryScheduledEvent(own.ID(), d.id, cmdName))
	logger.Debug("delivery scheduled", "success", success)

	h, err := own.RunExclusive(func() {
		if !d.beginApply() {
			return
		}
		// The delivery is claimed: cancellation is a no-op from here on, so
		// the registry entry can go before the future resolves. Waiters that
		// observe the result then never see a stale entry.
		b.registry.Remove(own.ID(), d)
		apply()
		b.bus.Publish(event.NewDeliveryAppliedEvent(own.ID(), d.id, success))
		logger.Debug("delivery applied")
	})
	if err != nil {
		if d.fail() {
			b.registry.Remove(own.ID(), d)
			// Whether the owner is detaching or already gone, the waiter
			// sees the same thing: the owner ended before the result applied.
			resolveErr(errors.NewOwnerError("delivery refused", errors.ErrOwnerGone).WithOwnerID(own.ID()))
			b.bus.Publish(event.NewDeliveryFailedEvent(own.ID(), d.id, err.Error()))
			logger.Warn("delivery submission refused", "error", err)
		}
		return
	}
	d.attach(h)
}

// commandName derives a stable name for logs and events from the command's
// dynamic type.
func commandName(cmd any) string {
	return fmt.Sprintf("%T", cmd)
}
