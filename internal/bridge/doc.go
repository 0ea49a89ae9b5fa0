// Package bridge implements the request/response transport between worker
// goroutines and single-writer owner state.
//
// A Bridge executes a [command.Command] on whatever goroutine the command
// chooses, captures the Owner the request came from, and marshals the
// outcome back onto that owner's exclusive context. Every scheduled
// delivery is registered in a per-owner task registry before it is
// submitted, so owner lifecycle signals (detach, navigation) can cancel
// everything still in flight without racing freshly scheduled work.
//
// The callback handed to the owner's queue is dispatched through a
// secondary pool rather than run inline on the producing goroutine, so a
// slow or blocked owner never stalls the goroutine delivering results.
// That goroutine is often shared infrastructure, such as a message-consumer
// loop; blocking it is a serious failure mode, not merely undesirable.
//
// Two entry points are exposed:
//
//	r, err := bridge.ExecuteBlocking(b, ctx, cmd)   // block until outcome
//	fut, err := bridge.ExecuteAsync(b, ctx, cmd)    // future, owner capture
//
// ExecuteBlocking never captures an owner and never registers tasks; it is
// for callers already off the owner path. ExecuteAsync requires an owner
// bound to ctx via [owner.NewContext]; without one it fails synchronously
// with [errors.ErrNoOwnerContext], which signals a programming error rather
// than a condition to recover from.
package bridge
