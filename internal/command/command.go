// Package command defines the contract for units of asynchronous work whose
// results are delivered back to an owner through the bridge.
package command

// Command describes one asynchronous operation producing a typed result or
// a failure, decoupled from delivery mechanics.
//
// Execute runs the work on any goroutine of the implementation's choosing:
// the calling goroutine, a shared pool, or one spawned per command. It MUST
// invoke exactly one of onSuccess or onFailure, exactly once. The bridge
// cannot detect violations and does not guard against them.
//
// Execute must not touch owner state directly. Owner mutations belong in the
// callbacks, and only after being routed through the bridge.
type Command[R any] interface {
	Execute(onSuccess func(R), onFailure func(error))
}

// Func adapts a plain function into a Command. The function runs on its own
// goroutine; a non-nil error reports failure, otherwise the returned value
// reports success.
type Func[R any] func() (R, error)

// Execute implements Command.
func (f Func[R]) Execute(onSuccess func(R), onFailure func(error)) {
	go func() {
		result, err := f()
		if err != nil {
			onFailure(err)
			return
		}
		onSuccess(result)
	}()
}
