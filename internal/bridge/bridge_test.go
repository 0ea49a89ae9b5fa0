package bridge_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PRIESt512/uibridge/internal/bridge"
	"github.com/PRIESt512/uibridge/internal/errors"
	"github.com/PRIESt512/uibridge/internal/event"
	"github.com/PRIESt512/uibridge/internal/owner"
)

// --- Test commands --------------------------------------------------------

// delayedCommand completes with "Hello <input>" after a delay, off the
// calling goroutine.
type delayedCommand struct {
	input string
	delay time.Duration
}

func (c delayedCommand) Execute(onSuccess func(string), onFailure func(error)) {
	go func() {
		time.Sleep(c.delay)
		onSuccess("Hello " + c.input)
	}()
}

// failingCommand reports its error through the failure callback.
type failingCommand struct {
	err error
}

func (c failingCommand) Execute(onSuccess func(string), onFailure func(error)) {
	go func() { onFailure(c.err) }()
}

// inlineCommand invokes its callback synchronously on the calling goroutine,
// the way a command that retries internally or answers from a cache would.
type inlineCommand struct {
	value    string
	executed *atomic.Bool
}

func (c inlineCommand) Execute(onSuccess func(string), onFailure func(error)) {
	if c.executed != nil {
		c.executed.Store(true)
	}
	onSuccess(c.value)
}

// stuckCommand never invokes either callback. Only for interruption tests;
// it deliberately violates the command contract.
type stuckCommand struct{}

func (stuckCommand) Execute(onSuccess func(string), onFailure func(error)) {}

// --- Helpers ---------------------------------------------------------------

func newBridge(t *testing.T) (*bridge.Bridge, *event.Bus) {
	t.Helper()
	bus := event.NewBus()
	b := bridge.New(bus)
	t.Cleanup(b.Close)
	return b, bus
}

func newOwnerCtx(t *testing.T) (*owner.Owner, context.Context) {
	t.Helper()
	own := owner.New()
	t.Cleanup(own.Detach)
	return own, owner.NewContext(context.Background(), own)
}

func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// --- Async path ------------------------------------------------------------

func TestExecuteAsyncAppliesResult(t *testing.T) {
	b, _ := newBridge(t)
	own, ctx := newOwnerCtx(t)

	fut, err := bridge.ExecuteAsync(b, ctx, delayedCommand{input: "Ann", delay: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("ExecuteAsync: %v", err)
	}

	got, err := fut.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "Hello Ann" {
		t.Errorf("result = %q, want %q", got, "Hello Ann")
	}

	// The registry entry is removed once the delivery applied.
	waitFor(t, time.Second, func() bool { return b.Registry().Len(own.ID()) == 0 })
}

func TestExecuteAsyncNoOwnerContext(t *testing.T) {
	b, _ := newBridge(t)

	var executed atomic.Bool
	_, err := bridge.ExecuteAsync(b, context.Background(), inlineCommand{value: "x", executed: &executed})
	if !errors.Is(err, errors.ErrNoOwnerContext) {
		t.Fatalf("ExecuteAsync = %v, want ErrNoOwnerContext", err)
	}
	if executed.Load() {
		t.Error("command was executed despite missing owner context")
	}
}

func TestExecuteAsyncFailureWrapsExecutionError(t *testing.T) {
	b, _ := newBridge(t)
	_, ctx := newOwnerCtx(t)

	cause := errors.New("backend unavailable")
	fut, err := bridge.ExecuteAsync(b, ctx, failingCommand{err: cause})
	if err != nil {
		t.Fatalf("ExecuteAsync: %v", err)
	}

	_, err = fut.Get(context.Background())
	var execErr *errors.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Get error = %v, want *ExecutionError", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("ExecutionError does not wrap the command's error: %v", err)
	}
}

func TestDetachBeforeResultCancelsDelivery(t *testing.T) {
	b, _ := newBridge(t)
	own := owner.New()
	ctx := owner.NewContext(context.Background(), own)

	fut, err := bridge.ExecuteAsync(b, ctx, delayedCommand{input: "Ann", delay: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("ExecuteAsync: %v", err)
	}

	// The owner ends before the simulated work does.
	own.Detach()

	got, err := fut.Get(context.Background())
	if err == nil {
		t.Fatalf("future resolved with success value %q after detach", got)
	}
	if !errors.Is(err, errors.ErrOwnerGone) {
		t.Errorf("Get error = %v, want ErrOwnerGone", err)
	}
	if n := b.Registry().Len(own.ID()); n != 0 {
		t.Errorf("registry still tracks %d deliveries for a gone owner", n)
	}
}

func TestDetachCancelsRegisteredDelivery(t *testing.T) {
	b, bus := newBridge(t)
	own := owner.New()
	ctx := owner.NewContext(context.Background(), own)

	var cancelledEvents atomic.Int32
	bus.Subscribe("delivery.cancelled", func(event.Event) { cancelledEvents.Add(1) })

	// Hold the owner's queue so the delivery stays registered-but-unapplied.
	release := make(chan struct{})
	if _, err := own.RunExclusive(func() { <-release }); err != nil {
		t.Fatalf("RunExclusive: %v", err)
	}

	fut, err := bridge.ExecuteAsync(b, ctx, delayedCommand{input: "Ann", delay: time.Millisecond})
	if err != nil {
		t.Fatalf("ExecuteAsync: %v", err)
	}
	waitFor(t, time.Second, func() bool { return b.Registry().Len(own.ID()) == 1 })

	detached := make(chan struct{})
	go func() {
		own.Detach()
		close(detached)
	}()

	// The waiter is released by the cancel, even while the queue is blocked.
	_, err = fut.Get(context.Background())
	if !errors.Is(err, errors.ErrOwnerGone) {
		t.Errorf("Get error = %v, want ErrOwnerGone", err)
	}

	close(release)
	<-detached

	if got := cancelledEvents.Load(); got != 1 {
		t.Errorf("delivery.cancelled events = %d, want 1", got)
	}
	if n := b.Registry().Len(own.ID()); n != 0 {
		t.Errorf("registry still tracks %d deliveries", n)
	}
}

func TestNavigateAwayCancelsPendingOnly(t *testing.T) {
	b, _ := newBridge(t)
	own, ctx := newOwnerCtx(t)

	release := make(chan struct{})
	if _, err := own.RunExclusive(func() { <-release }); err != nil {
		t.Fatalf("RunExclusive: %v", err)
	}

	pending, err := bridge.ExecuteAsync(b, ctx, delayedCommand{input: "old view", delay: time.Millisecond})
	if err != nil {
		t.Fatalf("ExecuteAsync: %v", err)
	}
	waitFor(t, time.Second, func() bool { return b.Registry().Len(own.ID()) == 1 })

	own.NavigateAway()
	close(release)

	if _, err := pending.Get(context.Background()); !errors.Is(err, errors.ErrOwnerGone) {
		t.Errorf("pending delivery error = %v, want ErrOwnerGone", err)
	}

	// The owner survives navigation: new work dispatches normally.
	fut, err := bridge.ExecuteAsync(b, ctx, delayedCommand{input: "new view", delay: time.Millisecond})
	if err != nil {
		t.Fatalf("ExecuteAsync after navigation: %v", err)
	}
	got, err := fut.Get(context.Background())
	if err != nil || got != "Hello new view" {
		t.Errorf("after navigation = (%q, %v), want success", got, err)
	}
}

func TestCancelAfterAppliedIsNoOp(t *testing.T) {
	b, _ := newBridge(t)
	own, ctx := newOwnerCtx(t)

	fut, err := bridge.ExecuteAsync(b, ctx, delayedCommand{input: "Ann", delay: time.Millisecond})
	if err != nil {
		t.Fatalf("ExecuteAsync: %v", err)
	}
	got, err := fut.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	waitFor(t, time.Second, func() bool { return b.Registry().Len(own.ID()) == 0 })

	own.NavigateAway()

	// The applied result is untouched by the late bulk cancel.
	again, err, ok := fut.TryGet()
	if !ok || err != nil || again != got {
		t.Errorf("TryGet after cancel = (%q, %v, %t), want unchanged result", again, err, ok)
	}
}

func TestExactlyOnceResolutionUnderLoad(t *testing.T) {
	b, _ := newBridge(t)
	own, ctx := newOwnerCtx(t)

	const n = 150
	var wg sync.WaitGroup
	var resolved atomic.Int32

	for i := 0; i < n; i++ {
		fut, err := bridge.ExecuteAsync(b, ctx, delayedCommand{
			input: "load",
			delay: time.Duration(i%5) * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("ExecuteAsync: %v", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := fut.Get(context.Background())
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			if got != "Hello load" {
				t.Errorf("result = %q", got)
			}
			resolved.Add(1)
		}()
	}
	wg.Wait()

	if got := resolved.Load(); got != n {
		t.Errorf("resolved %d futures, want %d", got, n)
	}
	waitFor(t, time.Second, func() bool { return b.Registry().Len(own.ID()) == 0 })
}

// --- Blocking path ---------------------------------------------------------

func TestExecuteBlockingSuccess(t *testing.T) {
	b, _ := newBridge(t)

	got, err := bridge.ExecuteBlocking(b, context.Background(), delayedCommand{input: "Ann", delay: time.Millisecond})
	if err != nil {
		t.Fatalf("ExecuteBlocking: %v", err)
	}
	if got != "Hello Ann" {
		t.Errorf("result = %q, want %q", got, "Hello Ann")
	}
}

func TestExecuteBlockingNeedsNoOwner(t *testing.T) {
	b, _ := newBridge(t)

	// The blocking path is for callers already off the owner path: it must
	// not require an owner binding and must not register anything.
	got, err := bridge.ExecuteBlocking(b, context.Background(), inlineCommand{value: "direct"})
	if err != nil {
		t.Fatalf("ExecuteBlocking: %v", err)
	}
	if got != "direct" {
		t.Errorf("result = %q, want %q", got, "direct")
	}
}

func TestExecuteBlockingFailure(t *testing.T) {
	b, _ := newBridge(t)

	cause := errors.New("boom")
	_, err := bridge.ExecuteBlocking(b, context.Background(), failingCommand{err: cause})

	var execErr *errors.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("error = %v, want *ExecutionError", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("ExecutionError does not wrap the cause: %v", err)
	}
}

func TestExecuteBlockingInterrupted(t *testing.T) {
	b, _ := newBridge(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := bridge.ExecuteBlocking(b, ctx, stuckCommand{})
	if !errors.Is(err, errors.ErrInterrupted) {
		t.Errorf("error = %v, want ErrInterrupted", err)
	}
}

// --- Bridge lifecycle ------------------------------------------------------

func TestClosedBridgeRefusesWork(t *testing.T) {
	bus := event.NewBus()
	b := bridge.New(bus)
	b.Close()

	if _, err := bridge.ExecuteBlocking(b, context.Background(), inlineCommand{value: "x"}); !errors.Is(err, errors.ErrBridgeClosed) {
		t.Errorf("ExecuteBlocking = %v, want ErrBridgeClosed", err)
	}

	_, ctx := newOwnerCtx(t)
	if _, err := bridge.ExecuteAsync(b, ctx, inlineCommand{value: "x"}); !errors.Is(err, errors.ErrBridgeClosed) {
		t.Errorf("ExecuteAsync = %v, want ErrBridgeClosed", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := bridge.New(event.NewBus())
	b.Close()
	b.Close()
}

func TestNewPanicsOnNilBus(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) did not panic")
		}
	}()
	bridge.New(nil)
}

func TestDispatchLimitApplies(t *testing.T) {
	bus := event.NewBus()
	b := bridge.New(bus, bridge.WithDispatchLimit(1))
	t.Cleanup(b.Close)

	if got := b.DispatchLimit(); got != 1 {
		t.Fatalf("DispatchLimit = %d, want 1", got)
	}

	// Even with a single dispatch slot every delivery applies.
	own, ctx := newOwnerCtx(t)
	for i := 0; i < 20; i++ {
		fut, err := bridge.ExecuteAsync(b, ctx, delayedCommand{input: "slot", delay: time.Millisecond})
		if err != nil {
			t.Fatalf("ExecuteAsync: %v", err)
		}
		if got, err := fut.Get(context.Background()); err != nil || got != "Hello slot" {
			t.Fatalf("Get = (%q, %v)", got, err)
		}
	}

	b.SetDispatchLimit(4)
	if got := b.DispatchLimit(); got != 4 {
		t.Errorf("DispatchLimit after resize = %d, want 4", got)
	}
	_ = own
}

// --- Events ----------------------------------------------------------------

func TestDeliveryEventsPublished(t *testing.T) {
	b, bus := newBridge(t)
	_, ctx := newOwnerCtx(t)

	var mu sync.Mutex
	var seen []string
	bus.SubscribeAll(func(e event.Event) {
		mu.Lock()
		seen = append(seen, e.EventType())
		mu.Unlock()
	})

	fut, err := bridge.ExecuteAsync(b, ctx, delayedCommand{input: "Ann", delay: time.Millisecond})
	if err != nil {
		t.Fatalf("ExecuteAsync: %v", err)
	}
	if _, err := fut.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		var scheduled, applied bool
		for _, et := range seen {
			if et == "delivery.scheduled" {
				scheduled = true
			}
			if et == "delivery.applied" {
				applied = true
			}
		}
		return scheduled && applied
	})
}
