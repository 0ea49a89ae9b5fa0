package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/PRIESt512/uibridge/internal/bridge"
	"github.com/PRIESt512/uibridge/internal/command"
	"github.com/PRIESt512/uibridge/internal/config"
	"github.com/PRIESt512/uibridge/internal/errors"
	"github.com/PRIESt512/uibridge/internal/event"
	"github.com/PRIESt512/uibridge/internal/future"
	"github.com/PRIESt512/uibridge/internal/owner"
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Exercise the bridge with concurrent commands across owners",
	Long: `Dispatches many simulated commands across several owners at once and
tallies the outcomes. With --detach, half the owners are torn down while
work is still in flight, demonstrating that their deliveries are cancelled
rather than applied to a dead owner, and that no waiter hangs.`,
	RunE: runStress,
}

func init() {
	stressCmd.Flags().Int("commands", 0, "number of commands to dispatch (overrides demo.stress_commands)")
	stressCmd.Flags().Int("owners", 0, "number of owners to spread commands across (overrides demo.stress_owners)")
	stressCmd.Flags().Bool("detach", false, "detach half the owners mid-flight")
	_ = viper.BindPFlag("demo.stress_commands", stressCmd.Flags().Lookup("commands"))
	_ = viper.BindPFlag("demo.stress_owners", stressCmd.Flags().Lookup("owners"))

	rootCmd.AddCommand(stressCmd)
}

func runStress(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	detach, _ := cmd.Flags().GetBool("detach")

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Close()

	bus := event.NewBus()
	b := bridge.New(bus,
		bridge.WithLogger(logger),
		bridge.WithDispatchLimit(cfg.Bridge.DispatchLimit),
	)
	defer b.Close()

	owners := make([]*owner.Owner, cfg.Demo.StressOwners)
	ctxs := make([]context.Context, len(owners))
	for i := range owners {
		owners[i] = owner.New(owner.WithLogger(logger))
		ctxs[i] = owner.NewContext(context.Background(), owners[i])
	}

	var applied, cancelled, failed atomic.Int64

	start := time.Now()
	futs := make([]*future.Future[string], 0, cfg.Demo.StressCommands)
	for i := 0; i < cfg.Demo.StressCommands; i++ {
		slot := i % len(owners)
		greeting := command.Greeting{
			Input: fmt.Sprintf("worker-%d", i),
			Delay: time.Duration(rand.Intn(20)) * time.Millisecond,
		}

		fut, err := bridge.ExecuteAsync(b, ctxs[slot], greeting)
		if err != nil {
			failed.Add(1)
			continue
		}
		futs = append(futs, fut)

		if detach && i == cfg.Demo.StressCommands/2 {
			for j := 0; j < len(owners)/2; j++ {
				owners[j].Detach()
			}
		}
	}

	// Futures resolve on every path, so a generous deadline only guards
	// against bugs, not expected behavior.
	waitCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	p := pool.New().WithMaxGoroutines(32)
	for _, fut := range futs {
		p.Go(func() {
			_, err := fut.Get(waitCtx)
			switch {
			case err == nil:
				applied.Add(1)
			case errors.Is(err, errors.ErrOwnerGone):
				cancelled.Add(1)
			default:
				failed.Add(1)
			}
		})
	}
	p.Wait()

	for _, own := range owners {
		if n := b.Registry().Len(own.ID()); n != 0 {
			return fmt.Errorf("registry leak: owner %s still tracks %d deliveries", own.ID(), n)
		}
		own.Detach()
	}

	fmt.Printf("dispatched %d commands across %d owners in %s\n",
		cfg.Demo.StressCommands, cfg.Demo.StressOwners, time.Since(start).Round(time.Millisecond))
	fmt.Printf("  applied:   %d\n", applied.Load())
	fmt.Printf("  cancelled: %d\n", cancelled.Load())
	fmt.Printf("  failed:    %d\n", failed.Load())
	fmt.Println("  registry:  clean")
	return nil
}
