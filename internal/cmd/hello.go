package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/PRIESt512/uibridge/internal/bridge"
	"github.com/PRIESt512/uibridge/internal/config"
	"github.com/PRIESt512/uibridge/internal/event"
	"github.com/PRIESt512/uibridge/internal/owner"
	"github.com/PRIESt512/uibridge/internal/tui"
)

var helloCmd = &cobra.Command{
	Use:   "hello",
	Short: "Run the hello demo view",
	Long: `Runs a terminal view with a name input and a "Say hello" trigger.
Each trigger dispatches a simulated slow computation through the bridge;
the result is applied back to this view's owner under its exclusive
context. Detaching the owner (ctrl+d) or navigating away (ctrl+n) cancels
whatever is still in flight.`,
	RunE: runHello,
}

func init() {
	helloCmd.Flags().Duration("delay", 0, "simulated work duration (overrides demo.delay)")
	helloCmd.Flags().String("name", "", "prefill for the name input (overrides demo.name)")
	_ = viper.BindPFlag("demo.delay", helloCmd.Flags().Lookup("delay"))
	_ = viper.BindPFlag("demo.name", helloCmd.Flags().Lookup("name"))

	rootCmd.AddCommand(helloCmd)
}

func runHello(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Demo.Delay <= 0 {
		cfg.Demo.Delay = 2 * time.Second
	}

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

	// Hot-reload: edits to the config file resize the dispatch pool while
	// the view is running.
	if watcher, werr := config.NewWatcher(viper.ConfigFileUsed()); werr == nil {
		watcher.OnChange(func(next *config.Config) {
			b.SetDispatchLimit(next.Bridge.DispatchLimit)
		})
		watcher.OnError(func(err error) {
			logger.Warn("config reload rejected", "error", err)
		})
		defer watcher.Stop()
	} else {
		logger.Warn("config watcher unavailable", "error", werr)
	}

	own := owner.New(owner.WithLogger(logger))
	defer own.Detach()

	return tui.Run(tui.New(b, own, cfg.Demo.Delay, cfg.Demo.Name, logger))
}
