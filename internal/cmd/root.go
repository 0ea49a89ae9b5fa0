package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/PRIESt512/uibridge/internal/config"
	"github.com/PRIESt512/uibridge/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "uibridge",
	Short: "Owner-exclusive dispatch bridge for background work",
	Long: `uibridge delivers results of background work into single-writer
session/view state. Worker goroutines never touch owner state directly:
the bridge captures the requesting owner, schedules the result onto that
owner's exclusive context, and cancels anything still in flight when the
owner detaches or navigates away.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/uibridge/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/uibridge")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("UIBRIDGE")
	// Replace dots with underscores for nested keys in env vars
	// e.g., UIBRIDGE_BRIDGE_DISPATCH_LIMIT for bridge.dispatch_limit
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// newLogger builds the process logger from the logging config.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
}
