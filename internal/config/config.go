// Package config defines the uibridge configuration, its defaults, loading
// via viper, validation, and hot-reload watching.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete uibridge configuration
type Config struct {
	Bridge  BridgeConfig  `mapstructure:"bridge"`
	Demo    DemoConfig    `mapstructure:"demo"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// BridgeConfig controls the dispatch bridge
type BridgeConfig struct {
	// DispatchLimit caps how many deliveries traverse the secondary pool
	// concurrently (0 = unlimited)
	DispatchLimit int `mapstructure:"dispatch_limit"`
}

// DemoConfig controls the hello demo view and the stress command
type DemoConfig struct {
	// Delay is how long the simulated background work takes
	Delay time.Duration `mapstructure:"delay"`
	// Name prefills the demo view's text input
	Name string `mapstructure:"name"`
	// StressCommands is how many commands the stress run dispatches
	StressCommands int `mapstructure:"stress_commands"`
	// StressOwners is how many owners the stress run spreads commands across
	StressOwners int `mapstructure:"stress_owners"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is where log files are written; empty logs to stderr
	Dir string `mapstructure:"dir"`
}

// Default returns the configuration with all default values applied
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{
			DispatchLimit: 8,
		},
		Demo: DemoConfig{
			Delay:          2 * time.Second,
			Name:           "",
			StressCommands: 200,
			StressOwners:   4,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     "",
		},
	}
}

// SetDefaults registers all default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("bridge.dispatch_limit", defaults.Bridge.DispatchLimit)

	viper.SetDefault("demo.delay", defaults.Demo.Delay)
	viper.SetDefault("demo.name", defaults.Demo.Name)
	viper.SetDefault("demo.stress_commands", defaults.Demo.StressCommands)
	viper.SetDefault("demo.stress_owners", defaults.Demo.StressOwners)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load unmarshals and validates the current viper state
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "uibridge")
	}
	// Fall back to ~/.config/uibridge
	home, err := os.UserHomeDir()
	if err != nil {
		return ".uibridge"
	}
	return filepath.Join(home, ".config", "uibridge")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
