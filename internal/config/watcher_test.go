package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	resetViper(t)
	SetDefaults()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "bridge:\n  dispatch_limit: 8\n")

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	changed := make(chan *Config, 1)
	w.OnChange(func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})

	writeConfig(t, path, "bridge:\n  dispatch_limit: 2\n")

	select {
	case cfg := <-changed:
		if cfg.Bridge.DispatchLimit != 2 {
			t.Errorf("DispatchLimit = %d, want 2", cfg.Bridge.DispatchLimit)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange not invoked after config write")
	}
}

func TestWatcherReportsInvalidEdit(t *testing.T) {
	resetViper(t)
	SetDefaults()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "bridge:\n  dispatch_limit: 8\n")

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	failed := make(chan error, 1)
	w.OnError(func(err error) {
		select {
		case failed <- err:
		default:
		}
	})

	writeConfig(t, path, "bridge:\n  dispatch_limit: -5\n")

	select {
	case err := <-failed:
		if err == nil {
			t.Error("OnError invoked with nil error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnError not invoked for invalid config")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "")

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.Stop()
	w.Stop()
}
