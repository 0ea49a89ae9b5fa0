package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// debounceWindow coalesces editor write bursts into one reload.
const debounceWindow = 200 * time.Millisecond

// Watcher reloads the config file when it changes on disk and notifies
// subscribers with the freshly validated configuration. Invalid edits are
// reported through the error callback and the previous config stays in
// effect.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string

	mu       sync.Mutex
	onChange func(*Config)
	onError  func(error)

	stopCh  chan struct{}
	stopped sync.Once
}

// NewWatcher creates a Watcher for the given config file path. If path is
// empty, the default ConfigFile() location is watched.
func NewWatcher(path string) (*Watcher, error) {
	if path == "" {
		path = ConfigFile()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		path:    path,
		stopCh:  make(chan struct{}),
	}

	// Watch the directory, not the file: editors replace files on save and
	// a watch on the old inode would go stale.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// OnChange sets the callback invoked with each successfully reloaded config.
func (w *Watcher) OnChange(cb func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = cb
}

// OnError sets the callback invoked when a reload fails validation.
func (w *Watcher) OnError(cb func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = cb
}

// Stop ends watching. Safe to call multiple times.
func (w *Watcher) Stop() {
	w.stopped.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
	})
}

// loop drains fsnotify events, debouncing bursts before reloading.
func (w *Watcher) loop() {
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				timer.Reset(debounceWindow)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			w.reload()

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// reload re-reads the file through viper and notifies the subscriber.
func (w *Watcher) reload() {
	w.mu.Lock()
	onChange := w.onChange
	onError := w.onError
	w.mu.Unlock()

	if err := viper.ReadInConfig(); err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}

	cfg, err := Load()
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}

	if onChange != nil {
		onChange(cfg)
	}
}
