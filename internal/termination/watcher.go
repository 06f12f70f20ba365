package termination

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"robotmk/pkg/logging"
)

// DefaultPollInterval is the fallback polling interval used when fsnotify is
// not available.
const DefaultPollInterval = 250 * time.Millisecond

// RunFlagWatcherConfig holds configuration for the run-flag watcher.
type RunFlagWatcherConfig struct {
	// Path is the run-flag file. Its removal requests termination.
	Path string

	// PollInterval is the fallback polling interval.
	PollInterval time.Duration

	// OnRemoved is called once when the file is gone.
	OnRemoved func()
}

// RunFlagWatcher observes the run-flag file. It watches the parent directory
// with fsnotify and falls back to polling where fsnotify is unavailable.
type RunFlagWatcher struct {
	mu sync.Mutex

	config RunFlagWatcherConfig

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool
	fired     sync.Once
}

// NewRunFlagWatcher creates a watcher. Call Start to begin watching.
func NewRunFlagWatcher(config RunFlagWatcherConfig) *RunFlagWatcher {
	if config.PollInterval == 0 {
		config.PollInterval = DefaultPollInterval
	}
	return &RunFlagWatcher{config: config}
}

// Start begins watching. It is a no-op if the watcher is already running.
func (w *RunFlagWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	w.stopCh = make(chan struct{})
	w.running = true

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("Termination", "fsnotify not available, falling back to polling: %v", err)
		go w.poll()
		return nil
	}
	if err := watcher.Add(filepath.Dir(w.config.Path)); err != nil {
		logging.Warn("Termination", "Failed to watch %s, falling back to polling: %v",
			filepath.Dir(w.config.Path), err)
		watcher.Close()
		go w.poll()
		return nil
	}
	w.fsWatcher = watcher

	go w.processEvents(watcher.Events, watcher.Errors)

	// The file may have vanished before the watch was registered.
	if w.isGone() {
		w.fire()
	}
	return nil
}

func (w *RunFlagWatcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.config.Path) {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.isGone() {
				w.fire()
			}

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("Termination", err, "fsnotify error")
		}
	}
}

func (w *RunFlagWatcher) poll() {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.isGone() {
				w.fire()
				return
			}
		}
	}
}

func (w *RunFlagWatcher) isGone() bool {
	_, err := os.Stat(w.config.Path)
	return errors.Is(err, os.ErrNotExist)
}

func (w *RunFlagWatcher) fire() {
	w.fired.Do(func() {
		if w.config.OnRemoved != nil {
			w.config.OnRemoved()
		}
	})
}

// Stop stops watching.
func (w *RunFlagWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn("Termination", "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}
}
