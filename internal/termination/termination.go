package termination

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"robotmk/pkg/logging"
)

// ErrCancelled is returned by blocking operations that gave up because the
// process is shutting down.
var ErrCancelled = errors.New("cancelled")

// IsCancelled reports whether err stems from process-wide cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// Start derives the process-wide cancellation context from parent. The
// context is cancelled on SIGINT or SIGTERM and, if runFlagPath is not empty,
// as soon as the run-flag file disappears. The returned stop function
// releases the signal handler and the file watcher.
func Start(parent context.Context, runFlagPath string) (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(parent)
	sigCtx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCtx.Done()
		if ctx.Err() == nil {
			logging.Info("Termination", "Received termination signal")
		}
		cancel()
	}()

	var watcher *RunFlagWatcher
	if runFlagPath != "" {
		if _, err := os.Stat(runFlagPath); err != nil {
			stopSignals()
			cancel()
			return nil, nil, fmt.Errorf("run flag file %s not accessible: %w", runFlagPath, err)
		}
		watcher = NewRunFlagWatcher(RunFlagWatcherConfig{
			Path: runFlagPath,
			OnRemoved: func() {
				logging.Info("Termination", "Run flag file %s removed", runFlagPath)
				cancel()
			},
		})
		if err := watcher.Start(); err != nil {
			stopSignals()
			cancel()
			return nil, nil, fmt.Errorf("failed to watch run flag file: %w", err)
		}
	}

	stop := func() {
		if watcher != nil {
			watcher.Stop()
		}
		stopSignals()
		cancel()
	}
	return ctx, stop, nil
}

// Sleep waits for d or until ctx is done, whichever comes first. It returns
// ErrCancelled if the wait was cut short.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ErrCancelled
	}
}
