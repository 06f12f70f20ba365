// Package lock implements the named read/write lock that guards the results
// directory against torn reads by the monitoring agent.
package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"robotmk/internal/termination"
)

// DefaultRetryDelay is how often a contended lock is re-tried.
const DefaultRetryDelay = 50 * time.Millisecond

// Locker hands out file locks on a single lock file. Writers (the scheduler)
// take exclusive locks, the external reader takes shared locks on the same
// file. Each acquisition opens its own file descriptor, so goroutines of this
// process exclude each other just like separate processes do.
type Locker struct {
	path       string
	retryDelay time.Duration
}

// New returns a Locker for the lock file at path.
func New(path string) *Locker {
	return &Locker{path: path, retryDelay: DefaultRetryDelay}
}

// Path returns the lock file path.
func (l *Locker) Path() string {
	return l.path
}

// Lock is a held lock. Release must be called exactly once.
type Lock struct {
	flock *flock.Flock
}

// Release unlocks and closes the underlying file.
func (l *Lock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.flock.Path(), err)
	}
	return l.flock.Close()
}

// WaitForWriteLock blocks until the exclusive lock is held or ctx is done. On
// cancellation it returns termination.ErrCancelled.
func (l *Locker) WaitForWriteLock(ctx context.Context) (*Lock, error) {
	return l.wait(ctx, true)
}

// WaitForReadLock blocks until a shared lock is held or ctx is done. On
// cancellation it returns termination.ErrCancelled.
func (l *Locker) WaitForReadLock(ctx context.Context) (*Lock, error) {
	return l.wait(ctx, false)
}

func (l *Locker) wait(ctx context.Context, exclusive bool) (*Lock, error) {
	if ctx.Err() != nil {
		return nil, termination.ErrCancelled
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for lock file %s: %w", l.path, err)
	}

	fl := flock.New(l.path)
	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = fl.TryLockContext(ctx, l.retryDelay)
	} else {
		locked, err = fl.TryRLockContext(ctx, l.retryDelay)
	}
	if err != nil {
		fl.Close()
		if ctx.Err() != nil {
			return nil, termination.ErrCancelled
		}
		return nil, fmt.Errorf("failed to acquire lock %s: %w", l.path, err)
	}
	if !locked {
		fl.Close()
		return nil, termination.ErrCancelled
	}
	return &Lock{flock: fl}, nil
}
