package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"robotmk/internal/lock"
)

// WriteJSON serializes v and atomically replaces path with it while holding
// the exclusive results lock. If the lock cannot be acquired because ctx is
// done, termination.ErrCancelled is returned unwrapped.
func WriteJSON(ctx context.Context, path string, v interface{}, locker *lock.Locker) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", filepath.Base(path), err)
	}

	held, err := locker.WaitForWriteLock(ctx)
	if err != nil {
		return err
	}
	writeErr := writeAtomic(path, data)
	releaseErr := held.Release()
	return errors.Join(writeErr, releaseErr)
}

// ReadJSON decodes path into v while holding a shared results lock.
func ReadJSON(ctx context.Context, path string, v interface{}, locker *lock.Locker) error {
	held, err := locker.WaitForReadLock(ctx)
	if err != nil {
		return err
	}
	data, readErr := os.ReadFile(path)
	releaseErr := held.Release()
	if readErr != nil {
		return readErr
	}
	if releaseErr != nil {
		return releaseErr
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
