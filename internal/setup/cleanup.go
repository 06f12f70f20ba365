package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"robotmk/internal/plan"
)

// cleanUpFileSystemEntries removes every entry of present that is not in
// keep and returns the removed paths in sorted order.
func cleanUpFileSystemEntries(keep, present []string) ([]string, error) {
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[filepath.Clean(k)] = true
	}

	var stale []string
	for _, p := range present {
		if !kept[filepath.Clean(p)] {
			stale = append(stale, p)
		}
	}
	sort.Strings(stale)

	for _, p := range stale {
		if err := os.RemoveAll(p); err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return stale, nil
}

// cleanUpResultsDirectory removes stale top-level result files and the
// reports of plans that are no longer configured. It holds the write lock
// while doing so; the lock error is returned unwrapped.
func cleanUpResultsDirectory(ctx context.Context, global plan.GlobalConfig, plans []plan.Plan) error {
	held, err := global.ResultsLocker.WaitForWriteLock(ctx)
	if err != nil {
		return err
	}
	defer held.Release()

	files, err := topLevelFiles(global.ResultsDirectory())
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("failed to remove %s: %w", f, err)
		}
	}

	keep := make([]string, 0, len(plans))
	for _, p := range plans {
		keep = append(keep, p.ResultsFile)
	}
	present, err := topLevelFiles(global.PlanResultsDirectory())
	if err != nil {
		return err
	}
	if _, err := cleanUpFileSystemEntries(keep, present); err != nil {
		return fmt.Errorf("failed to clean up results directory: %w", err)
	}
	return nil
}

func topLevelDirectories(dir string) ([]string, error) {
	return topLevelEntries(dir, true)
}

func topLevelFiles(dir string) ([]string, error) {
	return topLevelEntries(dir, false)
}

func topLevelEntries(dir string, directories bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries of directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() == directories {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
