package scheduling

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"robotmk/internal/plan"
)

// cleanUpWorkingDirectory prunes the run directories of a plan according to
// policy and returns the removed paths. Run directory names are UTC
// timestamps, so lexical order is chronological order.
func cleanUpWorkingDirectory(dir string, policy plan.WorkingDirectoryCleanup, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read entries of directory %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var stale []string
	switch {
	case policy.MaxExecutions > 0:
		if excess := len(names) - policy.MaxExecutions; excess > 0 {
			stale = names[:excess]
		}
	case policy.MaxAge > 0:
		for _, e := range entries {
			info, err := e.Info()
			if err != nil {
				continue
			}
			if now.Sub(info.ModTime()) > policy.MaxAge {
				stale = append(stale, e.Name())
			}
		}
		sort.Strings(stale)
	}

	removed := make([]string, 0, len(stale))
	for _, name := range stale {
		path := filepath.Join(dir, name)
		if err := os.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
