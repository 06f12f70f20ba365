package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"robotmk/internal/lock"
)

// Status is a consistent snapshot of the results directory. Fields of files
// that do not exist yet are left nil.
type Status struct {
	Phase         *SchedulerPhase         `json:"phase"`
	SetupFailures []SetupFailure          `json:"setup_failures"`
	BuildStates   map[string]BuildOutcome `json:"environment_build_states"`
	Reports       []SuiteExecutionReport  `json:"plans"`
}

// ReadStatus reads all result files of resultsDirectory under one shared
// lock. Reports are sorted by suite ID.
func ReadStatus(ctx context.Context, resultsDirectory string, locker *lock.Locker) (Status, error) {
	held, err := locker.WaitForReadLock(ctx)
	if err != nil {
		return Status{}, err
	}
	defer held.Release()

	var status Status
	var phase SchedulerPhase
	found, err := readOptional(filepath.Join(resultsDirectory, SchedulerPhaseFile), &phase)
	if err != nil {
		return Status{}, err
	}
	if found {
		status.Phase = &phase
	}
	if _, err := readOptional(filepath.Join(resultsDirectory, SetupFailuresFile), &status.SetupFailures); err != nil {
		return Status{}, err
	}
	if _, err := readOptional(filepath.Join(resultsDirectory, BuildStatesFile), &status.BuildStates); err != nil {
		return Status{}, err
	}

	plansDir := PlanResultsDirectory(resultsDirectory)
	entries, err := os.ReadDir(plansDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Status{}, fmt.Errorf("failed to list %s: %w", plansDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		var report SuiteExecutionReport
		if _, err := readOptional(filepath.Join(plansDir, entry.Name()), &report); err != nil {
			return Status{}, err
		}
		status.Reports = append(status.Reports, report)
	}
	sort.Slice(status.Reports, func(i, j int) bool {
		return status.Reports[i].SuiteID < status.Reports[j].SuiteID
	})
	return status, nil
}

func readOptional(path string, v interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return true, nil
}
