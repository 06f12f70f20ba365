package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"robotmk/internal/environment"
	"robotmk/internal/permissions"
	"robotmk/internal/plan"
	"robotmk/internal/results"
	"robotmk/internal/session"
	"robotmk/pkg/logging"
)

// requiresCurrentSessionDirectory is a variable to allow testing both
// platform behaviours.
var requiresCurrentSessionDirectory = permissions.RequiresCurrentSessionDirectory

// Setup runs the general setup stages. If ctx is cancelled while waiting for
// the results lock, termination.ErrCancelled is returned.
func Setup(ctx context.Context, global plan.GlobalConfig, plans []plan.Plan, granter permissions.Granter) ([]plan.Plan, []results.SetupFailure, error) {
	for _, dir := range []string{global.WorkingDirectory(), global.PlansWorkingDirectory()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	for _, dir := range []string{global.RCCSetupDirectory(), global.EnvironmentBuildingDirectory()} {
		if err := recreateDirectory(dir); err != nil {
			return nil, nil, err
		}
	}

	keep := make([]string, 0, len(plans))
	for _, p := range plans {
		keep = append(keep, p.WorkingDirectory)
	}
	present, err := topLevelDirectories(global.PlansWorkingDirectory())
	if err != nil {
		return nil, nil, err
	}
	if _, err := cleanUpFileSystemEntries(keep, present); err != nil {
		return nil, nil, fmt.Errorf("failed to clean up plan working directories: %w", err)
	}

	if err := recreateDirectory(global.ManagedDirectory()); err != nil {
		return nil, nil, err
	}
	if err := setupResultsDirectories(ctx, global, plans); err != nil {
		return nil, nil, err
	}
	logging.Info("Setup", "Created and cleaned up top-level directories")

	var failures, stageFailures []results.SetupFailure
	plans, stageFailures = setupManagedDirectories(granter, plans)
	failures = append(failures, stageFailures...)
	plans, stageFailures = setupPlanWorkingDirectories(granter, plans)
	failures = append(failures, stageFailures...)
	plans, stageFailures = setupRCCWorkingDirectories(global, granter, plans)
	failures = append(failures, stageFailures...)

	return plan.SortByGroup(plans), failures, nil
}

func recreateDirectory(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove directory %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

func setupResultsDirectories(ctx context.Context, global plan.GlobalConfig, plans []plan.Plan) error {
	for _, dir := range []string{global.ResultsDirectory(), global.PlanResultsDirectory()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return cleanUpResultsDirectory(ctx, global, plans)
}

func failure(p plan.Plan, summary string, err error) results.SetupFailure {
	logging.Error("Setup", err, "Plan %s: %s. Plan won't be scheduled.", p.ID, summary)
	return results.NewSetupFailure(p.ID, summary, err)
}

func failAll(plans []plan.Plan, summary string, err error) []results.SetupFailure {
	failures := make([]results.SetupFailure, 0, len(plans))
	for _, p := range plans {
		failures = append(failures, failure(p, summary, err))
	}
	return failures
}

func setupManagedDirectories(granter permissions.Granter, plans []plan.Plan) ([]plan.Plan, []results.SetupFailure) {
	var (
		survivors []plan.Plan
		failures  []results.SetupFailure
	)
	for _, p := range plans {
		if p.Managed == nil {
			survivors = append(survivors, p)
			continue
		}
		if err := os.MkdirAll(p.Managed.Target, 0o755); err != nil {
			failures = append(failures, failure(p, "Failed to create managed directory", err))
			continue
		}
		if user, ok := p.Session.(session.UserSession); ok {
			if err := granter.GrantFullAccess(user.UserName, p.Managed.Target); err != nil {
				failures = append(failures, failure(p, "Failed to adjust permissions of managed directory", err))
				continue
			}
			logging.Info("Setup", "Adjusted permissions for %s for user `%s`", p.Managed.Target, user.UserName)
		}
		survivors = append(survivors, p)
	}
	return survivors, failures
}

func setupPlanWorkingDirectories(granter permissions.Granter, plans []plan.Plan) ([]plan.Plan, []results.SetupFailure) {
	var (
		survivors []plan.Plan
		failures  []results.SetupFailure
	)
	for _, p := range plans {
		if err := os.MkdirAll(p.WorkingDirectory, 0o755); err != nil {
			failures = append(failures, failure(p, "Failed to create working directory", err))
			continue
		}
		if err := granter.ResetAccess(p.WorkingDirectory); err != nil {
			failures = append(failures, failure(p, "Failed to reset permissions for working directory", err))
			continue
		}
		if user, ok := p.Session.(session.UserSession); ok {
			logging.Info("Setup", "Granting full access for %s to user `%s`", p.WorkingDirectory, user.UserName)
			if err := granter.GrantFullAccess(user.UserName, p.WorkingDirectory); err != nil {
				failures = append(failures, failure(p, "Failed to set permissions for working directory", err))
				continue
			}
		}
		survivors = append(survivors, p)
	}
	return survivors, failures
}

func setupRCCWorkingDirectories(global plan.GlobalConfig, granter permissions.Granter, plans []plan.Plan) ([]plan.Plan, []results.SetupFailure) {
	var rccPlans, otherPlans []plan.Plan
	for _, p := range plans {
		if p.Environment.Kind() == environment.KindRCC {
			rccPlans = append(rccPlans, p)
		} else {
			otherPlans = append(otherPlans, p)
		}
	}

	survivors, failures := setupOneDirectoryPerSession(granter, global.EnvironmentBuildingDirectory(), rccPlans, "environment building")
	survivors, rccSetupFailures := setupOneDirectoryPerSession(granter, global.RCCSetupDirectory(), survivors, "RCC setup")
	failures = append(failures, rccSetupFailures...)
	if requiresCurrentSessionDirectory {
		var longPathFailures []results.SetupFailure
		survivors, longPathFailures = setupCurrentSessionDirectory(global.RCCSetupDirectory(), survivors, "RCC setup (long path support)")
		failures = append(failures, longPathFailures...)
	}

	return append(survivors, otherPlans...), failures
}

// setupOneDirectoryPerSession creates <target>/<session id> once per session
// and hands it over to the session's user.
func setupOneDirectoryPerSession(granter permissions.Granter, target string, plans []plan.Plan, description string) ([]plan.Plan, []results.SetupFailure) {
	if len(plans) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, failAll(plans, fmt.Sprintf("Failed to create %s directory", description), err)
	}

	var (
		survivors []plan.Plan
		failures  []results.SetupFailure
	)
	for _, group := range plan.BySession(plans) {
		sessionTarget := filepath.Join(target, group.Session.ID())
		if err := os.MkdirAll(sessionTarget, 0o755); err != nil {
			failures = append(failures, failAll(group.Plans, fmt.Sprintf("Failed to create user-specific %s directory", description), err)...)
			continue
		}
		if user, ok := group.Session.(session.UserSession); ok {
			logging.Info("Setup", "Granting full access for %s to user `%s`", sessionTarget, user.UserName)
			if err := granter.GrantFullAccess(user.UserName, sessionTarget); err != nil {
				failures = append(failures, failAll(group.Plans, fmt.Sprintf("Failed to adjust permissions for user-specific %s directory", description), err)...)
				continue
			}
		}
		survivors = append(survivors, group.Plans...)
	}
	return survivors, failures
}

func setupCurrentSessionDirectory(target string, plans []plan.Plan, description string) ([]plan.Plan, []results.SetupFailure) {
	if len(plans) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Join(target, session.CurrentSession{}.ID()), 0o755); err != nil {
		return nil, failAll(plans, fmt.Sprintf("Failed to create %s directory", description), err)
	}
	return plans, nil
}
