package setup

import (
	"context"
	"fmt"
	"path/filepath"

	"robotmk/internal/command"
	"robotmk/internal/environment"
	"robotmk/internal/permissions"
	"robotmk/internal/plan"
	"robotmk/internal/results"
	"robotmk/internal/session"
	"robotmk/internal/termination"
	"robotmk/pkg/logging"
)

// rccBinaryPermissions lets plan users read and execute the RCC binary.
const rccBinaryPermissions = "(RX)"

// SetupRCC prepares RCC for every session with RCC plans: the session's user
// is allowed to execute the RCC binary and RCC telemetry is disabled for it.
// Where the platform requires it, long path support is enabled once as the
// current user. Plans of a session whose setup failed are excluded. If ctx is
// cancelled, termination.ErrCancelled is returned.
func SetupRCC(ctx context.Context, global plan.GlobalConfig, plans []plan.Plan, granter permissions.Granter) ([]plan.Plan, []results.SetupFailure, error) {
	var rccPlans, otherPlans []plan.Plan
	for _, p := range plans {
		if p.Environment.Kind() == environment.KindRCC {
			rccPlans = append(rccPlans, p)
		} else {
			otherPlans = append(otherPlans, p)
		}
	}
	if len(rccPlans) == 0 {
		return plans, nil, nil
	}

	var failures []results.SetupFailure
	survivors, grantFailures := permissions.GrantToAllPlanUsers(granter, global.RCCBinaryPath, rccPlans, rccBinaryPermissions)
	for _, p := range rccPlans {
		if detail, failed := grantFailures[p.ID]; failed {
			failures = append(failures, results.SetupFailure{
				PlanID:  p.ID,
				Summary: "Failed to adjust permissions of RCC binary",
				Details: detail,
			})
		}
	}

	if requiresCurrentSessionDirectory && len(survivors) > 0 {
		err := runRCCSetupStep(ctx, global, session.CurrentSession{}, "long_path_support", "configuration", "longpaths", "--enable")
		if termination.IsCancelled(err) {
			return nil, nil, termination.ErrCancelled
		}
		if err != nil {
			failures = append(failures, failAll(survivors, "Enabling RCC long path support failed", err)...)
			survivors = nil
		}
	}

	var configured []plan.Plan
	for _, group := range plan.BySession(survivors) {
		err := runRCCSetupStep(ctx, global, group.Session, "telemetry_disabling", "configuration", "identity", "--do-not-track")
		if termination.IsCancelled(err) {
			return nil, nil, termination.ErrCancelled
		}
		if err != nil {
			failures = append(failures, failAll(group.Plans, "Disabling RCC telemetry failed", err)...)
			continue
		}
		configured = append(configured, group.Plans...)
	}

	return plan.SortByGroup(append(configured, otherPlans...)), failures, nil
}

func runRCCSetupStep(ctx context.Context, global plan.GlobalConfig, s session.Session, step string, args ...string) error {
	cmd := command.New(global.RCCBinaryPath)
	cmd.AddArguments(args...)
	spec := session.RunSpec{
		ID:       fmt.Sprintf("robotmk_rcc_setup_%s_%s", step, s.ID()),
		Command:  cmd,
		BasePath: filepath.Join(global.RCCSetupDirectory(), s.ID(), step),
		Timeout:  global.RCCSetupTimeout,
	}
	logging.Info("Setup", "%s: running RCC setup step %s", s, step)

	outcome, err := s.Run(ctx, spec)
	if err != nil {
		return err
	}
	switch outcome.Kind {
	case session.Terminated:
		return termination.ErrCancelled
	case session.TimedOut:
		return fmt.Errorf("%s timed out after %s", cmd, spec.Timeout)
	}
	if outcome.ExitCode == nil {
		return fmt.Errorf("failed to query exit code of %s", cmd)
	}
	if *outcome.ExitCode != 0 {
		return fmt.Errorf("%s exited with code %d, see %s", cmd, *outcome.ExitCode, session.StderrPath(spec.BasePath))
	}
	return nil
}
