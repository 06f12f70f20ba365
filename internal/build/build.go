// Package build prepares the environments of all plans before scheduling
// starts. Builds run one after another since they are typically network and
// disk heavy.
package build

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"robotmk/internal/metrics"
	"robotmk/internal/plan"
	"robotmk/internal/results"
	"robotmk/internal/session"
	"robotmk/internal/termination"
	"robotmk/pkg/logging"
)

// BuildEnvironments builds the environment of every plan and returns the
// plans whose environment is ready. The state of every build is persisted to
// the build states file after each change. If ctx is cancelled,
// termination.ErrCancelled is returned.
func BuildEnvironments(ctx context.Context, global plan.GlobalConfig, plans []plan.Plan) ([]plan.Plan, error) {
	statesPath := filepath.Join(global.ResultsDirectory(), results.BuildStatesFile)
	states := make(map[string]results.BuildOutcome, len(plans))
	for _, p := range plans {
		if p.Environment.BuildCommand() == nil {
			states[p.ID] = results.BuildOutcome{Status: results.BuildNotNeeded}
		} else {
			states[p.ID] = results.BuildOutcome{Status: results.BuildPending}
		}
	}
	write := func() error {
		return results.WriteJSON(ctx, statesPath, states, global.ResultsLocker)
	}
	if err := write(); err != nil {
		return nil, err
	}

	var survivors []plan.Plan
	for _, p := range plans {
		if states[p.ID].Status == results.BuildNotNeeded {
			survivors = append(survivors, p)
			continue
		}

		start := time.Now()
		states[p.ID] = results.BuildOutcome{Status: results.BuildInProgress, StartTime: start.Unix()}
		if err := write(); err != nil {
			return nil, err
		}

		outcome, err := buildEnvironment(ctx, global, p, start)
		if termination.IsCancelled(err) {
			return nil, termination.ErrCancelled
		}
		states[p.ID] = outcome
		metrics.RecordEnvironmentBuild(p.ID, string(outcome.Status))
		if err := write(); err != nil {
			return nil, err
		}
		if outcome.Status == results.BuildSuccess {
			survivors = append(survivors, p)
		}
	}
	return survivors, nil
}

func buildEnvironment(ctx context.Context, global plan.GlobalConfig, p plan.Plan, start time.Time) (results.BuildOutcome, error) {
	cmd := p.Environment.BuildCommand()
	spec := session.RunSpec{
		ID:       "robotmk_env_building_" + p.ID,
		Command:  *cmd,
		BasePath: filepath.Join(global.EnvironmentBuildingDirectory(), p.Session.ID(), p.ID),
		Timeout:  p.Environment.BuildTimeout(),
	}
	logging.Info("Build", "Plan %s: building environment with %s", p.ID, cmd)

	runOutcome, err := p.Session.Run(ctx, spec)
	if err != nil {
		logging.Error("Build", err, "Plan %s: environment building failed", p.ID)
		return results.BuildOutcome{Status: results.BuildFailure, Detail: err.Error()}, nil
	}

	switch runOutcome.Kind {
	case session.Terminated:
		return results.BuildOutcome{}, termination.ErrCancelled
	case session.TimedOut:
		logging.Warn("Build", "Plan %s: environment building timed out after %s", p.ID, spec.Timeout)
		return results.BuildOutcome{Status: results.BuildTimeout}, nil
	}
	if runOutcome.ExitCode == nil {
		return results.BuildOutcome{Status: results.BuildFailure, Detail: "Failed to query exit code of environment build"}, nil
	}
	if *runOutcome.ExitCode != 0 {
		detail := fmt.Sprintf("Environment building exited with code %d, see %s", *runOutcome.ExitCode, session.StderrPath(spec.BasePath))
		logging.Warn("Build", "Plan %s: %s", p.ID, detail)
		return results.BuildOutcome{Status: results.BuildFailure, Detail: detail}, nil
	}

	duration := time.Since(start)
	logging.Info("Build", "Plan %s: environment built in %s", p.ID, duration.Round(time.Second))
	return results.BuildOutcome{Status: results.BuildSuccess, Duration: int64(duration / time.Second)}, nil
}
