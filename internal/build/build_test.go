package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotmk/internal/environment"
	"robotmk/internal/plan"
	"robotmk/internal/results"
	"robotmk/internal/session"
	"robotmk/internal/termination"
)

// fakeSession returns the outcome configured for each plan's build.
type fakeSession struct {
	outcomes map[string]session.RunOutcome
	errs     map[string]error
	specs    *[]session.RunSpec
}

func (fakeSession) ID() string     { return "fake" }
func (fakeSession) String() string { return "fake" }

func (f fakeSession) Run(_ context.Context, spec session.RunSpec) (session.RunOutcome, error) {
	*f.specs = append(*f.specs, spec)
	return f.outcomes[spec.ID], f.errs[spec.ID]
}

func rccPlan(id string, s session.Session) plan.Plan {
	return plan.Plan{
		ID:      id,
		Session: s,
		Environment: environment.RCC{
			BinaryPath: "/bin/rcc", RobotYAMLPath: "/r/robot.yaml", SpaceName: id, Timeout: time.Minute,
		},
	}
}

func newGlobal(t *testing.T) plan.GlobalConfig {
	t.Helper()
	global := plan.NewGlobalConfig(t.TempDir(), "/bin/rcc", 0)
	require.NoError(t, os.MkdirAll(global.ResultsDirectory(), 0o755))
	return global
}

func readStates(t *testing.T, global plan.GlobalConfig) map[string]results.BuildOutcome {
	t.Helper()
	var states map[string]results.BuildOutcome
	require.NoError(t, results.ReadJSON(context.Background(),
		filepath.Join(global.ResultsDirectory(), results.BuildStatesFile), &states, global.ResultsLocker))
	return states
}

func TestBuildEnvironments(t *testing.T) {
	global := newGlobal(t)
	var specs []session.RunSpec
	s := fakeSession{
		outcomes: map[string]session.RunOutcome{
			"robotmk_env_building_ok":      session.ExitedWith(0),
			"robotmk_env_building_failing": session.ExitedWith(1),
			"robotmk_env_building_slow":    {Kind: session.TimedOut},
		},
		errs:  map[string]error{"robotmk_env_building_broken": errors.New("no such user")},
		specs: &specs,
	}
	plans := []plan.Plan{
		rccPlan("ok", s),
		{ID: "system", Session: s, Environment: environment.System{}},
		rccPlan("failing", s),
		rccPlan("slow", s),
		rccPlan("broken", s),
	}

	survivors, err := BuildEnvironments(context.Background(), global, plans)
	require.NoError(t, err)

	assert.Equal(t, []string{"ok", "system"}, plan.IDs(survivors))
	require.Len(t, specs, 4)
	assert.Equal(t, []string{"holotree", "variables", "--json"}, specs[0].Command.Arguments[:3])
	assert.Equal(t, time.Minute, specs[0].Timeout)
	assert.Equal(t, filepath.Join(global.EnvironmentBuildingDirectory(), "fake", "ok"), specs[0].BasePath)

	states := readStates(t, global)
	assert.Equal(t, results.BuildSuccess, states["ok"].Status)
	assert.Equal(t, results.BuildNotNeeded, states["system"].Status)
	assert.Equal(t, results.BuildFailure, states["failing"].Status)
	assert.Contains(t, states["failing"].Detail, "code 1")
	assert.Equal(t, results.BuildTimeout, states["slow"].Status)
	assert.Equal(t, results.BuildOutcome{Status: results.BuildFailure, Detail: "no such user"}, states["broken"])
}

func TestBuildEnvironmentsTerminated(t *testing.T) {
	global := newGlobal(t)
	var specs []session.RunSpec
	s := fakeSession{
		outcomes: map[string]session.RunOutcome{"robotmk_env_building_a": {Kind: session.Terminated}},
		specs:    &specs,
	}

	_, err := BuildEnvironments(context.Background(), global, []plan.Plan{rccPlan("a", s), rccPlan("b", s)})

	assert.ErrorIs(t, err, termination.ErrCancelled)
	assert.Len(t, specs, 1)
	assert.Equal(t, results.BuildInProgress, readStates(t, global)["a"].Status)
}

func TestBuildEnvironmentsCancelledBeforeStart(t *testing.T) {
	global := newGlobal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildEnvironments(ctx, global, []plan.Plan{{ID: "s", Environment: environment.System{}}})

	assert.ErrorIs(t, err, termination.ErrCancelled)
}
