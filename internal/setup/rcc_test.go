package setup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotmk/internal/environment"
	"robotmk/internal/permissions"
	"robotmk/internal/plan"
	"robotmk/internal/session"
	"robotmk/internal/termination"
)

// fakeSession records its runs and returns a fixed outcome.
type fakeSession struct {
	id      string
	outcome session.RunOutcome
	err     error
	runs    *[]session.RunSpec
}

func (f fakeSession) ID() string     { return f.id }
func (f fakeSession) String() string { return f.id }

func (f fakeSession) Run(_ context.Context, spec session.RunSpec) (session.RunOutcome, error) {
	*f.runs = append(*f.runs, spec)
	return f.outcome, f.err
}

func TestSetupRCC(t *testing.T) {
	global := newGlobal(t)
	var runs []session.RunSpec
	good := fakeSession{id: "good", outcome: session.ExitedWith(0), runs: &runs}
	failing := fakeSession{id: "failing", outcome: session.ExitedWith(1), runs: &runs}
	broken := fakeSession{id: "broken", err: errors.New("cannot start"), runs: &runs}

	plans := []plan.Plan{
		{ID: "g1", Session: good, Environment: environment.RCC{}, Group: plan.Group{Position: 0}},
		{ID: "f1", Session: failing, Environment: environment.RCC{}, Group: plan.Group{Position: 1}},
		{ID: "s1", Session: failing, Environment: environment.System{}, Group: plan.Group{Position: 2}},
		{ID: "g2", Session: good, Environment: environment.RCC{}, Group: plan.Group{Position: 3}},
		{ID: "b1", Session: broken, Environment: environment.RCC{}, Group: plan.Group{Position: 4}},
	}

	survivors, failures, err := SetupRCC(context.Background(), global, plans, newRecordingGranter())
	require.NoError(t, err)

	assert.Equal(t, []string{"g1", "s1", "g2"}, plan.IDs(survivors))
	assert.ElementsMatch(t, []string{"f1", "b1"}, failedIDs(failures))
	for _, f := range failures {
		assert.Equal(t, "Disabling RCC telemetry failed", f.Summary)
	}

	// One telemetry call per session with RCC plans.
	require.Len(t, runs, 3)
	for _, r := range runs {
		assert.Equal(t, []string{"configuration", "identity", "--do-not-track"}, r.Command.Arguments)
		assert.Equal(t, "/bin/rcc", r.Command.Executable)
	}
}

func TestSetupRCCWithoutRCCPlans(t *testing.T) {
	global := newGlobal(t)
	plans := []plan.Plan{{ID: "s", Session: session.CurrentSession{}, Environment: environment.System{}}}

	survivors, failures, err := SetupRCC(context.Background(), global, plans, newRecordingGranter())
	require.NoError(t, err)
	assert.Equal(t, plans, survivors)
	assert.Empty(t, failures)
}

func TestSetupRCCTerminated(t *testing.T) {
	global := newGlobal(t)
	var runs []session.RunSpec
	s := fakeSession{id: "s", outcome: session.RunOutcome{Kind: session.Terminated}, runs: &runs}
	plans := []plan.Plan{{ID: "r", Session: s, Environment: environment.RCC{}}}

	_, _, err := SetupRCC(context.Background(), global, plans, newRecordingGranter())

	assert.ErrorIs(t, err, termination.ErrCancelled)
}

func TestSetupRCCBinaryGrantFailure(t *testing.T) {
	global := newGlobal(t)
	var runs []session.RunSpec
	plans := []plan.Plan{
		{ID: "u", Session: session.UserSession{UserName: "alice"}, Environment: environment.RCC{}},
	}

	survivors, failures, err := SetupRCC(context.Background(), global, plans, failingGrant{})
	require.NoError(t, err)

	assert.Empty(t, survivors)
	require.Len(t, failures, 1)
	assert.Equal(t, "Failed to adjust permissions of RCC binary", failures[0].Summary)
	assert.Contains(t, failures[0].Details, "alice")
	assert.Empty(t, runs)
}

type failingGrant struct{ permissions.Noop }

func (failingGrant) Grant(string, string, string, ...string) error { return errors.New("denied") }
