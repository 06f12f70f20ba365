package setup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotmk/internal/environment"
	"robotmk/internal/permissions"
	"robotmk/internal/plan"
	"robotmk/internal/results"
	"robotmk/internal/session"
	"robotmk/internal/termination"
)

type recordingGranter struct {
	permissions.Noop
	fullAccess map[string][]string // path -> users
	failUsers  map[string]bool
}

func newRecordingGranter() *recordingGranter {
	return &recordingGranter{fullAccess: map[string][]string{}, failUsers: map[string]bool{}}
}

func (r *recordingGranter) GrantFullAccess(user, path string) error {
	r.fullAccess[path] = append(r.fullAccess[path], user)
	if r.failUsers[user] {
		return errors.New("access denied")
	}
	return nil
}

func newGlobal(t *testing.T) plan.GlobalConfig {
	return plan.NewGlobalConfig(t.TempDir(), "/bin/rcc", 0)
}

func testPlan(global plan.GlobalConfig, id string, s session.Session, env environment.Environment, group plan.Group) plan.Plan {
	return plan.Plan{
		ID:               id,
		Session:          s,
		Environment:      env,
		WorkingDirectory: filepath.Join(global.PlansWorkingDirectory(), id),
		ResultsFile:      filepath.Join(global.PlanResultsDirectory(), id+".json"),
		Group:            group,
	}
}

func failedIDs(failures []results.SetupFailure) []string {
	var ids []string
	for _, f := range failures {
		ids = append(ids, f.PlanID)
	}
	return ids
}

func TestSetupCreatesDirectoriesAndSorts(t *testing.T) {
	global := newGlobal(t)
	plans := []plan.Plan{
		testPlan(global, "b", session.CurrentSession{}, environment.System{}, plan.Group{Index: 1}),
		testPlan(global, "a", session.CurrentSession{}, environment.RCC{}, plan.Group{Index: 0, Position: 1}),
		testPlan(global, "c", session.UserSession{UserName: "alice"}, environment.RCC{}, plan.Group{Index: 0, Position: 0}),
	}

	survivors, failures, err := Setup(context.Background(), global, plans, newRecordingGranter())
	require.NoError(t, err)

	assert.Empty(t, failures)
	assert.Equal(t, []string{"c", "a", "b"}, plan.IDs(survivors))
	for _, dir := range []string{
		global.ResultsDirectory(),
		global.PlanResultsDirectory(),
		global.ManagedDirectory(),
		filepath.Join(global.PlansWorkingDirectory(), "a"),
		filepath.Join(global.EnvironmentBuildingDirectory(), "current_user"),
		filepath.Join(global.EnvironmentBuildingDirectory(), "user_alice"),
		filepath.Join(global.RCCSetupDirectory(), "current_user"),
		filepath.Join(global.RCCSetupDirectory(), "user_alice"),
	} {
		assert.DirExists(t, dir)
	}
}

func TestSetupCleansUpStaleEntries(t *testing.T) {
	global := newGlobal(t)
	plans := []plan.Plan{testPlan(global, "keep", session.CurrentSession{}, environment.System{}, plan.Group{})}

	for _, dir := range []string{
		filepath.Join(global.PlansWorkingDirectory(), "keep", "old_run"),
		filepath.Join(global.PlansWorkingDirectory(), "stale"),
		filepath.Join(global.EnvironmentBuildingDirectory(), "leftover"),
	} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	require.NoError(t, os.MkdirAll(global.PlanResultsDirectory(), 0o755))
	for _, file := range []string{
		filepath.Join(global.PlanResultsDirectory(), "keep.json"),
		filepath.Join(global.PlanResultsDirectory(), "stale.json"),
		filepath.Join(global.ResultsDirectory(), results.SchedulerPhaseFile),
		filepath.Join(global.ManagedDirectory(), "old.txt"),
	} {
		require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
		require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))
	}

	for run := 0; run < 2; run++ {
		survivors, failures, err := Setup(context.Background(), global, plans, newRecordingGranter())
		require.NoError(t, err)
		assert.Equal(t, []string{"keep"}, plan.IDs(survivors))
		assert.Empty(t, failures)

		assert.DirExists(t, filepath.Join(global.PlansWorkingDirectory(), "keep", "old_run"))
		assert.NoDirExists(t, filepath.Join(global.PlansWorkingDirectory(), "stale"))
		assert.NoDirExists(t, filepath.Join(global.EnvironmentBuildingDirectory(), "leftover"))
		assert.FileExists(t, filepath.Join(global.PlanResultsDirectory(), "keep.json"))
		assert.NoFileExists(t, filepath.Join(global.PlanResultsDirectory(), "stale.json"))
		assert.NoFileExists(t, filepath.Join(global.ResultsDirectory(), results.SchedulerPhaseFile))
		assert.NoFileExists(t, filepath.Join(global.ManagedDirectory(), "old.txt"))
	}
}

func TestSetupExcludesFailingPlans(t *testing.T) {
	global := newGlobal(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	broken := testPlan(global, "broken", session.CurrentSession{}, environment.System{}, plan.Group{Position: 0})
	broken.WorkingDirectory = filepath.Join(blocker, "sub")
	plans := []plan.Plan{
		broken,
		testPlan(global, "bob1", session.UserSession{UserName: "bob"}, environment.System{}, plan.Group{Position: 1}),
		testPlan(global, "ok", session.CurrentSession{}, environment.System{}, plan.Group{Position: 2}),
	}
	granter := newRecordingGranter()
	granter.failUsers["bob"] = true

	survivors, failures, err := Setup(context.Background(), global, plans, granter)
	require.NoError(t, err)

	assert.Equal(t, []string{"ok"}, plan.IDs(survivors))
	require.Len(t, failures, 2)
	assert.Equal(t, "broken", failures[0].PlanID)
	assert.Equal(t, "Failed to create working directory", failures[0].Summary)
	assert.Equal(t, "bob1", failures[1].PlanID)
	assert.Equal(t, "Failed to set permissions for working directory", failures[1].Summary)
	assert.Equal(t, "access denied", failures[1].Details)
}

func TestSetupGrantsOncePerSessionDirectory(t *testing.T) {
	global := newGlobal(t)
	plans := []plan.Plan{
		testPlan(global, "a1", session.UserSession{UserName: "alice"}, environment.RCC{}, plan.Group{Position: 0}),
		testPlan(global, "a2", session.UserSession{UserName: "alice"}, environment.RCC{}, plan.Group{Position: 1}),
		testPlan(global, "b1", session.UserSession{UserName: "bob"}, environment.RCC{}, plan.Group{Position: 2}),
		testPlan(global, "s1", session.UserSession{UserName: "bob"}, environment.System{}, plan.Group{Position: 3}),
	}
	granter := newRecordingGranter()

	survivors, failures, err := Setup(context.Background(), global, plans, granter)
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Len(t, survivors, 4)

	aliceDir := filepath.Join(global.EnvironmentBuildingDirectory(), "user_alice")
	bobDir := filepath.Join(global.RCCSetupDirectory(), "user_bob")
	assert.Equal(t, []string{"alice"}, granter.fullAccess[aliceDir])
	assert.Equal(t, []string{"bob"}, granter.fullAccess[bobDir])
}

func TestSetupSessionFailureExcludesAllPlansOfSession(t *testing.T) {
	global := newGlobal(t)
	plans := []plan.Plan{
		testPlan(global, "a1", session.UserSession{UserName: "alice"}, environment.RCC{}, plan.Group{Position: 0}),
		testPlan(global, "a2", session.UserSession{UserName: "alice"}, environment.RCC{}, plan.Group{Position: 1}),
		testPlan(global, "c1", session.CurrentSession{}, environment.RCC{}, plan.Group{Position: 2}),
	}
	granter := &sessionDirFailingGranter{recordingGranter: newRecordingGranter(), user: "alice",
		dir: global.EnvironmentBuildingDirectory()}

	survivors, failures, err := Setup(context.Background(), global, plans, granter)
	require.NoError(t, err)

	assert.Equal(t, []string{"c1"}, plan.IDs(survivors))
	assert.ElementsMatch(t, []string{"a1", "a2"}, failedIDs(failures))
	for _, f := range failures {
		assert.Equal(t, "Failed to adjust permissions for user-specific environment building directory", f.Summary)
	}
}

// sessionDirFailingGranter only fails for user's directory below dir.
type sessionDirFailingGranter struct {
	*recordingGranter
	user, dir string
}

func (g *sessionDirFailingGranter) GrantFullAccess(user, path string) error {
	if user == g.user && filepath.Dir(path) == g.dir {
		return errors.New("access denied")
	}
	return g.recordingGranter.GrantFullAccess(user, path)
}

func TestSetupCurrentSessionDirectory(t *testing.T) {
	old := requiresCurrentSessionDirectory
	requiresCurrentSessionDirectory = true
	t.Cleanup(func() { requiresCurrentSessionDirectory = old })

	global := newGlobal(t)
	plans := []plan.Plan{testPlan(global, "a", session.UserSession{UserName: "alice"}, environment.RCC{}, plan.Group{})}

	survivors, failures, err := Setup(context.Background(), global, plans, newRecordingGranter())
	require.NoError(t, err)

	assert.Len(t, survivors, 1)
	assert.Empty(t, failures)
	assert.DirExists(t, filepath.Join(global.RCCSetupDirectory(), "current_user"))
}

func TestSetupCancelledWhileWaitingForLock(t *testing.T) {
	global := newGlobal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Setup(ctx, global, nil, newRecordingGranter())

	assert.ErrorIs(t, err, termination.ErrCancelled)
}

func TestCleanUpFileSystemEntries(t *testing.T) {
	dir := t.TempDir()
	var present []string
	for _, name := range []string{"a", "b", "c"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Join(path, "nested"), 0o755))
		present = append(present, path)
	}
	file := filepath.Join(dir, "d.json")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	present = append(present, file)

	removed, err := cleanUpFileSystemEntries([]string{filepath.Join(dir, "b"), filepath.Join(dir, "missing")}, present)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "a"), filepath.Join(dir, "c"), file}, removed)
	assert.DirExists(t, filepath.Join(dir, "b"))
	assert.NoDirExists(t, filepath.Join(dir, "a"))
	assert.NoFileExists(t, file)

	removed, err = cleanUpFileSystemEntries([]string{filepath.Join(dir, "b")}, []string{filepath.Join(dir, "b")})
	require.NoError(t, err)
	assert.Empty(t, removed)
}
