package plan

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotmk/internal/config"
	"robotmk/internal/environment"
	"robotmk/internal/robot"
	"robotmk/internal/session"
)

func testConfig() config.Config {
	maxExecutions := 5
	maxAge := uint64(600)
	return config.Config{
		RuntimeDirectory: "/rt",
		RCCConfig:        &config.RCCConfig{BinaryPath: "/bin/rcc", SetupTimeout: 30},
		PlanGroups: []config.PlanGroupConfig{
			{
				ExecutionInterval: 300,
				Plans: []config.PlanConfig{{
					ID:     "login",
					Source: config.SourceConfig{Manual: &config.ManualSourceConfig{BaseDir: "/robots/login"}},
					RobotConfig: config.RobotConfig{
						RobotTarget: "tests.robot",
						Variables:   []config.VariableConfig{{Name: "A", Value: "1"}},
					},
					ExecutionConfig: config.ExecutionConfig{NAttemptsMax: 2, Timeout: 60, RetryStrategy: "incremental"},
					EnvironmentConfig: config.EnvironmentConfig{RCC: &config.RCCEnvironmentConfig{
						RobotYAMLPath: "robot.yaml", BuildTimeout: 900, EnvJSONPath: "env.json",
					}},
					SessionConfig:           config.SessionConfig{SpecificUser: &config.SpecificUserSessionConfig{UserName: "robot"}},
					WorkingDirectoryCleanup: config.WorkingDirectoryCleanupConfig{MaxExecutions: &maxExecutions},
				}},
			},
			{
				ExecutionInterval: 60,
				Plans: []config.PlanConfig{{
					ID: "checkout",
					Source: config.SourceConfig{Managed: &config.ManagedSourceConfig{
						TarGzPath: "/archives/checkout.tar.gz", VersionNumber: 2, VersionLabel: "v2",
					}},
					RobotConfig:             config.RobotConfig{RobotTarget: "checkout.robot"},
					ExecutionConfig:         config.ExecutionConfig{NAttemptsMax: 1, Timeout: 30, RetryStrategy: "complete"},
					EnvironmentConfig:       config.EnvironmentConfig{System: &config.SystemEnvironmentConfig{}},
					SessionConfig:           config.SessionConfig{Current: &config.CurrentSessionConfig{}},
					WorkingDirectoryCleanup: config.WorkingDirectoryCleanupConfig{MaxAgeSecs: &maxAge},
				}},
			},
		},
	}
}

func TestFromConfig(t *testing.T) {
	global, plans := FromConfig(testConfig())

	assert.Equal(t, "/bin/rcc", global.RCCBinaryPath)
	assert.Equal(t, 30*time.Second, global.RCCSetupTimeout)
	assert.Equal(t, filepath.Join("/rt", "results.lock"), global.ResultsLocker.Path())
	require.Len(t, plans, 2)

	login := plans[0]
	assert.Equal(t, filepath.Join("/rt", "working", "plans", "login"), login.WorkingDirectory)
	assert.Equal(t, filepath.Join("/rt", "results", "plans", "login.json"), login.ResultsFile)
	assert.Equal(t, filepath.Join("/robots/login", "tests.robot"), login.Robot.Target)
	assert.Equal(t, robot.RetryIncremental, login.Robot.RetryStrategy)
	assert.Equal(t, []robot.Variable{{Name: "A", Value: "1"}}, login.Robot.Arguments.Variables)
	assert.Equal(t, 300*time.Second, login.ExecutionInterval)
	assert.Equal(t, time.Minute, login.Timeout)
	assert.Equal(t, session.UserSession{UserName: "robot"}, login.Session)
	assert.Equal(t, environment.RCC{
		BinaryPath:    "/bin/rcc",
		RobotYAMLPath: filepath.Join("/robots/login", "robot.yaml"),
		SpaceName:     "login",
		EnvJSONPath:   filepath.Join("/robots/login", "env.json"),
		Timeout:       900 * time.Second,
	}, login.Environment)
	assert.True(t, login.UsesRCC())
	assert.Equal(t, WorkingDirectoryCleanup{MaxExecutions: 5}, login.Cleanup)
	assert.Equal(t, Group{Index: 0, Position: 0}, login.Group)
	assert.Nil(t, login.Managed)

	checkout := plans[1]
	require.NotNil(t, checkout.Managed)
	target := filepath.Join("/rt", "managed_robots", "checkout")
	assert.Equal(t, target, checkout.Managed.Target)
	assert.Equal(t, target, checkout.BaseDir)
	assert.Equal(t, filepath.Join(target, "checkout.robot"), checkout.Robot.Target)
	assert.Equal(t, session.CurrentSession{}, checkout.Session)
	assert.False(t, checkout.UsesRCC())
	assert.Equal(t, WorkingDirectoryCleanup{MaxAge: 10 * time.Minute}, checkout.Cleanup)
	assert.Equal(t, Group{Index: 1, Position: 0}, checkout.Group)
}

func TestAttemptsConfig(t *testing.T) {
	_, plans := FromConfig(testConfig())

	cfg := plans[0].AttemptsConfig()
	assert.Equal(t, uint64(300), cfg.Interval)
	assert.Equal(t, uint64(60), cfg.Timeout)
	assert.Equal(t, 2, cfg.NAttemptsMax)
}

func TestSortByGroup(t *testing.T) {
	plans := []Plan{
		{ID: "c", Group: Group{Index: 1, Position: 0}},
		{ID: "b", Group: Group{Index: 0, Position: 1}},
		{ID: "a", Group: Group{Index: 0, Position: 0}},
		{ID: "d", Group: Group{Index: 1, Position: 0}},
	}

	sorted := SortByGroup(plans)

	assert.Equal(t, []string{"a", "b", "c", "d"}, IDs(sorted))
	assert.Equal(t, "c", plans[0].ID, "input must not be modified")
}

func TestBySession(t *testing.T) {
	plans := []Plan{
		{ID: "1", Session: session.UserSession{UserName: "bob"}},
		{ID: "2", Session: session.CurrentSession{}},
		{ID: "3", Session: session.UserSession{UserName: "alice"}},
		{ID: "4", Session: session.UserSession{UserName: "bob"}},
	}

	groups := BySession(plans)

	require.Len(t, groups, 3)
	assert.Equal(t, "current_user", groups[0].Session.ID())
	assert.Equal(t, []string{"2"}, IDs(groups[0].Plans))
	assert.Equal(t, "user_alice", groups[1].Session.ID())
	assert.Equal(t, []string{"3"}, IDs(groups[1].Plans))
	assert.Equal(t, "user_bob", groups[2].Session.ID())
	assert.Equal(t, []string{"1", "4"}, IDs(groups[2].Plans))
}
