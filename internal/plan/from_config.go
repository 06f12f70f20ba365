package plan

import (
	"path/filepath"
	"time"

	"robotmk/internal/config"
	"robotmk/internal/environment"
	"robotmk/internal/robot"
	"robotmk/internal/session"
)

// FromConfig derives the global settings and all plans from a validated
// configuration.
func FromConfig(cfg config.Config) (GlobalConfig, []Plan) {
	var (
		rccBinary    string
		setupTimeout time.Duration
	)
	if cfg.RCCConfig != nil {
		rccBinary = cfg.RCCConfig.BinaryPath
		setupTimeout = seconds(cfg.RCCConfig.SetupTimeout)
	}
	global := NewGlobalConfig(cfg.RuntimeDirectory, rccBinary, setupTimeout)

	var plans []Plan
	for g, group := range cfg.PlanGroups {
		for p, pc := range group.Plans {
			plan := fromPlanConfig(global, cfg.PythonExecutable, pc)
			plan.ExecutionInterval = seconds(group.ExecutionInterval)
			plan.Group = Group{Index: g, Position: p}
			plans = append(plans, plan)
		}
	}
	return global, plans
}

func fromPlanConfig(global GlobalConfig, python string, pc config.PlanConfig) Plan {
	p := Plan{
		ID:               pc.ID,
		WorkingDirectory: filepath.Join(global.PlansWorkingDirectory(), pc.ID),
		ResultsFile:      filepath.Join(global.PlanResultsDirectory(), pc.ID+".json"),
		Timeout:          seconds(pc.ExecutionConfig.Timeout),
	}

	if managed := pc.Source.Managed; managed != nil {
		target := filepath.Join(global.ManagedDirectory(), pc.ID)
		p.BaseDir = target
		p.Managed = &ManagedSource{
			TarGzPath:     managed.TarGzPath,
			Target:        target,
			VersionNumber: managed.VersionNumber,
			VersionLabel:  managed.VersionLabel,
		}
	} else if pc.Source.Manual != nil {
		p.BaseDir = pc.Source.Manual.BaseDir
	}

	rc := pc.RobotConfig
	variables := make([]robot.Variable, 0, len(rc.Variables))
	for _, v := range rc.Variables {
		variables = append(variables, robot.Variable{Name: v.Name, Value: v.Value})
	}
	p.Robot = robot.Robot{
		Target: filepath.Join(p.BaseDir, rc.RobotTarget),
		Arguments: robot.Arguments{
			Suites:        rc.Suites,
			Tests:         rc.Tests,
			Include:       rc.TestTagsInclude,
			Exclude:       rc.TestTagsExclude,
			Variables:     variables,
			VariableFiles: rc.VariableFiles,
			ArgumentFiles: rc.ArgumentFiles,
			ExitOnError:   rc.ExitOnFailure,
		},
		NAttemptsMax:     pc.ExecutionConfig.NAttemptsMax,
		RetryStrategy:    robot.RetryStrategy(pc.ExecutionConfig.RetryStrategy),
		PythonExecutable: python,
	}

	if rcc := pc.EnvironmentConfig.RCC; rcc != nil {
		env := environment.RCC{
			BinaryPath:    global.RCCBinaryPath,
			RobotYAMLPath: filepath.Join(p.BaseDir, rcc.RobotYAMLPath),
			SpaceName:     pc.ID,
			Timeout:       seconds(rcc.BuildTimeout),
		}
		if rcc.EnvJSONPath != "" {
			env.EnvJSONPath = filepath.Join(p.BaseDir, rcc.EnvJSONPath)
		}
		p.Environment = env
	} else {
		p.Environment = environment.System{}
	}

	if user := pc.SessionConfig.SpecificUser; user != nil {
		p.Session = session.UserSession{UserName: user.UserName}
	} else {
		p.Session = session.CurrentSession{}
	}

	if cleanup := pc.WorkingDirectoryCleanup; cleanup.MaxAgeSecs != nil {
		p.Cleanup = WorkingDirectoryCleanup{MaxAge: seconds(*cleanup.MaxAgeSecs)}
	} else if cleanup.MaxExecutions != nil {
		p.Cleanup = WorkingDirectoryCleanup{MaxExecutions: *cleanup.MaxExecutions}
	}
	return p
}

func seconds(s uint64) time.Duration {
	return time.Duration(s) * time.Second
}
