package environment

import (
	"time"

	"robotmk/internal/command"
)

const (
	// rccControllerName identifies this scheduler towards RCC.
	rccControllerName = "robotmk"
	// rccRobotFailureExitCode is what "rcc task script" returns when the
	// wrapped command itself failed.
	rccRobotFailureExitCode = 10
)

// RCC runs commands inside an RCC holotree space built from a robot.yaml.
type RCC struct {
	BinaryPath    string
	RobotYAMLPath string
	// SpaceName isolates the holotree space of one plan.
	SpaceName string
	// EnvJSONPath is an optional file with additional environment variables.
	EnvJSONPath string
	Timeout     time.Duration
}

func (RCC) Kind() Kind { return KindRCC }

// Wrap runs spec via "rcc task script" without rebuilding the environment.
func (r RCC) Wrap(spec command.Spec) command.Spec {
	wrapped := command.New(r.BinaryPath)
	wrapped.AddArguments("task", "script", "--no-build")
	r.applyCommonArguments(&wrapped)
	wrapped.AddArgument("--")
	wrapped.AddArguments(spec.Argv()...)
	wrapped.Env = append(wrapped.Env, spec.Env...)
	return wrapped
}

func (RCC) ResultCode(exitCode int) ResultCode {
	switch exitCode {
	case 0:
		return AllTestsPassed
	case rccRobotFailureExitCode:
		return RobotCommandFailed
	default:
		return EnvironmentFailed
	}
}

// BuildCommand resolves the holotree variables, which builds the space if it
// does not exist yet.
func (r RCC) BuildCommand() *command.Spec {
	build := command.New(r.BinaryPath)
	build.AddArguments("holotree", "variables", "--json")
	r.applyCommonArguments(&build)
	return &build
}

func (r RCC) BuildTimeout() time.Duration { return r.Timeout }

func (r RCC) applyCommonArguments(spec *command.Spec) {
	spec.AddArguments("--robot", r.RobotYAMLPath, "--controller", rccControllerName, "--space", r.SpaceName)
	if r.EnvJSONPath != "" {
		spec.AddArguments("--environment", r.EnvJSONPath)
	}
}
