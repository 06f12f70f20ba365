// Package environment describes the Python environments that robots run in
// and how their exit codes are interpreted.
package environment

import (
	"time"

	"robotmk/internal/command"
)

// ResultCode is the environment-level interpretation of an exit code.
type ResultCode int

const (
	AllTestsPassed ResultCode = iota
	RobotCommandFailed
	EnvironmentFailed
)

func (c ResultCode) String() string {
	switch c {
	case AllTestsPassed:
		return "AllTestsPassed"
	case RobotCommandFailed:
		return "RobotCommandFailed"
	case EnvironmentFailed:
		return "EnvironmentFailed"
	default:
		return "Unknown"
	}
}

// Kind names an environment backend.
type Kind string

const (
	KindSystem Kind = "system"
	KindRCC    Kind = "rcc"
)

// Environment wraps robot commands so that they run inside the environment
// and classifies their exit codes.
type Environment interface {
	Kind() Kind
	// Wrap returns the command that runs spec inside the environment.
	Wrap(spec command.Spec) command.Spec
	// ResultCode maps the exit code of a wrapped command.
	ResultCode(exitCode int) ResultCode
	// BuildCommand returns the command that prepares the environment, or nil
	// if nothing needs to be built.
	BuildCommand() *command.Spec
	// BuildTimeout bounds BuildCommand.
	BuildTimeout() time.Duration
}

// System runs commands with the Python interpreter found on the host.
type System struct{}

func (System) Kind() Kind { return KindSystem }

func (System) Wrap(spec command.Spec) command.Spec { return spec }

func (System) ResultCode(exitCode int) ResultCode {
	if exitCode == 0 {
		return AllTestsPassed
	}
	return RobotCommandFailed
}

func (System) BuildCommand() *command.Spec { return nil }

func (System) BuildTimeout() time.Duration { return 0 }
