package session

import (
	"context"
	"fmt"
	"time"

	"robotmk/internal/command"
)

// Session runs commands as one OS identity.
type Session interface {
	// ID is a stable, filesystem-safe identifier, used to name per-session
	// directories.
	ID() string
	String() string
	Run(ctx context.Context, spec RunSpec) (RunOutcome, error)
}

// RunSpec describes one launch.
type RunSpec struct {
	// ID names the run, e.g. in scheduled task names and log lines.
	ID string
	// Command is the fully environment-wrapped command.
	Command command.Spec
	// BasePath is the path prefix for output artifacts of the run.
	BasePath string
	// Timeout bounds the run. Zero means no timeout.
	Timeout time.Duration
}

// OutcomeKind enumerates how a run ended.
type OutcomeKind int

const (
	Exited OutcomeKind = iota
	TimedOut
	Terminated
)

func (k OutcomeKind) String() string {
	switch k {
	case Exited:
		return "Exited"
	case TimedOut:
		return "TimedOut"
	case Terminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// RunOutcome is the result of a run. ExitCode is only set for Exited, and
// only when the code could be determined.
type RunOutcome struct {
	Kind     OutcomeKind
	ExitCode *int
}

// ExitedWith returns an Exited outcome with the given code.
func ExitedWith(code int) RunOutcome {
	return RunOutcome{Kind: Exited, ExitCode: &code}
}

func (o RunOutcome) String() string {
	if o.Kind == Exited && o.ExitCode != nil {
		return fmt.Sprintf("Exited(%d)", *o.ExitCode)
	}
	return o.Kind.String()
}

// CurrentSession runs commands as the scheduler's own user.
type CurrentSession struct{}

func (CurrentSession) ID() string { return "current_user" }

func (CurrentSession) String() string { return "Current user" }

// Run launches spec.Command directly.
func (CurrentSession) Run(ctx context.Context, spec RunSpec) (RunOutcome, error) {
	return runProcess(ctx, spec.Command.Cmd(), spec)
}

// UserSession runs commands as the named user.
type UserSession struct {
	UserName string
}

func (s UserSession) ID() string { return "user_" + s.UserName }

func (s UserSession) String() string { return "User " + s.UserName }

// Run launches spec.Command as s.UserName.
func (s UserSession) Run(ctx context.Context, spec RunSpec) (RunOutcome, error) {
	return runAsUser(ctx, s.UserName, spec)
}
