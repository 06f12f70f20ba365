package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"robotmk/pkg/logging"
)

// StdoutPath and StderrPath return where the output of a run is captured.
func StdoutPath(basePath string) string { return basePath + ".stdout" }
func StderrPath(basePath string) string { return basePath + ".stderr" }

// runProcess starts cmd and waits for it to exit, for the timeout to elapse
// or for ctx to be done, whichever comes first.
func runProcess(ctx context.Context, cmd *exec.Cmd, spec RunSpec) (RunOutcome, error) {
	if err := os.MkdirAll(filepath.Dir(spec.BasePath), 0o755); err != nil {
		return RunOutcome{}, fmt.Errorf("failed to create directory for %s: %w", spec.BasePath, err)
	}
	stdout, err := os.Create(StdoutPath(spec.BasePath))
	if err != nil {
		return RunOutcome{}, fmt.Errorf("failed to create stdout file: %w", err)
	}
	defer stdout.Close()
	stderr, err := os.Create(StderrPath(spec.BasePath))
	if err != nil {
		return RunOutcome{}, fmt.Errorf("failed to create stderr file: %w", err)
	}
	defer stderr.Close()

	cmd.Stdout = stdout
	cmd.Stderr = stderr
	configureProcAttr(cmd)

	logging.Debug("Session", "%s: starting %s", spec.ID, spec.Command)
	if err := cmd.Start(); err != nil {
		return RunOutcome{}, fmt.Errorf("failed to start %s: %w", spec.Command, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var timeout <-chan time.Time
	if spec.Timeout > 0 {
		timer := time.NewTimer(spec.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-done:
		return exitOutcome(cmd, err)
	case <-timeout:
		logging.Warn("Session", "%s: timed out after %s, killing process tree", spec.ID, spec.Timeout)
		kill(cmd)
		<-done
		return RunOutcome{Kind: TimedOut}, nil
	case <-ctx.Done():
		logging.Info("Session", "%s: cancelled, killing process tree", spec.ID)
		kill(cmd)
		<-done
		return RunOutcome{Kind: Terminated}, nil
	}
}

func exitOutcome(cmd *exec.Cmd, waitErr error) (RunOutcome, error) {
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return RunOutcome{}, fmt.Errorf("failed to wait for process: %w", waitErr)
	}
	code := cmd.ProcessState.ExitCode()
	if code < 0 {
		return RunOutcome{Kind: Exited}, nil
	}
	return ExitedWith(code), nil
}

func kill(cmd *exec.Cmd) {
	if err := killProcessTree(cmd); err != nil {
		logging.Warn("Session", "Failed to kill process tree of PID %d: %v", cmd.Process.Pid, err)
		_ = cmd.Process.Kill()
	}
}
