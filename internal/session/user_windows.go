//go:build windows

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"robotmk/pkg/logging"
)

const taskPollInterval = 250 * time.Millisecond

// runAsUser launches the command in the interactive session of userName via
// the Task Scheduler. The task runs a batch script that redirects output and
// records the exit code in a file, which is polled for completion.
func runAsUser(ctx context.Context, userName string, spec RunSpec) (RunOutcome, error) {
	if err := os.MkdirAll(filepath.Dir(spec.BasePath), 0o755); err != nil {
		return RunOutcome{}, fmt.Errorf("failed to create directory for %s: %w", spec.BasePath, err)
	}
	scriptPath := spec.BasePath + ".bat"
	exitCodePath := spec.BasePath + ".exit_code"
	os.Remove(exitCodePath)

	if err := os.WriteFile(scriptPath, []byte(batchScript(spec, exitCodePath)), 0o644); err != nil {
		return RunOutcome{}, fmt.Errorf("failed to write task script: %w", err)
	}

	taskName := spec.ID
	if err := schtasks("/create", "/tn", taskName, "/tr", scriptPath, "/sc", "ONCE", "/st", "00:00",
		"/f", "/ru", userName, "/it", "/rl", "LIMITED"); err != nil {
		return RunOutcome{}, fmt.Errorf("failed to create task %s: %w", taskName, err)
	}
	defer func() {
		if err := schtasks("/delete", "/tn", taskName, "/f"); err != nil {
			logging.Warn("Session", "Failed to delete task %s: %v", taskName, err)
		}
	}()

	if err := schtasks("/run", "/tn", taskName); err != nil {
		return RunOutcome{}, fmt.Errorf("failed to run task %s: %w", taskName, err)
	}

	var deadline <-chan time.Time
	if spec.Timeout > 0 {
		timer := time.NewTimer(spec.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}
	ticker := time.NewTicker(taskPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			outcome, finished, err := readExitCode(exitCodePath)
			if err != nil {
				return RunOutcome{}, err
			}
			if finished {
				return outcome, nil
			}
		case <-deadline:
			endTask(taskName)
			return RunOutcome{Kind: TimedOut}, nil
		case <-ctx.Done():
			endTask(taskName)
			return RunOutcome{Kind: Terminated}, nil
		}
	}
}

func batchScript(spec RunSpec, exitCodePath string) string {
	var b strings.Builder
	b.WriteString("@echo off\r\n")
	for _, v := range spec.Command.Env {
		fmt.Fprintf(&b, "set \"%s=%s\"\r\n", v.Key, v.Value)
	}
	quoted := make([]string, 0, len(spec.Command.Arguments)+1)
	for _, a := range spec.Command.Argv() {
		quoted = append(quoted, syscall.EscapeArg(a))
	}
	fmt.Fprintf(&b, "%s > %s 2> %s\r\n", strings.Join(quoted, " "),
		syscall.EscapeArg(StdoutPath(spec.BasePath)), syscall.EscapeArg(StderrPath(spec.BasePath)))
	fmt.Fprintf(&b, "echo %%errorlevel%% > %s\r\n", syscall.EscapeArg(exitCodePath))
	return b.String()
}

func readExitCode(path string) (RunOutcome, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return RunOutcome{}, false, nil
	}
	if err != nil {
		return RunOutcome{}, false, fmt.Errorf("failed to read exit code file: %w", err)
	}
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		// Still being written.
		return RunOutcome{}, false, nil
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return RunOutcome{Kind: Exited}, true, nil
	}
	return ExitedWith(code), true, nil
}

func endTask(taskName string) {
	if err := schtasks("/end", "/tn", taskName); err != nil {
		logging.Warn("Session", "Failed to end task %s: %v", taskName, err)
	}
}

func schtasks(args ...string) error {
	cmd := exec.Command("schtasks.exe", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("schtasks.exe %s: %w\nOutput: %s", strings.Join(args, " "), err, out)
	}
	return nil
}
