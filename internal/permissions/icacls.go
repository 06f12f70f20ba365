package permissions

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// execCommand is a variable to allow mocking in tests
var execCommand = exec.Command

// ICACLS adjusts permissions with icacls.exe.
type ICACLS struct{}

func (ICACLS) GrantFullAccess(user, path string) error {
	return runICACLS(path, "/grant", user+":(OI)(CI)F", "/T")
}

func (ICACLS) ResetAccess(path string) error {
	return runICACLS(path, "/reset", "/T")
}

func (ICACLS) Grant(user, path, permissions string, extraArgs ...string) error {
	args := append([]string{path, "/grant", user + ":" + permissions}, extraArgs...)
	return runICACLS(args...)
}

func runICACLS(args ...string) error {
	cmd := execCommand("icacls.exe", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	commandLine := "icacls.exe " + strings.Join(args, " ")
	if err := cmd.Run(); err != nil {
		if _, exited := err.(*exec.ExitError); exited {
			return fmt.Errorf("icacls.exe exited non-successfully.\n\nCommand:\n%s\n\nStdout:\n%s\n\nStderr:\n%s",
				commandLine, stdout.String(), stderr.String())
		}
		return fmt.Errorf("calling icacls.exe failed. Command:\n%s: %w", commandLine, err)
	}
	return nil
}

// Noop accepts every request without doing anything.
type Noop struct{}

func (Noop) GrantFullAccess(string, string) error { return nil }

func (Noop) ResetAccess(string) error { return nil }

func (Noop) Grant(string, string, string, ...string) error { return nil }
