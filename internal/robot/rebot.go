package robot

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"robotmk/internal/command"
	"robotmk/internal/environment"
	"robotmk/internal/results"
	"robotmk/internal/session"
	"robotmk/pkg/logging"
)

// rebotMaxSuccessExitCode is the highest exit code with which rebot still
// produced its output. Codes up to 250 count failed tests.
const rebotMaxSuccessExitCode = 250

// Rebot merges attempt outputs into one report.
type Rebot struct {
	Environment      environment.Environment
	PythonExecutable string
	// InputPaths are merged in order, oldest attempt first.
	InputPaths []string
	XMLPath    string
	HTMLPath   string
}

// Command returns the unwrapped rebot command line.
func (r Rebot) Command() command.Spec {
	python := r.PythonExecutable
	if python == "" {
		python = DefaultPythonExecutable
	}
	cmd := command.New(python)
	cmd.AddArguments(
		"-m", "robot.rebot",
		"--output", r.XMLPath,
		"--log", r.HTMLPath,
		"--report", "NONE",
		"--merge",
	)
	cmd.AddArguments(r.InputPaths...)
	return cmd
}

// Run executes rebot as the current user. Failures are reported in the
// returned outcome rather than as an error since they are part of the
// results.
func (r Rebot) Run(ctx context.Context, id string) results.RebotOutcome {
	timestamp := time.Now().Unix()
	basePath := filepath.Join(filepath.Dir(r.XMLPath), "rebot")

	outcome, err := session.CurrentSession{}.Run(ctx, session.RunSpec{
		ID:       id,
		Command:  r.Environment.Wrap(r.Command()),
		BasePath: basePath,
	})
	if err != nil {
		logging.Error("Suite", err, "%s: rebot could not be run", id)
		return results.RebotOutcome{Error: fmt.Sprintf("Failed to run rebot: %v", err)}
	}

	switch outcome.Kind {
	case session.Terminated:
		return results.RebotOutcome{Error: "Rebot run was terminated"}
	case session.TimedOut:
		return results.RebotOutcome{Error: "Rebot run timed out"}
	}
	if outcome.ExitCode == nil {
		return results.RebotOutcome{Error: "Failed to query exit code of rebot call"}
	}
	if *outcome.ExitCode > rebotMaxSuccessExitCode {
		return results.RebotOutcome{Error: fmt.Sprintf(
			"Rebot exited with code %d\nStdout:\n%s\nStderr:\n%s",
			*outcome.ExitCode, readOrEmpty(session.StdoutPath(basePath)), readOrEmpty(session.StderrPath(basePath)),
		)}
	}
	return r.collect(timestamp)
}

func (r Rebot) collect(timestamp int64) results.RebotOutcome {
	xml, err := os.ReadFile(r.XMLPath)
	if err != nil {
		return results.RebotOutcome{Error: fmt.Sprintf("Failed to read merged XML %s: %v", r.XMLPath, err)}
	}
	html, err := os.ReadFile(r.HTMLPath)
	if err != nil {
		return results.RebotOutcome{Error: fmt.Sprintf("Failed to read merged HTML %s: %v", r.HTMLPath, err)}
	}
	return results.RebotOutcome{Ok: &results.RebotResult{
		XML:        string(xml),
		HTMLBase64: base64.StdEncoding.EncodeToString(html),
		Timestamp:  timestamp,
	}}
}

func readOrEmpty(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}
