package scheduling

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"robotmk/internal/environment"
	"robotmk/internal/metrics"
	"robotmk/internal/permissions"
	"robotmk/internal/plan"
	"robotmk/internal/results"
	"robotmk/internal/robot"
	"robotmk/internal/session"
	"robotmk/internal/termination"
	"robotmk/pkg/logging"
)

// runDirectoryFormat names the output directory of a suite run.
const runDirectoryFormat = "2006-01-02T15.04.05.000000000-0700"

// SuiteRunner executes one run of a suite.
type SuiteRunner func(ctx context.Context, suite plan.Suite) error

// RunSuite runs the attempts of suite, merges their outputs and writes the
// report to the suite's results file. Run directories of user sessions are
// handed over with permissions.Default.
func RunSuite(ctx context.Context, suite plan.Suite) error {
	return runSuite(ctx, suite, permissions.Default())
}

// NewSuiteRunner returns a SuiteRunner that grants session users full access
// to their run directory through granter.
func NewSuiteRunner(granter permissions.Granter) SuiteRunner {
	return func(ctx context.Context, suite plan.Suite) error {
		return runSuite(ctx, suite, granter)
	}
}

func runSuite(ctx context.Context, suite plan.Suite, granter permissions.Granter) error {
	logging.Debug("Suite", "Running suite %s", suite.ID)
	start := time.Now()

	report, err := produceSuiteResults(ctx, suite, granter)
	if err != nil {
		return err
	}
	if err := results.WriteJSON(ctx, suite.ResultsFile, report, suite.Locker); err != nil {
		if termination.IsCancelled(err) {
			return termination.ErrCancelled
		}
		return fmt.Errorf("reporting suite results failed: %w", err)
	}

	metrics.RecordSuiteRun(suite.ID, time.Since(start))
	logging.Debug("Suite", "Suite %s finished", suite.ID)
	return nil
}

func produceSuiteResults(ctx context.Context, suite plan.Suite, granter permissions.Granter) (results.SuiteExecutionReport, error) {
	outputDirectory := filepath.Join(suite.WorkingDirectory, time.Now().UTC().Format(runDirectoryFormat))
	if err := os.MkdirAll(outputDirectory, 0o755); err != nil {
		return results.SuiteExecutionReport{}, fmt.Errorf("failed to create directory for suite run: %s: %w", outputDirectory, err)
	}

	report := results.SuiteExecutionReport{
		SuiteID:     suite.ID,
		ExecutionID: uuid.NewString(),
		Config:      suite.AttemptsConfig(),
	}

	// The robot writes its outputs into the run directory under the session identity.
	if user, ok := suite.Session.(session.UserSession); ok {
		if err := granter.GrantFullAccess(user.UserName, outputDirectory); err != nil {
			logging.Error("Suite", err, "Suite %s: failed to hand run directory over to %s", suite.ID, user.UserName)
			report.Attempts = []results.AttemptOutcome{
				results.OtherErrorOutcome(fmt.Sprintf("Failed to adjust permissions of run directory: %v", err)),
			}
			return report, nil
		}
	}

	outcomes, outputPaths, err := runAttemptsUntilSuccessful(ctx, suite, outputDirectory)
	if err != nil {
		return results.SuiteExecutionReport{}, err
	}
	report.Attempts = outcomes

	if len(outputPaths) > 0 {
		rebot := robot.Rebot{
			Environment:      suite.Environment,
			PythonExecutable: suite.Robot.PythonExecutable,
			InputPaths:       outputPaths,
			XMLPath:          filepath.Join(outputDirectory, "rebot.xml"),
			HTMLPath:         filepath.Join(outputDirectory, "rebot.html"),
		}
		outcome := rebot.Run(ctx, "robotmk_rebot_"+suite.ID)
		report.Rebot = &outcome
	}
	return report, nil
}

// runAttemptsUntilSuccessful returns the outcome of every attempt and the
// output files of those attempts that produced one, oldest first.
func runAttemptsUntilSuccessful(ctx context.Context, suite plan.Suite, outputDirectory string) ([]results.AttemptOutcome, []string, error) {
	var (
		outcomes    []results.AttemptOutcome
		outputPaths []string
	)
	for index := 1; index <= suite.Robot.NAttemptsMax; index++ {
		previous := ""
		if len(outputPaths) > 0 {
			previous = outputPaths[len(outputPaths)-1]
		}
		attempt := suite.Robot.Attempt(outputDirectory, index, previous)

		outcome, outputPath, err := runAttempt(ctx, suite, attempt, outputDirectory)
		if err != nil {
			return nil, nil, err
		}
		metrics.RecordAttempt(suite.ID, string(outcome.Kind))
		outcomes = append(outcomes, outcome)
		if outputPath != "" {
			outputPaths = append(outputPaths, outputPath)
		}
		if outcome.Kind == results.AllTestsPassed {
			break
		}
	}
	return outcomes, outputPaths, nil
}

func runAttempt(ctx context.Context, suite plan.Suite, attempt robot.Attempt, outputDirectory string) (results.AttemptOutcome, string, error) {
	logPrefix := fmt.Sprintf("Suite %s, attempt %d", suite.ID, attempt.Index)

	runOutcome, err := suite.Session.Run(ctx, session.RunSpec{
		ID:       fmt.Sprintf("robotmk_suite_%s_attempt_%d", suite.ID, attempt.Index),
		Command:  suite.Environment.Wrap(attempt.Command),
		BasePath: filepath.Join(outputDirectory, strconv.Itoa(attempt.Index)),
		Timeout:  suite.Timeout,
	})
	if err != nil {
		logging.Error("Suite", err, "%s: failed to run", logPrefix)
		return results.OtherErrorOutcome(err.Error()), "", nil
	}

	switch runOutcome.Kind {
	case session.TimedOut:
		logging.Warn("Suite", "%s: timed out", logPrefix)
		return results.Outcome(results.TimedOut), "", nil
	case session.Terminated:
		return results.AttemptOutcome{}, "", termination.ErrCancelled
	}
	if runOutcome.ExitCode == nil {
		logging.Warn("Suite", "%s: failed to query exit code", logPrefix)
		return results.OtherErrorOutcome("Failed to query exit code of Robot Framework call"), "", nil
	}

	switch suite.Environment.ResultCode(*runOutcome.ExitCode) {
	case environment.AllTestsPassed:
		logging.Debug("Suite", "%s: all tests passed", logPrefix)
		return results.Outcome(results.AllTestsPassed), attempt.OutputXMLFile, nil
	case environment.EnvironmentFailed:
		logging.Warn("Suite", "%s: environment failure", logPrefix)
		return results.Outcome(results.EnvironmentFailure), "", nil
	default:
		if _, err := os.Stat(attempt.OutputXMLFile); err == nil {
			logging.Debug("Suite", "%s: some tests failed", logPrefix)
			return results.Outcome(results.TestFailures), attempt.OutputXMLFile, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			logging.Warn("Suite", "%s: cannot access %s: %v", logPrefix, attempt.OutputXMLFile, err)
		}
		logging.Warn("Suite", "%s: Robot Framework failure (no output)", logPrefix)
		return results.Outcome(results.RobotFrameworkFailure), "", nil
	}
}
