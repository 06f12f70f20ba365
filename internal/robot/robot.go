package robot

import (
	"fmt"
	"path/filepath"
	"strconv"

	"robotmk/internal/command"
)

// DefaultPythonExecutable is the interpreter used inside all environments.
const DefaultPythonExecutable = "python"

// RetryStrategy controls what later attempts re-run.
type RetryStrategy string

const (
	// RetryComplete re-runs the whole suite on every attempt.
	RetryComplete RetryStrategy = "complete"
	// RetryIncremental re-runs only the tests that failed in the previous
	// attempt.
	RetryIncremental RetryStrategy = "incremental"
)

// Variable is a Robot Framework variable set on the command line.
type Variable struct {
	Name  string
	Value string
}

// Arguments are the user-configurable parts of the command line.
type Arguments struct {
	Suites        []string
	Tests         []string
	Include       []string
	Exclude       []string
	Variables     []Variable
	VariableFiles []string
	ArgumentFiles []string
	ExitOnError   bool
}

// Robot describes the Robot Framework invocation of a plan.
type Robot struct {
	// Target is the robot file or directory to execute.
	Target           string
	Arguments        Arguments
	NAttemptsMax     int
	RetryStrategy    RetryStrategy
	PythonExecutable string
}

// Attempt is one execution of the robot.
type Attempt struct {
	Index         int
	OutputXMLFile string
	Command       command.Spec
}

// OutputXMLFile returns where attempt index writes its result.
func OutputXMLFile(outputDirectory string, index int) string {
	return filepath.Join(outputDirectory, strconv.Itoa(index)+".xml")
}

// Attempt returns attempt index (starting at 1). previousOutput is the output
// file of the preceding attempt, or empty if there is none; it is only used
// by the incremental strategy.
func (r Robot) Attempt(outputDirectory string, index int, previousOutput string) Attempt {
	output := OutputXMLFile(outputDirectory, index)

	python := r.PythonExecutable
	if python == "" {
		python = DefaultPythonExecutable
	}
	cmd := command.New(python)
	cmd.AddArguments("-m", "robot")
	r.Arguments.apply(&cmd)
	cmd.AddArguments(
		"--outputdir", outputDirectory,
		"--output", output,
		"--log", filepath.Join(outputDirectory, strconv.Itoa(index)+".html"),
		"--report", "NONE",
	)
	if r.RetryStrategy == RetryIncremental && index > 1 && previousOutput != "" {
		cmd.AddArguments("--rerunfailed", previousOutput)
	}
	cmd.AddArgument(r.Target)

	return Attempt{Index: index, OutputXMLFile: output, Command: cmd}
}

func (a Arguments) apply(cmd *command.Spec) {
	for _, s := range a.Suites {
		cmd.AddArguments("--suite", s)
	}
	for _, t := range a.Tests {
		cmd.AddArguments("--test", t)
	}
	for _, tag := range a.Include {
		cmd.AddArguments("--include", tag)
	}
	for _, tag := range a.Exclude {
		cmd.AddArguments("--exclude", tag)
	}
	for _, v := range a.Variables {
		cmd.AddArguments("--variable", fmt.Sprintf("%s:%s", v.Name, v.Value))
	}
	for _, f := range a.VariableFiles {
		cmd.AddArguments("--variablefile", f)
	}
	for _, f := range a.ArgumentFiles {
		cmd.AddArguments("--argumentfile", f)
	}
	if a.ExitOnError {
		cmd.AddArgument("--exitonerror")
	}
}
