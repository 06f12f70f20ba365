package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotmk/internal/config"
)

const minimalConfig = `
runtime_directory: %s
plan_groups:
  - execution_interval: 60
    plans:
      - id: smoke
        source:
          manual:
            base_dir: /robots/smoke
        robot_config:
          robot_target: smoke.robot
        execution_config:
          n_attempts_max: 2
          timeout: 30
        environment_config:
          system: {}
        session_config:
          current: {}
        working_directory_cleanup_config:
          max_executions: 5
`

func writeConfig(t *testing.T, runtime string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "robotmk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(minimalConfig, runtime)), 0o644))
	return path
}

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		// Flag values live in package variables and survive between runs.
		logLevel, logPath = "info", ""
		statusOutput, statusNoColor = "table", false
	}()
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSetVersion(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "robotmk", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{Use: "test", Version: "1.0.0"}
	testCmd.SetVersionTemplate(`{{printf "robotmk version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	require.NoError(t, testCmd.Execute())

	assert.Equal(t, "robotmk version 1.0.0\n", buf.String())
}

func TestSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, expected := range []string{"version", "run", "validate", "status"} {
		assert.True(t, found[expected], "expected subcommand %s to be registered", expected)
	}
}

func TestGetExitCode(t *testing.T) {
	configErr := config.ConfigurationError{FilePath: "robotmk.yaml", ErrorType: config.ErrorTypeSchema}

	assert.Equal(t, ExitCodeInvalidConfig, getExitCode(fmt.Errorf("wrapped: %w", configErr)))
	assert.Equal(t, ExitCodeError, getExitCode(errors.New("boom")))
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "version")
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	path := writeConfig(t, t.TempDir())

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid: 1 plans in 1 groups")

	_, err = execute(t, "validate", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestStatusCommandBeforeFirstRun(t *testing.T) {
	runtime := t.TempDir()
	path := writeConfig(t, runtime)

	out, err := execute(t, "status", path, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Phase: not started")

	_, err = execute(t, "status", path, "-o", "xml")
	assert.Error(t, err)
}
