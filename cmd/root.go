package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"robotmk/internal/config"
	"robotmk/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeInvalidConfig indicates the configuration could not be loaded.
	ExitCodeInvalidConfig = 2
)

var (
	logLevel string
	logPath  string
)

// rootCmd represents the base command for the robotmk application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "robotmk",
	Short: "Schedule Robot Framework test plans",
	Long: `robotmk periodically executes Robot Framework test plans, each as a
configurable user and inside an RCC or system Python environment, and writes
the results as JSON files for a monitoring agent to pick up.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage:      true,
	PersistentPreRunE: initLogging,
}

func initLogging(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	if logPath != "" {
		return logging.InitForFile(level, logPath)
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())
	return nil
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "robotmk version %s\n" .Version}}`)

	err := rootCmd.Execute()
	logging.Close()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var configErr config.ConfigurationError
	if errors.As(err, &configErr) {
		return ExitCodeInvalidConfig
	}
	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-path", "", "Append logs to this file instead of standard error")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newStatusCmd())
}

func printConfigError(cmd *cobra.Command, err error) {
	var configErr config.ConfigurationError
	if errors.As(err, &configErr) {
		fmt.Fprintln(cmd.ErrOrStderr(), configErr.DetailedError())
	}
}
