package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"robotmk/internal/config"
	"robotmk/internal/formatting"
	"robotmk/internal/plan"
	"robotmk/internal/results"
)

var (
	statusOutput  string
	statusNoColor bool
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status CONFIG",
		Short: "Show the results written by a running scheduler",
		Long: `Reads the result files in the runtime directory of the given configuration
while holding the shared results lock, and prints the current phase, setup
failures, environment build states and the latest report of every plan.`,
		Args: cobra.ExactArgs(1),
		RunE: runStatus,
	}
	cmd.Flags().StringVarP(&statusOutput, "output", "o", string(formatting.FormatTable), "Output format: table, json or yaml")
	cmd.Flags().BoolVar(&statusNoColor, "no-color", false, "Disable colored table output")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, ok := formatting.ParseFormat(statusOutput)
	if !ok {
		return fmt.Errorf("unknown output format %q", statusOutput)
	}

	cfg, err := config.LoadConfig(args[0])
	if err != nil {
		printConfigError(cmd, err)
		return err
	}
	global := plan.NewGlobalConfig(cfg.RuntimeDirectory, "", 0)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	status, err := results.ReadStatus(ctx, global.ResultsDirectory(), global.ResultsLocker)
	if err != nil {
		return fmt.Errorf("failed to read results in %s: %w", filepath.Clean(global.ResultsDirectory()), err)
	}

	formatter := formatting.NewFormatter(formatting.Options{Format: format, Color: !statusNoColor})
	return formatter.FormatStatus(cmd.OutOrStdout(), status)
}
