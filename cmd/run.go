package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"robotmk/internal/app"
)

var (
	runGracePeriod    uint64
	runRunFlag        string
	runMetricsAddress string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run CONFIG",
		Short: "Set up all plans and schedule them until terminated",
		Long: `Loads the configuration file, prepares the runtime directory, unpacks
managed robots, sets up RCC, builds the environments of all plans and then
runs every plan at its execution interval.

The scheduler stops on SIGINT or SIGTERM and, if --run-flag is given, as soon
as the run-flag file is removed.`,
		Args: cobra.ExactArgs(1),
		RunE: runRun,
	}
	cmd.Flags().Uint64Var(&runGracePeriod, "grace-period", 0, "Seconds to wait before setting up RCC")
	cmd.Flags().StringVar(&runRunFlag, "run-flag", "", "Terminate once this file is removed")
	cmd.Flags().StringVar(&runMetricsAddress, "metrics-address", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(args[0])
	cfg.GracePeriod = time.Duration(runGracePeriod) * time.Second
	cfg.RunFlagPath = runRunFlag
	cfg.MetricsAddress = runMetricsAddress

	application, err := app.NewApplication(cfg)
	if err != nil {
		printConfigError(cmd, err)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}
