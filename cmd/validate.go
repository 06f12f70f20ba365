package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"robotmk/internal/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate CONFIG",
		Short: "Check a configuration file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(args[0])
			if err != nil {
				printConfigError(cmd, err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d plans in %d groups\n", args[0], len(cfg.Plans()), len(cfg.PlanGroups))
			return nil
		},
	}
}
