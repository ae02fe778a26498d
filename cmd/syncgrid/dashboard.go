package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/j-veylop/syncgrid-tui/internal/config"
)

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard definition as YAML",
		Long: `Print the chart definitions in use: the file named by
SYNCGRID_DASHBOARD_PATH, or the built-in nine charts. The output is a
valid dashboard file to start editing from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			out, err := config.MarshalDashboard(cfg.Dashboard)
			if err != nil {
				return fmt.Errorf("render dashboard: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
