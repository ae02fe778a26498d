package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newLayoutsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "Inspect or reset saved canvas layouts",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved frame layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, mgr, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			layouts := mgr.LoadLayouts(cmd.Context()).Layouts
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(layouts)
			}
			fmt.Fprintf(out, "store: %s\n", mgr.Database().Path())
			if len(layouts) == 0 {
				fmt.Fprintln(out, "no saved layouts")
				return nil
			}
			fmt.Fprintf(out, "%-10s %6s %6s %6s %6s\n", "ID", "X", "Y", "WIDTH", "HEIGHT")
			for _, l := range layouts {
				fmt.Fprintf(out, "%-10s %6d %6d %6d %6d\n", l.ID, l.X, l.Y, l.Width, l.Height)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "Print the stored JSON")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Forget every saved frame layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, mgr, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := mgr.ResetLayouts(cmd.Context()); err != nil {
				return fmt.Errorf("reset layouts: %w", err)
			}
			if err := mgr.Database().Vacuum(); err != nil {
				return fmt.Errorf("compact store: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "layouts reset")
			return nil
		},
	}

	cmd.AddCommand(list, reset)
	return cmd
}
