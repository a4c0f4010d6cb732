package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update <source-dir>",
		Short: "Replace an installed skin with a newer package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := a.loadPackage(args[0])
			if err != nil {
				return err
			}
			initial, err := a.installed.Find(cmd.Context(), target.Name())
			if err != nil {
				return fmt.Errorf("%w (use install for new skins)", err)
			}
			if err := a.installer.Update(cmd.Context(), initial, target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s from %s to %s\n", target.Name(), initial.Version(), target.Version())
			return nil
		},
	}
}
