package cli

import (
	"fmt"

	"github.com/roundcube/skin-installer/skin/values"
	"github.com/spf13/cobra"
)

func newUninstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <vendor/name>",
		Short: "Remove an installed skin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := values.NewPackageName(args[0])
			if err != nil {
				return err
			}
			pkg, err := a.installed.Find(cmd.Context(), name)
			if err != nil {
				return err
			}
			if err := a.installer.Uninstall(cmd.Context(), pkg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", pkg.Name())
			return nil
		},
	}
}
