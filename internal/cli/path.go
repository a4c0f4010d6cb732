package cli

import (
	"fmt"

	"github.com/roundcube/skin-installer/skin/entities"
	"github.com/roundcube/skin-installer/skin/values"
	"github.com/spf13/cobra"
)

func newPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path <vendor/name>",
		Short: "Print where a skin package is installed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := values.NewPackageName(args[0])
			if err != nil {
				return err
			}
			pkg := entities.NewPackage(name, "", values.PackageType, nil)
			fmt.Fprintln(cmd.OutOrStdout(), a.installer.InstallPath(pkg))
			return nil
		},
	}
}
