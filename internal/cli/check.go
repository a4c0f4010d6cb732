package cli

import (
	"fmt"

	"github.com/roundcube/skin-installer/skin/versiongate"
	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <source-dir>",
		Short: "Check a package against the installed Roundcube version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := a.loadPackage(args[0])
			if err != nil {
				return err
			}
			if err := a.gate.Check(pkg); err != nil {
				return err
			}

			detected, err := a.gate.HostVersion()
			if err != nil {
				return err
			}
			constraints, err := versiongate.Constraints(pkg.Roundcube())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Roundcube %s detected\n", detected)
			for _, c := range constraints {
				fmt.Fprintf(out, "  %s: ok\n", c)
			}
			fmt.Fprintf(out, "%s is compatible\n", pkg.Name())
			return nil
		},
	}
}
