package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/roundcube/skin-installer/hostconfig"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed skins",
		Long:  `List the skins installed by this tool. The active skin is marked with *.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pkgs, err := a.installed.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(pkgs) == 0 {
				fmt.Fprintln(out, "No skins installed")
				return nil
			}

			active := map[string]bool{}
			if doc, err := a.patcher.Load(); err == nil {
				if skins, ok := hostconfig.ActiveSkins(doc); ok {
					for _, s := range skins {
						active[s] = true
					}
				}
			} else {
				a.logger.Debug("config not readable", "error", err)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, pkg := range pkgs {
				marker := " "
				if active[pkg.Name().SkinName()] {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s %s\t%s\t%s\n", marker, pkg.Name(), pkg.Version(), pkg.Name().SkinName())
			}
			return tw.Flush()
		},
	}
}
