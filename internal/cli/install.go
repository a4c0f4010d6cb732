package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "install <source-dir>",
		Short: "Install a skin from an extracted package directory",
		Long: `Install the skin whose composer.json is in <source-dir>.

The installed Roundcube version is checked against the package's
min-version and max-version first. When running in a terminal and the
config file is writable, you are asked whether to activate the skin.

Examples:
  skin-installer install ./vendor/acme/my-theme
  skin-installer --root /var/www/roundcube install /tmp/elastic-blue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := a.loadPackage(args[0])
			if err != nil {
				return err
			}
			if err := a.installer.Install(cmd.Context(), pkg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed %s %s to %s\n", pkg.Name(), pkg.Version(), a.installer.InstallPath(pkg))
			return nil
		},
	}
}
