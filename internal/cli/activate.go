package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newActivateCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "activate <skin>",
		Short: "Set the active skin in config/config.inc.php",
		Long: `Rewrite the skin setting of the local Roundcube config.

<skin> is a directory name under skins/, as printed by "path".
Only the value of the skin key is changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !force {
				info, err := os.Stat(filepath.Join(a.layout.VendorDir(), name))
				if err != nil || !info.IsDir() {
					return fmt.Errorf("skin %q is not installed in %s (use --force to activate anyway)", name, a.layout.VendorDir())
				}
			}

			changed, err := a.patcher.Activate(name)
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Activated skin %s\n", name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Skin %s is already active\n", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "activate even if the skin directory does not exist")
	return cmd
}
