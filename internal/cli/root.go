// Package cli implements the skin-installer command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roundcube/skin-installer/hooks"
	"github.com/roundcube/skin-installer/hostconfig"
	"github.com/roundcube/skin-installer/parser"
	"github.com/roundcube/skin-installer/prompt"
	"github.com/roundcube/skin-installer/registry"
	"github.com/roundcube/skin-installer/settings"
	"github.com/roundcube/skin-installer/skin"
	"github.com/roundcube/skin-installer/skin/entities"
	"github.com/roundcube/skin-installer/skin/filesystem"
	"github.com/roundcube/skin-installer/skin/repository"
	"github.com/roundcube/skin-installer/skin/values"
	"github.com/roundcube/skin-installer/skin/versiongate"
	"github.com/roundcube/skin-installer/validation"
	"github.com/spf13/cobra"
)

// Version is the tool version reported by --version.
var Version = "0.1.0"

type globalOptions struct {
	root          string
	configFile    string
	noInteraction bool
	debug         bool
}

// app holds the components shared by all commands. It is built once per
// invocation, after flags are parsed.
type app struct {
	opts     globalOptions
	stdin    *os.File
	layout   values.HostLayout
	settings settings.Settings
	logger   *slog.Logger

	parser    parser.ManifestParser
	validator validation.PackageValidator
	installed *filesystem.InstalledRepository
	gate      *versiongate.Gate
	patcher   *hostconfig.Patcher
	installer *skin.Installer
}

// NewRootCmd builds the command tree. stdin is checked for a terminal
// before prompting; nil disables prompts.
func NewRootCmd(stdin *os.File) *cobra.Command {
	a := &app{stdin: stdin}

	rootCmd := &cobra.Command{
		Use:   "skin-installer",
		Short: "Install Roundcube skins",
		Long: `skin-installer - Roundcube skin installer

Places skin packages into <root>/skins, checks them against the
installed Roundcube version, optionally activates them in
config/config.inc.php and runs their lifecycle scripts.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr(), cmd.OutOrStdout())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.opts.root, "root", "", "Roundcube installation directory (default is the current directory)")
	rootCmd.PersistentFlags().StringVar(&a.opts.configFile, "config", "", "settings file (default is <root>/"+settings.FileName+")")
	rootCmd.PersistentFlags().BoolVar(&a.opts.noInteraction, "no-interaction", false, "never ask questions")
	rootCmd.PersistentFlags().BoolVar(&a.opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newInstallCmd(a),
		newUpdateCmd(a),
		newUninstallCmd(a),
		newCheckCmd(a),
		newPathCmd(a),
		newActivateCmd(a),
		newListCmd(a),
	)
	return rootCmd
}

// Execute runs the command line with the process arguments.
func Execute() error {
	return NewRootCmd(os.Stdin).Execute()
}

// ExitCode maps an error returned by Execute to a process exit status.
// A failed embedded script exits with the script's own status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var eerr *entities.EmbeddedScriptError
	if errors.As(err, &eerr) && eerr.ExitCode > 0 {
		return eerr.ExitCode
	}
	return 1
}

func (a *app) init(stderr, stdout io.Writer) error {
	root := a.opts.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		root = wd
	}

	layout, err := values.NewHostLayout(root)
	if err != nil {
		return err
	}
	a.layout = layout

	a.settings, err = settings.NewFileStore(layout, settings.WithPath(a.opts.configFile)).Load()
	if err != nil {
		return err
	}

	level, err := a.settings.Level()
	if err != nil {
		return err
	}
	if a.opts.debug {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	reg, err := registry.NewDefaultRegistry()
	if err != nil {
		return err
	}

	a.parser = parser.NewJSONManifestParser()
	a.validator = validation.NewExtraValidator(reg)
	a.installed = filesystem.NewInstalledRepository(layout)
	a.gate = versiongate.NewGate(layout, versiongate.WithLogger(a.logger))
	a.patcher = hostconfig.NewPatcher(layout, hostconfig.WithLogger(a.logger))

	fsOpts := []repository.Option{repository.WithLogger(a.logger)}
	if len(a.settings.Exclude) > 0 {
		fsOpts = append(fsOpts, repository.WithExcludes(a.settings.Exclude))
	}
	base, err := repository.NewFSInstaller(layout, a.installed, fsOpts...)
	if err != nil {
		return err
	}

	runner := hooks.NewRunner(layout,
		hooks.WithPHPBinary(a.settings.PHPBinary),
		hooks.WithShell(a.settings.Shell),
		hooks.WithOutput(stdout, stderr),
		hooks.WithLogger(a.logger),
	)

	prompter := prompt.NewTerminalPrompter(
		prompt.WithInput(a.stdin),
		prompt.WithNonInteractive(a.opts.noInteraction || a.settings.NoInteraction),
	)

	a.installer = skin.NewInstaller(layout, base,
		skin.WithVersionGate(a.gate),
		skin.WithConfigActivator(a.patcher),
		skin.WithHookRunner(runner),
		skin.WithPrompter(prompter),
		skin.WithLogger(a.logger),
	)
	return nil
}

// loadPackage reads and checks the package in dir.
func (a *app) loadPackage(dir string) (*entities.Package, error) {
	pkg, err := parser.LoadDir(a.parser, dir)
	if err != nil {
		return nil, err
	}
	if !a.installer.Supports(pkg.Type()) {
		return nil, fmt.Errorf("%s has type %q, expected %q", pkg.Name(), pkg.Type(), values.PackageType)
	}

	res, err := a.validator.Validate(pkg)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		for _, msg := range res.Errors {
			a.logger.Error("invalid package metadata", "package", pkg.Name().String(), "problem", msg)
		}
		return nil, fmt.Errorf("%s: invalid extra.%s block", pkg.Name(), entities.ExtraKey)
	}
	return pkg, nil
}
