// Package skin installs Roundcube skin packages into the host's skins
// directory and runs the host side of each lifecycle operation.
package skin

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/roundcube/skin-installer/hooks"
	"github.com/roundcube/skin-installer/hostconfig"
	"github.com/roundcube/skin-installer/skin/entities"
	"github.com/roundcube/skin-installer/skin/ports"
	"github.com/roundcube/skin-installer/skin/values"
	"github.com/roundcube/skin-installer/skin/versiongate"
)

// Installer orchestrates the skin lifecycle use cases.
// File placement is delegated to the base installer.
type Installer struct {
	layout   values.HostLayout
	base     ports.BaseInstaller
	gate     ports.VersionGate
	config   ports.ConfigActivator
	hooks    ports.HookRunner
	prompter ports.Prompter
	logger   *slog.Logger

	vendorOnce sync.Once
	vendorDir  string
}

// InstallerOption configures an Installer.
type InstallerOption func(*Installer)

// NewInstaller creates an installer for the host at layout. The base
// installer is required. Without a prompter the skin is never activated.
func NewInstaller(layout values.HostLayout, base ports.BaseInstaller, opts ...InstallerOption) *Installer {
	s := &Installer{
		layout: layout,
		base:   base,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.gate == nil {
		s.gate = versiongate.NewGate(layout, versiongate.WithLogger(s.logger))
	}
	if s.config == nil {
		s.config = hostconfig.NewPatcher(layout, hostconfig.WithLogger(s.logger))
	}
	if s.hooks == nil {
		s.hooks = hooks.NewRunner(layout, hooks.WithLogger(s.logger))
	}
	return s
}

// WithVersionGate sets the version gate.
func WithVersionGate(g ports.VersionGate) InstallerOption {
	return func(s *Installer) { s.gate = g }
}

// WithConfigActivator sets the config activator.
func WithConfigActivator(c ports.ConfigActivator) InstallerOption {
	return func(s *Installer) { s.config = c }
}

// WithHookRunner sets the lifecycle script runner.
func WithHookRunner(h ports.HookRunner) InstallerOption {
	return func(s *Installer) { s.hooks = h }
}

// WithPrompter sets the prompter used to confirm activation.
func WithPrompter(p ports.Prompter) InstallerOption {
	return func(s *Installer) { s.prompter = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) InstallerOption {
	return func(s *Installer) { s.logger = l }
}

// Supports reports whether packages of pkgType are handled here.
func (s *Installer) Supports(pkgType string) bool {
	return pkgType == values.PackageType
}

// InstallPath returns where pkg is installed.
func (s *Installer) InstallPath(pkg *entities.Package) string {
	s.vendorOnce.Do(func() {
		s.vendorDir = s.layout.VendorDir()
	})
	return filepath.Join(s.vendorDir, pkg.Name().SkinName())
}

// Install checks the host version, places the files, optionally activates
// the skin and runs the post-install script.
func (s *Installer) Install(ctx context.Context, pkg *entities.Package) error {
	if err := s.gate.Check(pkg); err != nil {
		return err
	}

	path := s.InstallPath(pkg)
	if err := s.base.Install(ctx, pkg, path); err != nil {
		return fmt.Errorf("install %s: %w", pkg.Name(), err)
	}

	s.maybeActivate(pkg)

	return s.runScript(ctx, pkg, entities.PostInstall)
}

// Update checks the host version against target, replaces the files and
// runs the post-update script declared by target.
func (s *Installer) Update(ctx context.Context, initial, target *entities.Package) error {
	if err := s.gate.Check(target); err != nil {
		return err
	}

	if err := s.base.Update(ctx, initial, target, s.InstallPath(initial), s.InstallPath(target)); err != nil {
		return fmt.Errorf("update %s: %w", target.Name(), err)
	}

	return s.runScript(ctx, target, entities.PostUpdate)
}

// Uninstall removes the files and runs the post-uninstall script.
func (s *Installer) Uninstall(ctx context.Context, pkg *entities.Package) error {
	if err := s.base.Uninstall(ctx, pkg, s.InstallPath(pkg)); err != nil {
		return fmt.Errorf("uninstall %s: %w", pkg.Name(), err)
	}

	return s.runScript(ctx, pkg, entities.PostUninstall)
}

// maybeActivate offers to switch the host to the installed skin. Failures
// are reported and never undo the install.
func (s *Installer) maybeActivate(pkg *entities.Package) {
	if s.prompter == nil || !s.prompter.IsInteractive() || !s.config.Writable() {
		return
	}

	name := pkg.Name().SkinName()
	question := fmt.Sprintf("Do you want to activate the skin %s?", name)

	ok, err := s.prompter.Confirm(question, false)
	if err != nil {
		s.logger.Warn("activation prompt failed", "skin", name, "error", err)
		return
	}
	if !ok {
		return
	}

	changed, err := s.config.Activate(name)
	if err != nil {
		s.logger.Error("failed to activate skin", "skin", name, "error", err)
		return
	}
	if !changed {
		s.logger.Info("skin already active", "skin", name)
	}
}

func (s *Installer) runScript(ctx context.Context, pkg *entities.Package, l entities.Lifecycle) error {
	script := pkg.Roundcube().Script(l)
	if script == "" {
		return nil
	}
	if err := s.hooks.Run(ctx, script, pkg); err != nil {
		return fmt.Errorf("%s of %s: %w", l, pkg.Name(), err)
	}
	return nil
}
