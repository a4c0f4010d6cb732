// Package ports declares the collaborators the skin installer depends on.
package ports

import (
	"context"

	"github.com/roundcube/skin-installer/skin/entities"
)

// BaseInstaller places, replaces and removes package files.
// Implemented by the host package manager.
type BaseInstaller interface {
	// Install places the package files at installPath.
	Install(ctx context.Context, pkg *entities.Package, installPath string) error

	// Update replaces the files of initial with those of target.
	Update(ctx context.Context, initial, target *entities.Package, initialPath, targetPath string) error

	// Uninstall removes the package files from installPath.
	Uninstall(ctx context.Context, pkg *entities.Package, installPath string) error
}

// VersionGate validates a package against the installed host version.
type VersionGate interface {
	Check(pkg *entities.Package) error
}

// ConfigActivator switches the host's active skin.
type ConfigActivator interface {
	// Writable reports whether the config file exists and can be written.
	Writable() bool

	// Activate binds the skin setting to name. Returns false if it already was.
	Activate(name string) (bool, error)
}

// HookRunner executes a lifecycle script declared by a package.
type HookRunner interface {
	Run(ctx context.Context, script string, pkg *entities.Package) error
}

// Prompter asks the user yes/no questions.
type Prompter interface {
	// IsInteractive reports whether a user can answer prompts.
	IsInteractive() bool

	// Confirm blocks until the user answers. def is the preselected answer.
	Confirm(question string, def bool) (bool, error)
}
