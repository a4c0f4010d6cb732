package ports

import (
	"context"

	"github.com/roundcube/skin-installer/skin/entities"
	"github.com/roundcube/skin-installer/skin/values"
)

// InstalledRepository keeps track of installed skin packages.
type InstalledRepository interface {
	// Find returns the recorded package or a PackageNotFoundError.
	Find(ctx context.Context, name values.PackageName) (*entities.Package, error)

	// Add records (or replaces) a package.
	Add(ctx context.Context, pkg *entities.Package) error

	// Remove forgets a package. Removing an unknown package is not an error.
	Remove(ctx context.Context, name values.PackageName) error

	// List returns all recorded packages sorted by name.
	List(ctx context.Context) ([]*entities.Package, error)
}
