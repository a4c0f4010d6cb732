package validation

import "github.com/roundcube/skin-installer/skin/entities"

// PackageValidator validates package metadata against a schema.
type PackageValidator interface {
	// Validate checks the package's extra.roundcube block.
	Validate(pkg *entities.Package) (*ValidationResult, error)
}

// ValidationResult lists the schema violations found. Valid is true when
// Errors is empty.
type ValidationResult struct {
	Valid  bool
	Errors []string
}
