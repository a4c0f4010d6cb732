package parser

import "github.com/roundcube/skin-installer/skin/entities"

// ManifestFile is the manifest file name inside a package directory.
const ManifestFile = "composer.json"

// ManifestParser parses raw manifest bytes into a Package.
type ManifestParser interface {
	// Parse unmarshals manifest bytes into a Package.
	Parse(data []byte) (*entities.Package, error)
}
