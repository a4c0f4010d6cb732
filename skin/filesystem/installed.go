package filesystem

import (
	"fmt"
	"time"

	"github.com/roundcube/skin-installer/skin/entities"
	"github.com/roundcube/skin-installer/skin/values"
)

// FormatVersion is the schema version written to new installed files.
const FormatVersion = 1

// InstalledFile represents the YAML structure of the installed packages file.
type InstalledFile struct {
	Updated  time.Time                   `yaml:"updated"`
	Packages map[string]InstalledPackage `yaml:"packages"`
	Version  int                         `yaml:"format_version"`
}

// InstalledPackage is one installed skin in YAML.
type InstalledPackage struct {
	Installed time.Time      `yaml:"installed,omitempty"`
	Version   string         `yaml:"version"`
	Type      string         `yaml:"type"`
	Source    string         `yaml:"source,omitempty"`
	Extra     map[string]any `yaml:"extra,omitempty"`
}

// ToEntity converts the record stored under name to a domain package.
func (p InstalledPackage) ToEntity(name string) (*entities.Package, error) {
	pkgName, err := values.NewPackageName(name)
	if err != nil {
		return nil, fmt.Errorf("invalid installed package %q: %w", name, err)
	}
	pkg := entities.NewPackage(pkgName, p.Version, p.Type, p.Extra)
	if p.Source != "" {
		pkg = pkg.WithSourceDir(p.Source)
	}
	return pkg, nil
}

// FromEntity converts a domain package to its YAML record.
func FromEntity(pkg *entities.Package, installed time.Time) InstalledPackage {
	extra := pkg.Extra()
	if len(extra) == 0 {
		extra = nil
	}
	return InstalledPackage{
		Installed: installed,
		Version:   pkg.Version(),
		Type:      pkg.Type(),
		Source:    pkg.SourceDir(),
		Extra:     extra,
	}
}
