// Package entities contains domain entities for the skin installer.
package entities

import (
	"maps"

	"github.com/roundcube/skin-installer/skin/values"
)

// ExtraKey is the key of the host specific block in a package's extra mapping.
const ExtraKey = "roundcube"

// Lifecycle names a package operation that may carry an author script.
type Lifecycle string

const (
	PostInstall   Lifecycle = "post-install-script"
	PostUpdate    Lifecycle = "post-update-script"
	PostUninstall Lifecycle = "post-uninstall-script"
)

// RoundcubeExtra is the typed view of extra.roundcube. All keys are optional.
type RoundcubeExtra struct {
	MinVersion          string `json:"min-version,omitempty" jsonschema:"pattern=^v?[0-9.]+[a-zA-Z0-9.-]*$"`
	MaxVersion          string `json:"max-version,omitempty" jsonschema:"pattern=^v?[0-9.]+[a-zA-Z0-9.-]*$"`
	PostInstallScript   string `json:"post-install-script,omitempty" jsonschema:"minLength=1"`
	PostUpdateScript    string `json:"post-update-script,omitempty" jsonschema:"minLength=1"`
	PostUninstallScript string `json:"post-uninstall-script,omitempty" jsonschema:"minLength=1"`
}

// Script returns the script declared for the given lifecycle, or "".
func (e RoundcubeExtra) Script(l Lifecycle) string {
	switch l {
	case PostInstall:
		return e.PostInstallScript
	case PostUpdate:
		return e.PostUpdateScript
	case PostUninstall:
		return e.PostUninstallScript
	default:
		return ""
	}
}

// Package is a skin package as handed over by the package manager.
// Consumed read-only by the installer.
type Package struct {
	name      values.PackageName
	version   string
	pkgType   string
	extra     map[string]any
	sourceDir string
}

// NewPackage creates a new package entity.
func NewPackage(name values.PackageName, version, pkgType string, extra map[string]any) *Package {
	if extra == nil {
		extra = map[string]any{}
	}
	return &Package{
		name:    name,
		version: version,
		pkgType: pkgType,
		extra:   extra,
	}
}

// WithSourceDir returns a copy of the package whose files live in dir.
func (p *Package) WithSourceDir(dir string) *Package {
	cp := *p
	cp.sourceDir = dir
	return &cp
}

// Name returns the vendor/name identifier.
func (p *Package) Name() values.PackageName {
	return p.name
}

// Version returns the declared package version.
func (p *Package) Version() string {
	return p.version
}

// Type returns the package type tag.
func (p *Package) Type() string {
	return p.pkgType
}

// Extra returns a copy of the free-form extra mapping.
func (p *Package) Extra() map[string]any {
	return maps.Clone(p.extra)
}

// SourceDir returns the directory holding the extracted package, if known.
func (p *Package) SourceDir() string {
	return p.sourceDir
}

// RawRoundcube returns the untyped extra.roundcube block.
func (p *Package) RawRoundcube() (any, bool) {
	v, ok := p.extra[ExtraKey]
	return v, ok
}

// Roundcube decodes extra.roundcube. Keys that are absent or not strings
// are left empty.
func (p *Package) Roundcube() RoundcubeExtra {
	raw, ok := p.extra[ExtraKey].(map[string]any)
	if !ok {
		return RoundcubeExtra{}
	}

	str := func(key string) string {
		s, _ := raw[key].(string)
		return s
	}

	return RoundcubeExtra{
		MinVersion:          str("min-version"),
		MaxVersion:          str("max-version"),
		PostInstallScript:   str(string(PostInstall)),
		PostUpdateScript:    str(string(PostUpdate)),
		PostUninstallScript: str(string(PostUninstall)),
	}
}
