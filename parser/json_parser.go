// Package parser reads package manifests.
package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roundcube/skin-installer/skin/entities"
	"github.com/roundcube/skin-installer/skin/values"
)

// manifest is the subset of composer.json the installer reads.
type manifest struct {
	Name    string         `json:"name"`
	Version string         `json:"version"`
	Type    string         `json:"type"`
	Extra   map[string]any `json:"extra"`
}

// JSONManifestParser implements ManifestParser for composer.json.
type JSONManifestParser struct{}

// NewJSONManifestParser creates a new JSONManifestParser.
func NewJSONManifestParser() ManifestParser {
	return &JSONManifestParser{}
}

// Parse unmarshals JSON bytes into a Package.
func (p *JSONManifestParser) Parse(data []byte) (*entities.Package, error) {
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	name, err := values.NewPackageName(m.Name)
	if err != nil {
		return nil, fmt.Errorf("manifest name: %w", err)
	}

	version := m.Version
	if version == "" {
		version = "dev-main"
	}
	return entities.NewPackage(name, version, m.Type, m.Extra), nil
}

// LoadDir reads the manifest in dir. The returned package has dir as its
// source directory.
func LoadDir(p ManifestParser, dir string) (*entities.Package, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(abs, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	pkg, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Join(abs, ManifestFile), err)
	}
	return pkg.WithSourceDir(abs), nil
}
