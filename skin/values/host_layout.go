package values

import (
	"fmt"
	"path/filepath"
)

// Paths of the host application, relative to its root directory.
const (
	SkinsDir    = "skins"
	IncludeDir  = "program/include"
	IniSetFile  = "program/include/iniset.php"
	ConfigFile  = "config/config.inc.php"
	PackageType = "roundcube-skin"
)

// HostLayout describes where the host application keeps the files the
// installer reads and writes. Every path is derived from an explicit root.
type HostLayout struct {
	root string
}

// NewHostLayout creates a layout rooted at dir. The root is made absolute.
func NewHostLayout(dir string) (HostLayout, error) {
	if dir == "" {
		return HostLayout{}, fmt.Errorf("host root cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return HostLayout{}, fmt.Errorf("resolve host root %q: %w", dir, err)
	}
	return HostLayout{root: filepath.Clean(abs)}, nil
}

// MustNewHostLayout creates a HostLayout or panics
func MustNewHostLayout(dir string) HostLayout {
	l, err := NewHostLayout(dir)
	if err != nil {
		panic(err)
	}
	return l
}

// Root returns the host installation directory.
func (l HostLayout) Root() string {
	return l.root
}

// VendorDir returns the directory skins are installed into.
func (l HostLayout) VendorDir() string {
	return filepath.Join(l.root, SkinsDir)
}

// IncludeDir returns the host include directory holding the bootstrap unit.
func (l HostLayout) IncludeDir() string {
	return filepath.Join(l.root, IncludeDir)
}

// IniSetPath returns the file declaring RCMAIL_VERSION.
func (l HostLayout) IniSetPath() string {
	return filepath.Join(l.root, IniSetFile)
}

// ConfigPath returns the local host configuration file.
func (l HostLayout) ConfigPath() string {
	return filepath.Join(l.root, ConfigFile)
}

// IsEmpty returns true if this is the zero value
func (l HostLayout) IsEmpty() bool {
	return l.root == ""
}
