package values

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PackageName represents a validated "vendor/name" package identifier.
type PackageName struct {
	vendor string
	name   string
}

// NewPackageName creates a PackageName with strict validation.
// A valid package name must:
// - consist of exactly two non-empty segments separated by a slash
// - contain only alphanumeric characters, dots, underscores, and hyphens
// - NOT contain parent directory references
func NewPackageName(s string) (PackageName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PackageName{}, fmt.Errorf("package name cannot be empty")
	}

	vendor, name, ok := strings.Cut(s, "/")
	if !ok || vendor == "" || name == "" || name == "." || strings.Contains(name, "/") {
		return PackageName{}, fmt.Errorf("invalid package name %q: expected vendor/name", s)
	}

	if strings.Contains(s, "..") || strings.Contains(s, `\`) {
		return PackageName{}, fmt.Errorf("package name cannot contain parent directory references")
	}

	for _, ch := range vendor + name {
		if !isValidPackageChar(ch) {
			return PackageName{}, fmt.Errorf("invalid package name %q: must contain only alphanumeric characters, dots, underscores, and hyphens", s)
		}
	}

	return PackageName{vendor: vendor, name: name}, nil
}

func isValidPackageChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' ||
		r == '-' ||
		r == '.'
}

// MustNewPackageName creates a PackageName or panics
func MustNewPackageName(s string) PackageName {
	pn, err := NewPackageName(s)
	if err != nil {
		panic(err)
	}
	return pn
}

// Vendor returns the vendor segment.
func (p PackageName) Vendor() string {
	return p.vendor
}

// ShortName returns the segment after the vendor, as declared.
func (p PackageName) ShortName() string {
	return p.name
}

// SkinName returns the directory name the skin is installed under:
// the short name with hyphens replaced by underscores.
func (p PackageName) SkinName() string {
	return strings.ReplaceAll(p.name, "-", "_")
}

// String returns the "vendor/name" form
func (p PackageName) String() string {
	if p.IsEmpty() {
		return ""
	}
	return p.vendor + "/" + p.name
}

// IsEmpty returns true if this is the zero value
func (p PackageName) IsEmpty() bool {
	return p.vendor == "" && p.name == ""
}

// Equals checks if two package names are equal
func (p PackageName) Equals(other PackageName) bool {
	return p.vendor == other.vendor && p.name == other.name
}

// MarshalJSON implements json.Marshaler.
func (p PackageName) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (p *PackageName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid package name JSON: %w", err)
	}

	name, err := NewPackageName(s)
	if err != nil {
		return err
	}
	*p = name
	return nil
}
