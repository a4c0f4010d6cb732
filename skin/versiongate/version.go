package versiongate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// devRevision replaces a development marker so that a development build
// sorts after every numbered release sharing its prefix.
const devRevision = ".999"

var versionPattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+){0,3})(?:[.-]?([a-zA-Z][a-zA-Z0-9.-]*))?$`)

// Version is a normalized host or package version.
// The first three numeric segments and the pre-release are handled by
// semver; a fourth numeric segment is kept as the revision.
type Version struct {
	sem      *semver.Version
	revision uint64
	original string
}

// Normalize parses a version the way the host's package manager does:
// "-git" becomes ".999", a leading "v" is dropped, up to four numeric
// segments are accepted and a trailing word becomes a pre-release.
func Normalize(raw string) (Version, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Version{}, fmt.Errorf("empty version string")
	}

	s = strings.ReplaceAll(s, "-git", devRevision)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")

	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("invalid version string %q", raw)
	}

	segments := strings.Split(m[1], ".")
	var revision uint64
	if len(segments) == 4 {
		r, err := strconv.ParseUint(segments[3], 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version string %q: %w", raw, err)
		}
		revision = r
		segments = segments[:3]
	}

	core := strings.Join(segments, ".")
	if m[2] != "" {
		core += "-" + strings.ToLower(strings.Trim(m[2], ".-"))
	}

	sem, err := semver.NewVersion(core)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version string %q: %w", raw, err)
	}

	return Version{sem: sem, revision: revision, original: raw}, nil
}

// MustNormalize normalizes a version or panics
func MustNormalize(raw string) Version {
	v, err := Normalize(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	if c := v.sem.Compare(o.sem); c != 0 {
		return c
	}
	switch {
	case v.revision < o.revision:
		return -1
	case v.revision > o.revision:
		return 1
	default:
		return 0
	}
}

// Original returns the string the version was parsed from.
func (v Version) Original() string {
	return v.original
}

// String renders the four-segment normalized form, e.g. "1.4.0.0" or "1.5.0.0-rc".
func (v Version) String() string {
	if v.sem == nil {
		return ""
	}
	s := fmt.Sprintf("%d.%d.%d.%d", v.sem.Major(), v.sem.Minor(), v.sem.Patch(), v.revision)
	if pre := v.sem.Prerelease(); pre != "" {
		s += "-" + pre
	}
	return s
}

// Operator is a version comparison used by a compatibility bound.
type Operator string

const (
	AtLeast Operator = ">="
	AtMost  Operator = "<="
)

// Holds reports whether "detected op required" is true.
func (op Operator) Holds(detected, required Version) bool {
	c := detected.Compare(required)
	switch op {
	case AtLeast:
		return c >= 0
	case AtMost:
		return c <= 0
	default:
		return false
	}
}

// Constraint is one declared compatibility bound.
type Constraint struct {
	Operator Operator
	Version  Version
}

// String returns e.g. ">= 1.4.0.0".
func (c Constraint) String() string {
	return string(c.Operator) + " " + c.Version.String()
}
