// Package versiongate checks a package's declared host compatibility range
// against the version of the installed host application.
package versiongate

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/roundcube/skin-installer/skin/entities"
	"github.com/roundcube/skin-installer/skin/values"
)

var rcmailVersionPattern = regexp.MustCompile(`define\(.RCMAIL_VERSION.,\s*.([0-9.]+[a-z-]*)?`)

// Gate implements ports.VersionGate for a host installation.
type Gate struct {
	layout values.HostLayout
	logger *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// NewGate creates a version gate for the host at layout.
func NewGate(layout values.HostLayout, opts ...Option) *Gate {
	g := &Gate{
		layout: layout,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// HostVersion reads and normalizes the host's RCMAIL_VERSION.
func (g *Gate) HostVersion() (Version, error) {
	path := g.layout.IniSetPath()
	data, err := os.ReadFile(path) // Fixed path under the injected root
	if err != nil {
		return Version{}, &entities.EnvironmentError{
			Root:   g.layout.Root(),
			Reason: "cannot read " + values.IniSetFile,
			Err:    err,
		}
	}

	m := rcmailVersionPattern.FindSubmatch(data)
	if m == nil || len(m[1]) == 0 {
		return Version{}, &entities.EnvironmentError{
			Root:   g.layout.Root(),
			Reason: "no RCMAIL_VERSION definition in " + values.IniSetFile,
		}
	}

	v, err := Normalize(string(m[1]))
	if err != nil {
		return Version{}, &entities.EnvironmentError{
			Root:   g.layout.Root(),
			Reason: "unrecognized RCMAIL_VERSION",
			Err:    err,
		}
	}
	return v, nil
}

// Constraints returns the bounds declared in extra.roundcube, min first.
func Constraints(extra entities.RoundcubeExtra) ([]Constraint, error) {
	declared := []struct {
		key string
		raw string
		op  Operator
	}{
		{"min-version", extra.MinVersion, AtLeast},
		{"max-version", extra.MaxVersion, AtMost},
	}

	var out []Constraint
	for _, d := range declared {
		if d.raw == "" {
			continue
		}
		v, err := Normalize(d.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		out = append(out, Constraint{Operator: d.op, Version: v})
	}
	return out, nil
}

// Check fails with an IncompatibleVersionError on the first violated bound.
func (g *Gate) Check(pkg *entities.Package) error {
	detected, err := g.HostVersion()
	if err != nil {
		return err
	}

	constraints, err := Constraints(pkg.Roundcube())
	if err != nil {
		return fmt.Errorf("package %s: %w", pkg.Name(), err)
	}

	for _, c := range constraints {
		if !c.Operator.Holds(detected, c.Version) {
			return &entities.IncompatibleVersionError{
				Package:  pkg.Name().String(),
				Operator: string(c.Operator),
				Required: c.Version.String(),
				Detected: detected.String(),
			}
		}
	}

	g.logger.Debug("host version accepted",
		"package", pkg.Name().String(),
		"detected", detected.String(),
		"constraints", len(constraints))
	return nil
}
