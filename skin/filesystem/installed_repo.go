// Package filesystem provides file-based repositories for the skin installer.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/roundcube/skin-installer/skin/entities"
	"github.com/roundcube/skin-installer/skin/values"
)

// FileName is the name of the installed packages file inside the vendor dir.
const FileName = ".installed.yaml"

// InstalledRepository implements ports.InstalledRepository with a YAML file.
type InstalledRepository struct {
	path string
	now  func() time.Time
}

// Option configures an InstalledRepository.
type Option func(*InstalledRepository)

// WithClock sets the time source used for install timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *InstalledRepository) { r.now = now }
}

// NewInstalledRepository creates a repository stored in the host's vendor dir.
func NewInstalledRepository(layout values.HostLayout, opts ...Option) *InstalledRepository {
	r := &InstalledRepository{
		path: filepath.Join(layout.VendorDir(), FileName),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the location of the YAML file.
func (r *InstalledRepository) Path() string {
	return r.path
}

// Find returns the installed package called name.
func (r *InstalledRepository) Find(ctx context.Context, name values.PackageName) (*entities.Package, error) {
	file, err := r.load()
	if err != nil {
		return nil, err
	}
	rec, ok := file.Packages[name.String()]
	if !ok {
		return nil, &entities.PackageNotFoundError{Name: name.String()}
	}
	return rec.ToEntity(name.String())
}

// Add records pkg, replacing an earlier record of the same name.
func (r *InstalledRepository) Add(ctx context.Context, pkg *entities.Package) error {
	file, err := r.load()
	if err != nil {
		return err
	}
	file.Packages[pkg.Name().String()] = FromEntity(pkg, r.now().UTC())
	return r.save(file)
}

// Remove deletes the record of name. Unknown names are ignored.
func (r *InstalledRepository) Remove(ctx context.Context, name values.PackageName) error {
	file, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := file.Packages[name.String()]; !ok {
		return nil
	}
	delete(file.Packages, name.String())
	return r.save(file)
}

// List returns all installed packages sorted by name.
func (r *InstalledRepository) List(ctx context.Context) ([]*entities.Package, error) {
	file, err := r.load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(file.Packages))
	for name := range file.Packages {
		names = append(names, name)
	}
	sort.Strings(names)

	pkgs := make([]*entities.Package, 0, len(names))
	for _, name := range names {
		pkg, err := file.Packages[name].ToEntity(name)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

// load reads the file. A missing file is an empty repository.
func (r *InstalledRepository) load() (*InstalledFile, error) {
	empty := &InstalledFile{Version: FormatVersion, Packages: map[string]InstalledPackage{}}

	root, err := os.OpenRoot(filepath.Dir(r.path))
	if err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return nil, fmt.Errorf("failed to open directory %q: %w", filepath.Dir(r.path), err)
	}
	defer func() { _ = root.Close() }()

	f, err := root.Open(filepath.Base(r.path))
	if err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return nil, fmt.Errorf("failed to open installed file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var out InstalledFile
	if err := yaml.NewDecoder(f).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding installed YAML %q: %w", r.path, err)
	}
	if out.Version > FormatVersion {
		return nil, fmt.Errorf("installed file %q has unsupported format version %d", r.path, out.Version)
	}
	if out.Packages == nil {
		out.Packages = map[string]InstalledPackage{}
	}
	return &out, nil
}

func (r *InstalledRepository) save(file *InstalledFile) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return fmt.Errorf("opening directory for write %q: %w", dir, err)
	}
	defer func() { _ = root.Close() }()

	f, err := root.OpenFile(filepath.Base(r.path), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating installed file: %w", err)
	}
	defer func() { _ = f.Close() }()

	file.Version = FormatVersion
	file.Updated = r.now().UTC()

	encoder := yaml.NewEncoder(f)
	defer func() { _ = encoder.Close() }()

	if err := encoder.Encode(file); err != nil {
		return fmt.Errorf("encoding installed file: %w", err)
	}
	return nil
}
