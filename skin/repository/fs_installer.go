// Package repository implements base installer adapters.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/roundcube/skin-installer/skin/entities"
	"github.com/roundcube/skin-installer/skin/ports"
	"github.com/roundcube/skin-installer/skin/values"
)

// DefaultExcludes are the source paths never copied into the host.
var DefaultExcludes = []string{".git/**", ".github/**", "node_modules/**"}

// FSInstaller implements ports.BaseInstaller by copying an extracted
// package directory into the host's skins directory.
type FSInstaller struct {
	vendorDir string
	installed ports.InstalledRepository
	excludes  []string
	logger    *slog.Logger
}

// Option configures an FSInstaller.
type Option func(*FSInstaller)

// WithExcludes replaces the exclude patterns. Patterns use doublestar
// syntax and match slash separated paths relative to the source dir.
func WithExcludes(patterns []string) Option {
	return func(i *FSInstaller) { i.excludes = patterns }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *FSInstaller) { i.logger = l }
}

// NewFSInstaller creates an installer placing packages under the vendor
// dir of layout and recording them in installed.
func NewFSInstaller(layout values.HostLayout, installed ports.InstalledRepository, opts ...Option) (*FSInstaller, error) {
	i := &FSInstaller{
		vendorDir: filepath.Clean(layout.VendorDir()),
		installed: installed,
		excludes:  DefaultExcludes,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}

	for _, p := range i.excludes {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return i, nil
}

// Install copies the package source dir to installPath.
func (i *FSInstaller) Install(ctx context.Context, pkg *entities.Package, installPath string) error {
	dst, err := i.contained(installPath)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%s is already installed at %s", pkg.Name(), dst)
	}

	if err := i.place(ctx, pkg, dst); err != nil {
		return err
	}
	return i.installed.Add(ctx, pkg)
}

// Update replaces the files of initial with those of target. The target
// is staged next to the install dir first, so a failed copy leaves the
// installed files and record untouched.
func (i *FSInstaller) Update(ctx context.Context, initial, target *entities.Package, initialPath, targetPath string) error {
	oldDir, err := i.contained(initialPath)
	if err != nil {
		return err
	}
	newDir, err := i.contained(targetPath)
	if err != nil {
		return err
	}

	src, err := source(target)
	if err != nil {
		return err
	}
	for _, dir := range []string{oldDir, newDir} {
		if within(src, resolved(dir)) {
			return fmt.Errorf("source of %s is inside install path %s", target.Name(), dir)
		}
	}
	if within(resolved(i.vendorDir), src) {
		return fmt.Errorf("source of %s contains %s", target.Name(), i.vendorDir)
	}

	staging, err := i.stage(ctx, target, src, newDir)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(oldDir); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("remove %s: %w", oldDir, err)
	}
	if newDir != oldDir {
		if err := os.RemoveAll(newDir); err != nil {
			_ = os.RemoveAll(staging)
			return fmt.Errorf("remove %s: %w", newDir, err)
		}
	}
	if err := os.Rename(staging, newDir); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("move %s into place: %w", target.Name(), err)
	}
	i.logger.Info("placed skin files", "package", target.Name().String(), "path", newDir)

	if !initial.Name().Equals(target.Name()) {
		if err := i.installed.Remove(ctx, initial.Name()); err != nil {
			return err
		}
	}
	return i.installed.Add(ctx, target)
}

// stage copies src into a hidden sibling of dst and returns its path.
func (i *FSInstaller) stage(ctx context.Context, pkg *entities.Package, src, dst string) (string, error) {
	if err := os.MkdirAll(i.vendorDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", i.vendorDir, err)
	}
	staging, err := os.MkdirTemp(i.vendorDir, "."+filepath.Base(dst)+".update-")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", pkg.Name(), err)
	}
	// MkdirTemp creates the dir private to the owner.
	if err := os.Chmod(staging, 0o755); err != nil {
		_ = os.RemoveAll(staging)
		return "", fmt.Errorf("stage %s: %w", pkg.Name(), err)
	}

	if err := i.copyTree(ctx, src, staging); err != nil {
		_ = os.RemoveAll(staging)
		return "", fmt.Errorf("copy %s: %w", pkg.Name(), err)
	}
	return staging, nil
}

// Uninstall removes installPath and forgets the package.
func (i *FSInstaller) Uninstall(ctx context.Context, pkg *entities.Package, installPath string) error {
	dir, err := i.contained(installPath)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	i.logger.Info("removed skin files", "package", pkg.Name().String(), "path", dir)
	return i.installed.Remove(ctx, pkg.Name())
}

func (i *FSInstaller) place(ctx context.Context, pkg *entities.Package, dst string) error {
	src, err := source(pkg)
	if err != nil {
		return err
	}
	if within(resolved(dst), src) {
		return fmt.Errorf("source of %s contains install path %s", pkg.Name(), dst)
	}

	if err := i.copyTree(ctx, src, dst); err != nil {
		_ = os.RemoveAll(dst)
		return fmt.Errorf("copy %s: %w", pkg.Name(), err)
	}
	i.logger.Info("placed skin files", "package", pkg.Name().String(), "path", dst)
	return nil
}

// source returns the resolved source dir of pkg after checking it is a
// readable directory.
func source(pkg *entities.Package) (string, error) {
	src := pkg.SourceDir()
	if src == "" {
		return "", fmt.Errorf("%s has no source directory", pkg.Name())
	}
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("read source of %s: %w", pkg.Name(), err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source of %s is not a directory: %s", pkg.Name(), src)
	}
	return resolved(src), nil
}

// resolved returns path absolute with symlinks evaluated. A path that does
// not exist yet is resolved through its parent.
func resolved(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		return r
	}
	if parent := filepath.Dir(abs); parent != abs {
		return filepath.Join(resolved(parent), filepath.Base(abs))
	}
	return abs
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// contained cleans path and rejects anything outside the vendor dir.
func (i *FSInstaller) contained(path string) (string, error) {
	clean := filepath.Clean(path)
	if !strings.HasPrefix(clean, i.vendorDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("security violation: install path %q is outside %q", path, i.vendorDir)
	}
	return clean, nil
}

func (i *FSInstaller) excluded(rel string) bool {
	for _, p := range i.excludes {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (i *FSInstaller) copyTree(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if rel == "." {
			return os.MkdirAll(target, 0o755)
		}
		if i.excluded(filepath.ToSlash(rel)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode().Perm())
		default:
			i.logger.Debug("skipping special file", "path", path)
			return nil
		}
	})
}

func copyFile(src, dst string, mode fs.FileMode) (err error) {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	// OpenFile applies the umask.
	if err := out.Chmod(mode); err != nil && !errors.Is(err, fs.ErrPermission) {
		return err
	}
	return nil
}
