package hooks

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roundcube/skin-installer/skin/entities"
	"github.com/roundcube/skin-installer/skin/values"
)

// Runner implements ports.HookRunner.
type Runner struct {
	layout values.HostLayout
	php    string
	shell  string
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithPHPBinary sets the interpreter used for embedded scripts.
func WithPHPBinary(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.php = path
		}
	}
}

// WithShell sets the shell used for raw commands.
func WithShell(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.shell = path
		}
	}
}

// WithOutput sets where script output goes.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a hook runner for the host at layout.
func NewRunner(layout values.HostLayout, opts ...Option) *Runner {
	r := &Runner{
		layout: layout,
		php:    "php",
		shell:  "/bin/sh",
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve decides how script is run for pkg. The package directory is
// looked up by its declared short name first, then by its install name.
func (r *Runner) Resolve(script string, pkg *entities.Package) Hook {
	name := pkg.Name()
	dirs := []string{filepath.Join(r.layout.VendorDir(), name.ShortName())}
	if name.SkinName() != name.ShortName() {
		dirs = append(dirs, filepath.Join(r.layout.VendorDir(), name.SkinName()))
	}

	for _, dir := range dirs {
		resolved, err := filepath.EvalSymlinks(filepath.Join(dir, script))
		if err != nil {
			continue
		}
		info, err := os.Stat(resolved)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0 {
			return ExecutableHook{Path: resolved}
		}
		if strings.HasSuffix(resolved, ".php") {
			return EmbeddedHook{Path: resolved}
		}
		break
	}

	return CommandHook{Command: script}
}

// Run resolves and executes script.
func (r *Runner) Run(ctx context.Context, script string, pkg *entities.Package) error {
	hook := r.Resolve(script, pkg)
	r.logger.Info("running lifecycle script",
		"package", pkg.Name().String(),
		"kind", hook.Kind().String(),
		"script", hook.Ref())
	return hook.Execute(ctx, r.env())
}

func (r *Runner) env() Env {
	return Env{
		Root:       r.layout.Root(),
		IniSetPath: r.layout.IniSetPath(),
		PHPBinary:  r.php,
		Shell:      r.shell,
		Stdout:     r.stdout,
		Stderr:     r.stderr,
		Logger:     r.logger,
	}
}
