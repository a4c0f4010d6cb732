package hooks_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roundcube/skin-installer/hooks"
	"github.com/roundcube/skin-installer/skin/entities"
	"github.com/roundcube/skin-installer/skin/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	layout values.HostLayout
	pkg    *entities.Package
	skin   string
	stdout *bytes.Buffer
	runner *hooks.Runner
}

func newFixture(t *testing.T, pkgName string, opts ...hooks.Option) *fixture {
	t.Helper()

	layout := values.MustNewHostLayout(t.TempDir())
	name := values.MustNewPackageName(pkgName)
	skinDir := filepath.Join(layout.VendorDir(), name.SkinName())
	require.NoError(t, os.MkdirAll(skinDir, 0o755))

	stdout := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]hooks.Option{hooks.WithOutput(stdout, io.Discard), hooks.WithLogger(logger)}, opts...)

	return &fixture{
		layout: layout,
		pkg:    entities.NewPackage(name, "1.0.0", values.PackageType, nil),
		skin:   skinDir,
		stdout: stdout,
		runner: hooks.NewRunner(layout, opts...),
	}
}

func (f *fixture) writeFile(t *testing.T, rel, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(f.skin, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	return path
}

func TestRunner_Resolve(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "acme/my-skin")
	exe := f.writeFile(t, "bin/setup.sh", "#!/bin/sh\n", 0o755)
	php := f.writeFile(t, "install.php", "<?php\n", 0o644)
	execPHP := f.writeFile(t, "exec.php", "#!/usr/bin/env php\n", 0o755)
	f.writeFile(t, "README", "docs", 0o644)

	tests := []struct {
		name   string
		script string
		kind   hooks.Kind
		ref    string
	}{
		{"executable file", "bin/setup.sh", hooks.KindExecutable, exe},
		{"php file", "install.php", hooks.KindEmbedded, php},
		{"executable wins over php suffix", "exec.php", hooks.KindExecutable, execPHP},
		{"plain file is a command", "README", hooks.KindCommand, "README"},
		{"directory is a command", "bin", hooks.KindCommand, "bin"},
		{"missing file is a command", "echo done", hooks.KindCommand, "echo done"},
		{"missing php is a command", "missing.php", hooks.KindCommand, "missing.php"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hook := f.runner.Resolve(tc.script, f.pkg)
			assert.Equal(t, tc.kind, hook.Kind())
			assert.Equal(t, tc.ref, hook.Ref())
		})
	}
}

func TestRunner_Resolve_DeclaredShortNameFirst(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "acme/my-skin")
	declaredDir := filepath.Join(f.layout.VendorDir(), "my-skin")
	require.NoError(t, os.MkdirAll(declaredDir, 0o755))
	declared := filepath.Join(declaredDir, "hook.sh")
	require.NoError(t, os.WriteFile(declared, []byte("#!/bin/sh\n"), 0o755))
	f.writeFile(t, "hook.sh", "#!/bin/sh\n", 0o755)

	hook := f.runner.Resolve("hook.sh", f.pkg)
	assert.Equal(t, hooks.KindExecutable, hook.Kind())
	assert.Equal(t, declared, hook.Ref())
}

// A reference that is both an executable file and a valid shell string
// always runs the file.
func TestRunner_Run_ExecutablePriority(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "acme/larry")
	f.writeFile(t, "true", "#!/bin/sh\necho from-file\n", 0o755)

	require.NoError(t, f.runner.Run(context.Background(), "true", f.pkg))
	assert.Equal(t, "from-file\n", f.stdout.String())
}

func TestRunner_Run_ExecutableIgnoresExitStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "acme/larry")
	f.writeFile(t, "post.sh", "#!/bin/sh\npwd > marker\nexit 3\n", 0o755)

	err := f.runner.Run(context.Background(), "post.sh", f.pkg)
	require.NoError(t, err)

	marker, err := os.ReadFile(filepath.Join(f.layout.Root(), "marker"))
	require.NoError(t, err, "script runs in the host root")
	resolvedRoot, err := filepath.EvalSymlinks(f.layout.Root())
	require.NoError(t, err)
	assert.Equal(t, resolvedRoot, strings.TrimSpace(string(marker)))
}

func TestRunner_Run_ExecutableWithoutInterpreterLine(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "acme/larry")
	f.writeFile(t, "post.sh", "touch marker\necho via-shell\n", 0o755)

	require.NoError(t, f.runner.Run(context.Background(), "post.sh", f.pkg))
	assert.FileExists(t, filepath.Join(f.layout.Root(), "marker"))
	assert.Equal(t, "via-shell\n", f.stdout.String())
}

func TestRunner_Run_Command(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		f := newFixture(t, "acme/larry")
		require.NoError(t, f.runner.Run(context.Background(), "echo hello && touch done", f.pkg))
		assert.Equal(t, "hello\n", f.stdout.String())
		assert.FileExists(t, filepath.Join(f.layout.Root(), "done"))
	})

	t.Run("non-zero exit", func(t *testing.T) {
		f := newFixture(t, "acme/larry")
		err := f.runner.Run(context.Background(), "echo oops >&2; exit 4", f.pkg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrCommandFailed))

		var cerr *entities.CommandFailedError
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, 4, cerr.ExitCode)
		assert.Equal(t, "oops\n", cerr.Stderr)
		assert.Equal(t, "echo oops >&2; exit 4", cerr.Command)
	})

	t.Run("shell missing", func(t *testing.T) {
		f := newFixture(t, "acme/larry", hooks.WithShell("/nonexistent/sh"))
		err := f.runner.Run(context.Background(), "true", f.pkg)
		require.Error(t, err)
		assert.False(t, errors.Is(err, entities.ErrCommandFailed))
	})
}

// fakePHP writes a shell script standing in for the PHP CLI. It records
// its arguments and exits with code.
func fakePHP(t *testing.T, code string) (binary, argsFile string) {
	t.Helper()
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args")
	binary = filepath.Join(dir, "php")
	script := "#!/bin/sh\nfor a in \"$@\"; do echo \"$a\"; done > " + argsFile + "\nexit " + code + "\n"
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o755))
	return binary, argsFile
}

func TestRunner_Run_Embedded(t *testing.T) {
	t.Parallel()

	t.Run("bootstraps host", func(t *testing.T) {
		php, argsFile := fakePHP(t, "0")
		f := newFixture(t, "acme/larry", hooks.WithPHPBinary(php))
		script := f.writeFile(t, "install.php", "<?php echo 'hi';\n", 0o644)

		require.NoError(t, f.runner.Run(context.Background(), "install.php", f.pkg))

		data, err := os.ReadFile(argsFile)
		require.NoError(t, err)
		args := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, args, 8)
		assert.Equal(t, []string{"-d", "display_errors=stderr", "-r"}, args[:3])
		assert.Contains(t, args[3], "require_once $argv[2]")
		assert.Equal(t, "--", args[4])
		assert.Equal(t, f.layout.Root()+"/", args[5])
		assert.Equal(t, f.layout.IniSetPath(), args[6])
		resolved, err := filepath.EvalSymlinks(script)
		require.NoError(t, err)
		assert.Equal(t, resolved, args[7])
	})

	t.Run("failure is fatal", func(t *testing.T) {
		php, _ := fakePHP(t, "255")
		f := newFixture(t, "acme/larry", hooks.WithPHPBinary(php))
		f.writeFile(t, "install.php", "<?php exit(255);\n", 0o644)

		err := f.runner.Run(context.Background(), "install.php", f.pkg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrEmbeddedScriptFailed))

		var eerr *entities.EmbeddedScriptError
		require.True(t, errors.As(err, &eerr))
		assert.Equal(t, 255, eerr.ExitCode)
	})

	t.Run("missing interpreter is fatal", func(t *testing.T) {
		f := newFixture(t, "acme/larry", hooks.WithPHPBinary("/nonexistent/php"))
		f.writeFile(t, "install.php", "<?php\n", 0o644)

		err := f.runner.Run(context.Background(), "install.php", f.pkg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrEmbeddedScriptFailed))
	})
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "executable", hooks.KindExecutable.String())
	assert.Equal(t, "embedded", hooks.KindEmbedded.String())
	assert.Equal(t, "command", hooks.KindCommand.String())
	assert.Equal(t, "unknown", hooks.Kind(99).String())
}
