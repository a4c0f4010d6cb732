package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"github.com/roundcube/skin-installer/skin/entities"
)

// embeddedBootstrap defines INSTALL_PATH, loads the host initialization
// unit and then the script, all in one PHP process.
const embeddedBootstrap = `define('INSTALL_PATH', $argv[1]); require_once $argv[2]; include $argv[3];`

// ExecutableHook runs a package file directly. A file the kernel cannot
// exec, such as a script without an interpreter line, is handed to the
// shell instead. Its exit status is reported but never fails the operation.
type ExecutableHook struct {
	Path string
}

// Kind implements Hook.
func (h ExecutableHook) Kind() Kind { return KindExecutable }

// Ref implements Hook.
func (h ExecutableHook) Ref() string { return h.Path }

// Execute implements Hook.
func (h ExecutableHook) Execute(ctx context.Context, env Env) error {
	err := h.command(ctx, env, h.Path).Run()
	if errors.Is(err, syscall.ENOEXEC) {
		env.Logger.Debug("running lifecycle script through the shell", "script", h.Path, "shell", env.Shell)
		err = h.command(ctx, env, env.Shell, h.Path).Run()
	}
	if err != nil {
		env.Logger.Warn("lifecycle script did not succeed",
			"script", h.Path,
			"exit_code", exitCode(err),
			"error", err)
		return nil
	}
	env.Logger.Debug("lifecycle script finished", "script", h.Path)
	return nil
}

func (h ExecutableHook) command(ctx context.Context, env Env, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // Author-supplied lifecycle script
	cmd.Dir = env.Root
	cmd.Stdout = env.Stdout
	cmd.Stderr = env.Stderr
	return cmd
}

// EmbeddedHook runs a PHP file after the host bootstrap has been loaded.
// Any failure is returned as an *entities.EmbeddedScriptError, which callers
// treat as fatal for the whole process.
type EmbeddedHook struct {
	Path string
}

// Kind implements Hook.
func (h EmbeddedHook) Kind() Kind { return KindEmbedded }

// Ref implements Hook.
func (h EmbeddedHook) Ref() string { return h.Path }

// Execute implements Hook.
func (h EmbeddedHook) Execute(ctx context.Context, env Env) error {
	installPath := strings.TrimSuffix(env.Root, "/") + "/"

	cmd := exec.CommandContext(ctx, env.PHPBinary, //nolint:gosec // PHP binary from installer settings
		"-d", "display_errors=stderr",
		"-r", embeddedBootstrap,
		"--", installPath, env.IniSetPath, h.Path,
	)
	cmd.Dir = env.Root
	cmd.Stdout = env.Stdout
	cmd.Stderr = env.Stderr

	if err := cmd.Run(); err != nil {
		return &entities.EmbeddedScriptError{
			Script:   h.Path,
			ExitCode: exitCode(err),
			Err:      err,
		}
	}
	return nil
}

// CommandHook runs the script reference itself as a shell command.
type CommandHook struct {
	Command string
}

// Kind implements Hook.
func (h CommandHook) Kind() Kind { return KindCommand }

// Ref implements Hook.
func (h CommandHook) Ref() string { return h.Command }

// Execute implements Hook.
func (h CommandHook) Execute(ctx context.Context, env Env) error {
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, env.Shell, "-c", h.Command) //nolint:gosec // Command declared in package metadata
	cmd.Dir = env.Root
	cmd.Stdout = env.Stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		if stderr.Len() > 0 {
			env.Logger.Debug("lifecycle command wrote to stderr", "command", h.Command, "stderr", stderr.String())
		}
		return nil
	}

	code := exitCode(err)
	if code < 0 {
		return fmt.Errorf("run lifecycle command %q: %w", h.Command, err)
	}
	return &entities.CommandFailedError{
		Command:  h.Command,
		ExitCode: code,
		Stderr:   stderr.String(),
	}
}
