// Package hooks runs the lifecycle scripts declared by skin packages.
//
// A script reference resolves to exactly one variant, checked in this order:
//
//	ExecutableHook  file under the package dir with an execute bit
//	EmbeddedHook    existing file ending in ".php", run inside the host bootstrap
//	CommandHook     anything else, run as a shell command
//
// Error propagation per variant:
//
//	variant     | failure                         | result
//	------------+---------------------------------+-------------------------------
//	executable  | non-zero exit, failed start     | logged, Execute returns nil
//	embedded    | non-zero exit, failed start     | *entities.EmbeddedScriptError (fatal)
//	command     | non-zero exit                   | *entities.CommandFailedError
//	command     | shell cannot be started         | wrapped exec error
package hooks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
)

// Kind names a hook variant.
type Kind int

const (
	KindExecutable Kind = iota
	KindEmbedded
	KindCommand
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindExecutable:
		return "executable"
	case KindEmbedded:
		return "embedded"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Env is what a hook needs to execute.
type Env struct {
	Root       string
	IniSetPath string
	PHPBinary  string
	Shell      string
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
}

// Hook is a resolved lifecycle script.
type Hook interface {
	Kind() Kind
	// Ref returns the path or command the hook runs.
	Ref() string
	Execute(ctx context.Context, env Env) error
}

// exitCode returns the exit status carried by err, or -1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
