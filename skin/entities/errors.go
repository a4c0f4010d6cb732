package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error patterns.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrEnvironment is returned when the host installation cannot be found or read.
	ErrEnvironment = errors.New("host environment error")

	// ErrIncompatibleVersion is returned when a declared version constraint is violated.
	ErrIncompatibleVersion = errors.New("incompatible host version")

	// ErrConfigNotFound is returned when the host config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigNotWritable is returned when the host config file cannot be written.
	ErrConfigNotWritable = errors.New("config file not writable")

	// ErrConfigWriteFailed is returned when rewriting the host config file fails.
	ErrConfigWriteFailed = errors.New("config write failed")

	// ErrSkinKeyMissing is returned when the config declares no skin setting.
	ErrSkinKeyMissing = errors.New("skin setting not found in config")

	// ErrConfigInvalid is returned when the config file cannot be parsed.
	ErrConfigInvalid = errors.New("config file invalid")

	// ErrCommandFailed is returned when a raw shell lifecycle command exits non-zero.
	ErrCommandFailed = errors.New("lifecycle command failed")

	// ErrEmbeddedScriptFailed is returned when a host-context script fails.
	// Callers must treat it as fatal for the whole process.
	ErrEmbeddedScriptFailed = errors.New("embedded script failed")

	// ErrPackageNotFound is returned when a package is not in the installed repository.
	ErrPackageNotFound = errors.New("package not installed")
)

// EnvironmentError indicates the host installation is missing or unparsable.
type EnvironmentError struct {
	Root   string
	Reason string
	Err    error
}

func (e *EnvironmentError) Error() string {
	msg := fmt.Sprintf("unable to find a Roundcube installation in %s: %s", e.Root, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *EnvironmentError) Unwrap() error { return e.Err }

// Is implements error matching for errors.Is() checks.
func (e *EnvironmentError) Is(target error) bool {
	return target == ErrEnvironment
}

// IncompatibleVersionError identifies the first violated version bound.
type IncompatibleVersionError struct {
	Package  string
	Operator string
	Required string
	Detected string
}

func (e *IncompatibleVersionError) Error() string {
	return fmt.Sprintf(
		"version check failed: %s requires Roundcube version %s %s, %s was detected",
		e.Package, e.Operator, e.Required, e.Detected,
	)
}

// Is implements error matching for errors.Is() checks.
func (e *IncompatibleVersionError) Is(target error) bool {
	return target == ErrIncompatibleVersion
}

// ConfigErrorKind classifies a ConfigError.
type ConfigErrorKind int

const (
	ConfigNotFound ConfigErrorKind = iota
	ConfigNotWritable
	ConfigWriteFailed
	ConfigKeyMissing
	ConfigInvalid
)

// String returns the kind name.
func (k ConfigErrorKind) String() string {
	switch k {
	case ConfigNotFound:
		return "not found"
	case ConfigNotWritable:
		return "not writable"
	case ConfigWriteFailed:
		return "write failed"
	case ConfigKeyMissing:
		return "skin key missing"
	case ConfigInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ConfigError reports a failed activation attempt.
// Activation is best effort: callers log it and carry on.
type ConfigError struct {
	Kind ConfigErrorKind
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config %s: %s", e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error { return e.Err }

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, entities.ErrConfigNotWritable)
func (e *ConfigError) Is(target error) bool {
	switch e.Kind {
	case ConfigNotFound:
		return target == ErrConfigNotFound
	case ConfigNotWritable:
		return target == ErrConfigNotWritable
	case ConfigWriteFailed:
		return target == ErrConfigWriteFailed
	case ConfigKeyMissing:
		return target == ErrSkinKeyMissing
	case ConfigInvalid:
		return target == ErrConfigInvalid
	}
	return false
}

// CommandFailedError carries the exit code and captured error output of a
// raw shell lifecycle command.
type CommandFailedError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("error executing script %q (exit code %d): %s", e.Command, e.ExitCode, e.Stderr)
}

// Is implements error matching for errors.Is() checks.
func (e *CommandFailedError) Is(target error) bool {
	return target == ErrCommandFailed
}

// EmbeddedScriptError reports a host-context script that did not complete.
type EmbeddedScriptError struct {
	Script   string
	ExitCode int
	Err      error
}

func (e *EmbeddedScriptError) Error() string {
	return fmt.Sprintf("embedded script %s failed (exit code %d): %v", e.Script, e.ExitCode, e.Err)
}

// Unwrap returns the underlying cause.
func (e *EmbeddedScriptError) Unwrap() error { return e.Err }

// Is implements error matching for errors.Is() checks.
func (e *EmbeddedScriptError) Is(target error) bool {
	return target == ErrEmbeddedScriptFailed
}

// PackageNotFoundError indicates a package is not recorded as installed.
type PackageNotFoundError struct {
	Name string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package not installed: %s", e.Name)
}

// Is implements error matching for errors.Is() checks.
func (e *PackageNotFoundError) Is(target error) bool {
	return target == ErrPackageNotFound
}
