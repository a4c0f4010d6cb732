// Package settings loads the optional installer settings file.
package settings

import (
	"fmt"
	"log/slog"
	"strings"
)

// FileName is the default settings file name inside the host root.
const FileName = "skin-installer.yaml"

// Settings are operator preferences for the installer.
type Settings struct {
	PHPBinary     string   `yaml:"php_binary,omitempty"`
	Shell         string   `yaml:"shell,omitempty"`
	Exclude       []string `yaml:"exclude,omitempty"`
	NoInteraction bool     `yaml:"no_interaction,omitempty"`
	LogLevel      string   `yaml:"log_level,omitempty"`
}

// Level returns the slog level named by LogLevel. Empty means info.
func (s Settings) Level() (slog.Level, error) {
	switch strings.ToLower(s.LogLevel) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s.LogLevel)
	}
}

// Validate checks the settings for values the installer cannot use.
func (s Settings) Validate() error {
	if _, err := s.Level(); err != nil {
		return err
	}
	for i, p := range s.Exclude {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("exclude[%d] is empty", i)
		}
	}
	return nil
}
