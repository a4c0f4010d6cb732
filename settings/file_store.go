package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/roundcube/skin-installer/skin/values"
	"gopkg.in/yaml.v3"
)

type fileStoreConfig struct {
	path     string
	filePerm os.FileMode
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithPath sets the path to the settings file.
func WithPath(path string) FileStoreOption {
	return func(c *fileStoreConfig) {
		if path != "" {
			c.path = path
		}
	}
}

// WithFilePermissions sets the permissions used when saving.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// FileStore reads and writes the settings file.
type FileStore struct {
	config fileStoreConfig
}

// NewFileStore creates a store for the host at layout. The file defaults
// to FileName in the host root.
func NewFileStore(layout values.HostLayout, opts ...FileStoreOption) *FileStore {
	cfg := fileStoreConfig{
		path:     filepath.Join(layout.Root(), FileName),
		filePerm: 0o644,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// Load reads the settings. A missing file yields zero settings.
func (s *FileStore) Load() (Settings, error) {
	data, err := os.ReadFile(s.config.path)
	if os.IsNotExist(err) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	var out Settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("failed to parse settings %s: %w", s.config.path, err)
	}
	if err := out.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings %s: %w", s.config.path, err)
	}
	return out, nil
}

// Save writes settings to the file.
func (s *FileStore) Save(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(s.config.path, data, s.config.filePerm); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the backing file.
func (s *FileStore) ConfigPath() string {
	return s.config.path
}
