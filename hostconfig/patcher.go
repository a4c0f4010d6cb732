package hostconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/roundcube/skin-installer/skin/entities"
	"github.com/roundcube/skin-installer/skin/values"
)

// SkinKey is the configuration key selecting the active skin.
const SkinKey = "skin"

// Patcher implements ports.ConfigActivator for the host config file.
type Patcher struct {
	path   string
	logger *slog.Logger
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Patcher) { p.logger = l }
}

// WithPath overrides the config file location.
func WithPath(path string) Option {
	return func(p *Patcher) {
		if path != "" {
			p.path = path
		}
	}
}

// NewPatcher creates a patcher for the config file of the host at layout.
func NewPatcher(layout values.HostLayout, opts ...Option) *Patcher {
	p := &Patcher{
		path:   layout.ConfigPath(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Path returns the config file location.
func (p *Patcher) Path() string {
	return p.path
}

// Writable reports whether the config file exists and can be opened for writing.
func (p *Patcher) Writable() bool {
	return p.checkWritable() == nil
}

func (p *Patcher) checkWritable() error {
	info, err := os.Stat(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &entities.ConfigError{Kind: entities.ConfigNotFound, Path: p.path, Err: err}
		}
		return &entities.ConfigError{Kind: entities.ConfigNotWritable, Path: p.path, Err: err}
	}
	if info.IsDir() {
		return &entities.ConfigError{Kind: entities.ConfigNotFound, Path: p.path, Err: fmt.Errorf("is a directory")}
	}

	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return &entities.ConfigError{Kind: entities.ConfigNotWritable, Path: p.path, Err: err}
	}
	_ = f.Close()
	return nil
}

// Load parses the config file.
func (p *Patcher) Load() (*Document, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &entities.ConfigError{Kind: entities.ConfigNotFound, Path: p.path, Err: err}
		}
		return nil, fmt.Errorf("read config %s: %w", p.path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, &entities.ConfigError{Kind: entities.ConfigInvalid, Path: p.path, Err: err}
	}
	return doc, nil
}

// ActiveSkins returns the skin names currently configured.
func ActiveSkins(doc *Document) ([]string, bool) {
	v, ok := doc.Get(SkinKey)
	if !ok {
		return nil, false
	}
	return v.Strings()
}

// Activate binds the skin key to name. It returns false without writing
// when the key already selects exactly that skin.
func (p *Patcher) Activate(name string) (bool, error) {
	if err := p.checkWritable(); err != nil {
		return false, err
	}

	doc, err := p.Load()
	if err != nil {
		return false, err
	}

	if _, ok := doc.Get(SkinKey); !ok {
		return false, &entities.ConfigError{
			Kind: entities.ConfigKeyMissing,
			Path: p.path,
			Err:  fmt.Errorf("no %s['%s'] assignment", doc.Mapping(), SkinKey),
		}
	}

	if current, ok := ActiveSkins(doc); ok && slices.Equal(current, []string{name}) {
		p.logger.Debug("skin already active", "skin", name, "config", p.path)
		return false, nil
	}

	out, ok := doc.Replace(SkinKey, ListLiteral(name))
	if !ok {
		return false, &entities.ConfigError{
			Kind: entities.ConfigKeyMissing,
			Path: p.path,
			Err:  fmt.Errorf("%s['%s'] is not assigned directly", doc.Mapping(), SkinKey),
		}
	}

	info, err := os.Stat(p.path)
	if err != nil {
		return false, &entities.ConfigError{Kind: entities.ConfigWriteFailed, Path: p.path, Err: err}
	}
	if err := os.WriteFile(p.path, out, info.Mode().Perm()); err != nil {
		return false, &entities.ConfigError{Kind: entities.ConfigWriteFailed, Path: p.path, Err: err}
	}

	p.logger.Info("Updated local config", "config", p.path, "skin", name, "mapping", doc.Mapping().String())
	return true, nil
}
