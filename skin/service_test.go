package skin_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/roundcube/skin-installer/hooks"
	"github.com/roundcube/skin-installer/skin"
	"github.com/roundcube/skin-installer/skin/entities"
	"github.com/roundcube/skin-installer/skin/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newPackage(name string, roundcube map[string]any) *entities.Package {
	var extra map[string]any
	if roundcube != nil {
		extra = map[string]any{entities.ExtraKey: roundcube}
	}
	return entities.NewPackage(values.MustNewPackageName(name), "1.0.0", values.PackageType, extra)
}

type harness struct {
	calls    []string
	base     *skin.MockBaseInstaller
	gate     *skin.MockVersionGate
	config   *skin.MockConfigActivator
	hooks    *skin.MockHookRunner
	prompter *skin.MockPrompter
}

func newHarness() *harness {
	h := &harness{}
	h.base = &skin.MockBaseInstaller{Calls: &h.calls}
	h.gate = &skin.MockVersionGate{Calls: &h.calls}
	h.config = &skin.MockConfigActivator{IsWritable: true, Changed: true, Calls: &h.calls}
	h.hooks = &skin.MockHookRunner{Calls: &h.calls}
	h.prompter = &skin.MockPrompter{Interactive: true, Answer: true}
	return h
}

func (h *harness) installer(root string) *skin.Installer {
	return skin.NewInstaller(values.MustNewHostLayout(root), h.base,
		skin.WithVersionGate(h.gate),
		skin.WithConfigActivator(h.config),
		skin.WithHookRunner(h.hooks),
		skin.WithPrompter(h.prompter),
		skin.WithLogger(quiet),
	)
}

func TestInstaller_InstallPath(t *testing.T) {
	t.Parallel()

	svc := newHarness().installer("/srv/app")

	tests := []struct {
		name string
		want string
	}{
		{"roundcube/my-skin", "/srv/app/skins/my_skin"},
		{"acme/larry", "/srv/app/skins/larry"},
		{"acme/My-Theme-2", "/srv/app/skins/My_Theme_2"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, svc.InstallPath(newPackage(tc.name, nil)))
	}
}

func TestInstaller_Supports(t *testing.T) {
	t.Parallel()

	svc := newHarness().installer("/srv/app")
	assert.True(t, svc.Supports("roundcube-skin"))
	assert.False(t, svc.Supports("roundcube-plugin"))
	assert.False(t, svc.Supports("Roundcube-Skin"))
	assert.False(t, svc.Supports(""))
}

func TestInstaller_Install(t *testing.T) {
	t.Parallel()

	t.Run("full sequence", func(t *testing.T) {
		h := newHarness()
		pkg := newPackage("acme/my-theme", map[string]any{"post-install-script": "echo hi"})

		require.NoError(t, h.installer("/srv/app").Install(context.Background(), pkg))

		assert.Equal(t, []string{"check", "install", "activate", "script"}, h.calls)
		assert.Equal(t, []string{"/srv/app/skins/my_theme"}, h.base.Paths)
		assert.Equal(t, []string{"my_theme"}, h.config.Activated)
		assert.Equal(t, []string{"Do you want to activate the skin my_theme?"}, h.prompter.Questions)
		assert.Equal(t, []string{"echo hi"}, h.hooks.Scripts)
	})

	t.Run("incompatible version aborts before files change", func(t *testing.T) {
		h := newHarness()
		h.gate.Err = &entities.IncompatibleVersionError{Package: "acme/my-theme", Operator: ">=", Required: "1.4.0.0", Detected: "1.3.0.0"}

		err := h.installer("/srv/app").Install(context.Background(), newPackage("acme/my-theme", nil))
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrIncompatibleVersion))
		assert.Equal(t, []string{"check"}, h.calls)
	})

	t.Run("base failure stops", func(t *testing.T) {
		h := newHarness()
		h.base.InstallErr = errors.New("disk full")

		err := h.installer("/srv/app").Install(context.Background(),
			newPackage("acme/larry", map[string]any{"post-install-script": "echo hi"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.Equal(t, []string{"check", "install"}, h.calls)
	})

	t.Run("declined prompt skips activation", func(t *testing.T) {
		h := newHarness()
		h.prompter.Answer = false

		require.NoError(t, h.installer("/srv/app").Install(context.Background(), newPackage("acme/larry", nil)))
		assert.Len(t, h.prompter.Questions, 1)
		assert.Empty(t, h.config.Activated)
	})

	t.Run("no prompt when not interactive", func(t *testing.T) {
		h := newHarness()
		h.prompter.Interactive = false

		require.NoError(t, h.installer("/srv/app").Install(context.Background(), newPackage("acme/larry", nil)))
		assert.Empty(t, h.prompter.Questions)
		assert.Empty(t, h.config.Activated)
	})

	t.Run("no prompt when config is not writable", func(t *testing.T) {
		h := newHarness()
		h.config.IsWritable = false

		require.NoError(t, h.installer("/srv/app").Install(context.Background(), newPackage("acme/larry", nil)))
		assert.Empty(t, h.prompter.Questions)
	})

	t.Run("no prompter never activates", func(t *testing.T) {
		h := newHarness()
		svc := skin.NewInstaller(values.MustNewHostLayout("/srv/app"), h.base,
			skin.WithVersionGate(h.gate),
			skin.WithConfigActivator(h.config),
			skin.WithHookRunner(h.hooks),
			skin.WithLogger(quiet),
		)

		require.NoError(t, svc.Install(context.Background(), newPackage("acme/larry", nil)))
		assert.Equal(t, []string{"check", "install"}, h.calls)
	})

	t.Run("activation failure is not fatal", func(t *testing.T) {
		h := newHarness()
		h.config.Err = &entities.ConfigError{Kind: entities.ConfigWriteFailed, Path: "/srv/app/config/config.inc.php"}

		err := h.installer("/srv/app").Install(context.Background(),
			newPackage("acme/larry", map[string]any{"post-install-script": "echo hi"}))
		require.NoError(t, err)
		assert.Equal(t, []string{"check", "install", "activate", "script"}, h.calls)
	})

	t.Run("prompt failure is not fatal", func(t *testing.T) {
		h := newHarness()
		h.prompter.Err = errors.New("tty closed")

		require.NoError(t, h.installer("/srv/app").Install(context.Background(), newPackage("acme/larry", nil)))
		assert.Empty(t, h.config.Activated)
	})

	t.Run("command failure is fatal", func(t *testing.T) {
		h := newHarness()
		h.hooks.Err = &entities.CommandFailedError{Command: "exit 2", ExitCode: 2}

		err := h.installer("/srv/app").Install(context.Background(),
			newPackage("acme/larry", map[string]any{"post-install-script": "exit 2"}))
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrCommandFailed))
	})

	t.Run("no script declared", func(t *testing.T) {
		h := newHarness()
		require.NoError(t, h.installer("/srv/app").Install(context.Background(), newPackage("acme/larry", nil)))
		assert.Empty(t, h.hooks.Scripts)
	})
}

func TestInstaller_Update(t *testing.T) {
	t.Parallel()

	t.Run("gates the target and runs its script", func(t *testing.T) {
		h := newHarness()
		initial := newPackage("acme/larry", map[string]any{"post-update-script": "old"})
		target := newPackage("acme/larry", map[string]any{"post-update-script": "new"})

		require.NoError(t, h.installer("/srv/app").Update(context.Background(), initial, target))

		assert.Equal(t, []string{"check", "update", "script"}, h.calls)
		require.Len(t, h.gate.Checked, 1)
		assert.Same(t, target, h.gate.Checked[0])
		assert.Equal(t, []string{"/srv/app/skins/larry", "/srv/app/skins/larry"}, h.base.Paths)
		assert.Equal(t, []string{"new"}, h.hooks.Scripts)
		assert.Empty(t, h.prompter.Questions, "update never prompts")
	})

	t.Run("incompatible target", func(t *testing.T) {
		h := newHarness()
		h.gate.Err = &entities.IncompatibleVersionError{}

		err := h.installer("/srv/app").Update(context.Background(), newPackage("acme/larry", nil), newPackage("acme/larry", nil))
		require.Error(t, err)
		assert.Equal(t, []string{"check"}, h.calls)
	})
}

func TestInstaller_Uninstall(t *testing.T) {
	t.Parallel()

	t.Run("removes then runs script", func(t *testing.T) {
		h := newHarness()
		pkg := newPackage("acme/my-skin", map[string]any{"post-uninstall-script": "cleanup"})

		require.NoError(t, h.installer("/srv/app").Uninstall(context.Background(), pkg))
		assert.Equal(t, []string{"uninstall", "script"}, h.calls)
		assert.Equal(t, []string{"/srv/app/skins/my_skin"}, h.base.Paths)
		assert.Empty(t, h.gate.Checked, "uninstall is not gated")
	})

	t.Run("base failure skips script", func(t *testing.T) {
		h := newHarness()
		h.base.UninstallErr = errors.New("busy")

		err := h.installer("/srv/app").Uninstall(context.Background(),
			newPackage("acme/larry", map[string]any{"post-uninstall-script": "cleanup"}))
		require.Error(t, err)
		assert.Equal(t, []string{"uninstall"}, h.calls)
	})
}

// Wires the real gate, config patcher and hook runner against a host tree.
func TestInstaller_Install_RealHost(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	layout := values.MustNewHostLayout(root)
	require.NoError(t, os.MkdirAll(layout.IncludeDir(), 0o755))
	require.NoError(t, os.WriteFile(layout.IniSetPath(),
		[]byte("<?php\ndefine('RCMAIL_VERSION', '1.4.6');\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Dir(layout.ConfigPath()), 0o755))
	require.NoError(t, os.WriteFile(layout.ConfigPath(),
		[]byte("<?php\n$config['skin'] = 'elastic';\n"), 0o644))

	base := &skin.MockBaseInstaller{}
	prompter := &skin.MockPrompter{Interactive: true, Answer: true}
	svc := skin.NewInstaller(layout, base,
		skin.WithPrompter(prompter),
		skin.WithHookRunner(hooks.NewRunner(layout, hooks.WithOutput(io.Discard, io.Discard), hooks.WithLogger(quiet))),
		skin.WithLogger(quiet),
	)

	pkg := newPackage("acme/my-theme", map[string]any{
		"min-version":         "1.4",
		"post-install-script": "touch installed",
	})
	require.NoError(t, svc.Install(context.Background(), pkg))

	cfg, err := os.ReadFile(layout.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, "<?php\n$config['skin'] = array('my_theme',);\n", string(cfg))
	assert.FileExists(t, filepath.Join(root, "installed"))

	t.Run("too old host", func(t *testing.T) {
		old := newPackage("acme/my-theme", map[string]any{"min-version": "1.5"})
		err := svc.Install(context.Background(), old)
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrIncompatibleVersion))
	})
}
