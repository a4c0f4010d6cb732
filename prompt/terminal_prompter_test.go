package prompt_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roundcube/skin-installer/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalPrompter_IsInteractive(t *testing.T) {
	t.Parallel()

	t.Run("regular file is not a terminal", func(t *testing.T) {
		f, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = f.Close() })

		p := prompt.NewTerminalPrompter(prompt.WithInput(f))
		assert.False(t, p.IsInteractive())
	})

	t.Run("closed input", func(t *testing.T) {
		f, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
		require.NoError(t, err)
		require.NoError(t, f.Close())

		p := prompt.NewTerminalPrompter(prompt.WithInput(f))
		assert.False(t, p.IsInteractive())
	})

	t.Run("disabled", func(t *testing.T) {
		p := prompt.NewTerminalPrompter(prompt.WithNonInteractive(true))
		assert.False(t, p.IsInteractive())
	})

	t.Run("dev null is a char device", func(t *testing.T) {
		f, err := os.Open(os.DevNull)
		require.NoError(t, err)
		t.Cleanup(func() { _ = f.Close() })

		assert.True(t, prompt.NewTerminalPrompter(prompt.WithInput(f)).IsInteractive())
		assert.False(t, prompt.NewTerminalPrompter(prompt.WithInput(f), prompt.WithNonInteractive(true)).IsInteractive())
	})
}
