package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roundcube/skin-installer/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const composerJSON = `{
  "name": "acme/my-theme",
  "type": "roundcube-skin",
  "version": "1.2.0",
  "require": {"roundcube/plugin-installer": ">=0.1.3"},
  "extra": {
    "roundcube": {
      "min-version": "1.4",
      "post-install-script": "bin/setup.sh"
    }
  }
}`

func TestJSONManifestParser_Parse(t *testing.T) {
	t.Parallel()

	p := parser.NewJSONManifestParser()

	pkg, err := p.Parse([]byte(composerJSON))
	require.NoError(t, err)
	assert.Equal(t, "acme/my-theme", pkg.Name().String())
	assert.Equal(t, "1.2.0", pkg.Version())
	assert.Equal(t, "roundcube-skin", pkg.Type())

	extra := pkg.Roundcube()
	assert.Equal(t, "1.4", extra.MinVersion)
	assert.Equal(t, "bin/setup.sh", extra.PostInstallScript)
	assert.Empty(t, extra.MaxVersion)
}

func TestJSONManifestParser_Errors(t *testing.T) {
	t.Parallel()

	p := parser.NewJSONManifestParser()

	tests := map[string]string{
		"not json":     `{"name":`,
		"missing name": `{"type":"roundcube-skin"}`,
		"bad name":     `{"name":"../evil"}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := p.Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestJSONManifestParser_DefaultVersion(t *testing.T) {
	t.Parallel()

	pkg, err := parser.NewJSONManifestParser().Parse([]byte(`{"name":"acme/larry","type":"roundcube-skin"}`))
	require.NoError(t, err)
	assert.Equal(t, "dev-main", pkg.Version())
	_, ok := pkg.RawRoundcube()
	assert.False(t, ok)
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, parser.ManifestFile), []byte(composerJSON), 0o644))

	pkg, err := parser.LoadDir(parser.NewJSONManifestParser(), dir)
	require.NoError(t, err)
	assert.Equal(t, dir, pkg.SourceDir())

	_, err = parser.LoadDir(parser.NewJSONManifestParser(), t.TempDir())
	require.Error(t, err)
}
