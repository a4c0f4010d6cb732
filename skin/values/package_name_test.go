package values

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewPackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", "roundcube/elastic", "roundcube/elastic", false},
		{"keeps case", "Acme/My-Theme", "Acme/My-Theme", false},
		{"trims whitespace", "  acme/larry  ", "acme/larry", false},
		{"dots allowed", "acme/skin.v2", "acme/skin.v2", false},
		{"empty", "", "", true},
		{"no vendor", "larry", "", true},
		{"empty vendor", "/larry", "", true},
		{"empty name", "acme/", "", true},
		{"three segments", "a/b/c", "", true},
		{"traversal", "acme/..", "", true},
		{"invalid char", "acme/la@rry", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pn, err := NewPackageName(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, pn.String())
			}
		})
	}
}

func Test_PackageName_SkinName(t *testing.T) {
	pn := MustNewPackageName("roundcube/my-skin")
	assert.Equal(t, "roundcube", pn.Vendor())
	assert.Equal(t, "my-skin", pn.ShortName())
	assert.Equal(t, "my_skin", pn.SkinName())

	assert.Equal(t, "a_b_c", MustNewPackageName("x/a-b-c").SkinName())
}

func Test_MustNewPackageName_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNewPackageName("nope")
	})
}

func Test_PackageName_IsEmpty(t *testing.T) {
	assert.True(t, PackageName{}.IsEmpty())
	assert.Equal(t, "", PackageName{}.String())
	assert.False(t, MustNewPackageName("acme/larry").IsEmpty())
}

func Test_PackageName_JSON(t *testing.T) {
	original := MustNewPackageName("acme/my-theme")

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"acme/my-theme"`, string(data))

	var decoded PackageName
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Equals(decoded))

	assert.Error(t, json.Unmarshal([]byte(`"broken"`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`42`), &decoded))
}
