package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

func TestUpdate_RewritesNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.webmanifest")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"old","short_name":"o","icons":[{"src":"/a.png","sizes":"192x192"}],"display":"standalone"}`), 0o600))

	updated, err := Update(path, "My Website", "Website")
	require.NoError(t, err)
	require.True(t, updated)

	m, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, "My Website", m.String("name"))
	require.Equal(t, "Website", m.String("short_name"))
	require.Equal(t, "standalone", m.String("display"))
	require.JSONEq(t, `[{"src":"/a.png","sizes":"192x192"}]`, string(m["icons"]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "\n  \"name\": \"My Website\"")
}

func TestUpdate_MissingFile(t *testing.T) {
	updated, err := Update(filepath.Join(t.TempDir(), "site.webmanifest"), "a", "b")
	require.NoError(t, err)
	require.False(t, updated)
}

func TestUpdate_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.webmanifest")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := Update(path, "a", "b")
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryValidation))
}

func TestUpdate_NotAnObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.webmanifest")
	require.NoError(t, os.WriteFile(path, []byte(`null`), 0o600))

	_, err := Update(path, "a", "b")
	require.Error(t, err)
}

func TestEncode_DoesNotEscapeHTML(t *testing.T) {
	m := WebManifest{}
	require.NoError(t, m.SetString("name", "Tom & Jerry"))

	out, err := m.Encode()
	require.NoError(t, err)
	require.Equal(t, "{\n  \"name\": \"Tom & Jerry\"\n}\n", string(out))
}

func TestUpdate_KeepsAmpersandLiteral(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.webmanifest")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"old"}`), 0o600))

	_, err := Update(path, "Tom & Jerry", "<T&J>")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"name": "Tom & Jerry"`)
	require.Contains(t, string(data), `"short_name": "<T&J>"`)
	require.NotContains(t, string(data), `\u0026`)
}
