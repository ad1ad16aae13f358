package attributions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/inful/mdfp"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_MissingDirectory(t *testing.T) {
	items, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestLoad_SortsAndDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "inter.md"), "---\ncategory: Fonts\ntitle: Inter\nlink: https://rsms.me/inter/\n---\nLicensed under the *OFL*.\n")
	writeFile(t, filepath.Join(dir, "icons", "feather.md"), "---\ncategory: Icons\ntitle: Feather\n---\nMIT\n")
	writeFile(t, filepath.Join(dir, "banner.md"), "Photo by someone.\n")
	writeFile(t, filepath.Join(dir, "abel.md"), "---\ncategory: Fonts\ntitle: Abel\n---\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	items, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, items, 4)

	var titles []string
	for _, item := range items {
		titles = append(titles, item.Category+"/"+item.Title)
	}
	require.Equal(t, []string{"Fonts/Abel", "Fonts/Inter", "General/banner", "Icons/Feather"}, titles)

	inter := items[1]
	require.Equal(t, "https://rsms.me/inter/", inter.Link)
	require.Equal(t, "inter.md", inter.FilePath)
	require.Equal(t, "<p>Licensed under the <em>OFL</em>.</p>\n", inter.Body)
	require.NotEmpty(t, inter.Fingerprint)
	require.Equal(t, "icons/feather.md", items[3].FilePath)
}

func TestLoad_InvalidFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.md"), "---\ntitle: x\n")

	_, err := Load(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad.md")
}

func TestFingerprint_IgnoresStoredFingerprint(t *testing.T) {
	a, err := fingerprint(map[string]any{"title": "Inter"}, []byte("body"))
	require.NoError(t, err)
	b, err := fingerprint(map[string]any{"title": "Inter", mdfp.FingerprintField: "stale"}, []byte("body"))
	require.NoError(t, err)
	c, err := fingerprint(map[string]any{"title": "Inter"}, []byte("changed"))
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestItemMap(t *testing.T) {
	m := Item{Category: "Fonts", Title: "Inter", Link: "https://rsms.me/inter/", FilePath: "inter.md"}.Map()

	require.Equal(t, "Fonts", m["category"])
	require.Equal(t, "Inter", m["title"])
	require.Equal(t, "https://rsms.me/inter/", m["link"])
	require.Equal(t, "inter.md", m["filePath"])
}

func TestGroup(t *testing.T) {
	items := []Item{
		{Category: "Fonts", Title: "Abel"},
		{Category: "Fonts", Title: "Inter"},
		{Category: "Icons", Title: "Feather"},
	}

	groups := Group(items)
	require.Len(t, groups, 2)
	require.Equal(t, "Fonts", groups[0].Name)
	require.Len(t, groups[0].Items, 2)
	require.Equal(t, "Icons", groups[1].Name)

	maps := CategoryMaps(groups)
	require.Equal(t, "Fonts", maps[0]["name"])
	require.Len(t, maps[0]["items"], 2)
}
