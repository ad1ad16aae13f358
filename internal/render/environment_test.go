package render

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newTestEnv(t *testing.T, strict bool) (*Environment, string, string) {
	t.Helper()
	root := t.TempDir()
	templates := filepath.Join(root, "templates")
	content := filepath.Join(root, "content")

	writeFile(t, filepath.Join(templates, "page.html"),
		`<title>{{.siteName}}</title>{{block "main" .}}default{{end}}{{template "legal/footer.html" .}}`)
	writeFile(t, filepath.Join(content, "legal", "footer.html"), `<footer>{{.year}}</footer>`)
	writeFile(t, filepath.Join(content, "index.html"), `{{define "main"}}<h1>{{.pagePath}}</h1>{{end}}{{template "page.html" .}}`)
	writeFile(t, filepath.Join(content, "about.html"), `{{.missing}}`)

	env, err := NewEnvironment(Options{
		TemplateDir:     templates,
		SourceDir:       content,
		RootURL:         "https://example.com",
		CacheVersion:    "240102030405",
		BuildTime:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		StrictVariables: strict,
	})
	require.NoError(t, err)
	return env, templates, content
}

func TestRender_PageWithLayoutAndFragment(t *testing.T) {
	env, _, _ := newTestEnv(t, true)

	out, err := env.Render("index.html", map[string]any{"siteName": "My Site", "pagePath": "index.html", "year": 2024})
	require.NoError(t, err)
	require.Equal(t, "<title>My Site</title><h1>index.html</h1><footer>2024</footer>", out)
}

func TestRender_PagesDoNotLeakBlocks(t *testing.T) {
	env, _, content := newTestEnv(t, true)
	writeFile(t, filepath.Join(content, "plain.html"), `{{template "page.html" .}}`)

	_, err := env.Render("index.html", map[string]any{"siteName": "S", "pagePath": "index.html", "year": 1})
	require.NoError(t, err)

	out, err := env.Render("plain.html", map[string]any{"siteName": "S", "year": 1})
	require.NoError(t, err)
	require.Equal(t, "<title>S</title>default<footer>1</footer>", out)
}

func TestRender_StrictVariables(t *testing.T) {
	env, _, _ := newTestEnv(t, true)

	_, err := env.Render("about.html", map[string]any{})
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryTemplate))
}

func TestRender_LenientVariables(t *testing.T) {
	env, _, _ := newTestEnv(t, false)

	out, err := env.Render("about.html", map[string]any{})
	require.NoError(t, err)
	require.Equal(t, "<no value>", out)
}

func TestRender_TemplateDirShadowsSource(t *testing.T) {
	root := t.TempDir()
	templates := filepath.Join(root, "templates")
	content := filepath.Join(root, "content")
	writeFile(t, filepath.Join(templates, "index.html"), "from templates")
	writeFile(t, filepath.Join(content, "index.html"), "from content")

	env, err := NewEnvironment(Options{TemplateDir: templates, SourceDir: content})
	require.NoError(t, err)

	out, err := env.Render("index.html", nil)
	require.NoError(t, err)
	require.Equal(t, "from templates", out)
}

func TestRender_UnknownTemplate(t *testing.T) {
	env, _, _ := newTestEnv(t, true)

	_, err := env.Render("nope.html", nil)
	require.Error(t, err)
	sbe, ok := sberrors.As(err)
	require.True(t, ok)
	require.Equal(t, "template not found", sbe.Message)

	_, err = env.Render("../escape.html", nil)
	require.Error(t, err)
}

func TestNewEnvironment_ParseError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "templates", "broken.html"), "{{ if }")

	_, err := NewEnvironment(Options{TemplateDir: filepath.Join(root, "templates"), SourceDir: filepath.Join(root, "content")})
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryTemplate))
}

func TestNewEnvironment_SkipsForeignMarkupInContent(t *testing.T) {
	root := t.TempDir()
	templates := filepath.Join(root, "templates")
	content := filepath.Join(root, "content")
	writeFile(t, filepath.Join(templates, "page.html"), `<main>{{.title}}</main>`)
	writeFile(t, filepath.Join(content, "vendor", "widget.html"), `<div id="app">{{ message | upper }}</div>`)
	writeFile(t, filepath.Join(content, "index.html"), `{{template "page.html" .}}`)

	env, err := NewEnvironment(Options{TemplateDir: templates, SourceDir: content, StrictVariables: true})
	require.NoError(t, err)
	require.Equal(t, []string{"vendor/widget.html"}, env.Skipped())
	require.Equal(t, []string{"page.html"}, env.Templates())

	out, err := env.Render("index.html", map[string]any{"title": "Home"})
	require.NoError(t, err)
	require.Equal(t, "<main>Home</main>", out)
}

func TestRender_StrictVariablesOnNestedLayout(t *testing.T) {
	env, _, _ := newTestEnv(t, true)

	_, err := env.Render("index.html", map[string]any{"pagePath": "index.html", "year": 1})
	require.Error(t, err)
	require.Contains(t, err.Error(), `map has no entry for key "siteName"`)
}

func TestTemplates_ListsSharedNames(t *testing.T) {
	env, _, _ := newTestEnv(t, true)

	require.Equal(t, []string{"legal/footer.html", "page.html"}, env.Templates())
}
