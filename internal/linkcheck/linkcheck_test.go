package linkcheck

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	doc := `<html><head><link rel="stylesheet" href="css/site.css"><script src="js/app.js"></script></head>
<body><a href="about.html">About</a><a>no href</a><img src=" images/banner.png " alt="b"></body></html>`

	links, err := Extract(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, []Link{
		{URL: "css/site.css", Tag: "link", Attribute: "href"},
		{URL: "js/app.js", Tag: "script", Attribute: "src"},
		{URL: "about.html", Tag: "a", Attribute: "href"},
		{URL: "images/banner.png", Tag: "img", Attribute: "src"},
	}, links)
}

func TestResolve(t *testing.T) {
	base, err := url.Parse("https://example.com")
	require.NoError(t, err)

	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "about.html", want: "about.html", wantOK: true},
		{raw: "/images/a.png?v=1#top", want: "images/a.png", wantOK: true},
		{raw: "https://example.com/legal/", want: "legal/index.html", wantOK: true},
		{raw: "https://example.com", want: "index.html", wantOK: true},
		{raw: "./", want: "index.html", wantOK: true},
		{raw: "https://other.org/a.html"},
		{raw: "//cdn.example.net/x.js"},
		{raw: "mailto:me@example.com"},
		{raw: "tel:123"},
		{raw: "javascript:void(0)"},
		{raw: "data:image/png;base64,AAAA"},
		{raw: "#section"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := resolve(tt.raw, "index.html", base, "")
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_RootURLWithPath(t *testing.T) {
	base, err := url.Parse("https://example.com/site")
	require.NoError(t, err)

	got, ok := resolve("/site/about.html", "index.html", base, "/site")
	require.True(t, ok)
	require.Equal(t, "about.html", got)

	_, ok = resolve("/elsewhere/about.html", "index.html", base, "/site")
	require.False(t, ok)
}

func TestVerify(t *testing.T) {
	out := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(out, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	write("index.html", `<a href="about.html">a</a><a href="missing.html">m</a><img src="/images/banner.png"><a href="legal/">l</a><a href="https://other.org/">x</a>`)
	write("about.html", `<a href="https://example.com/">home</a><link href="css/gone.css">`)
	write("images/banner.png", "png")
	write("legal/index.html", "legal")

	broken, err := Verify(out, []string{"about.html", "index.html"}, "https://example.com")
	require.NoError(t, err)
	require.Equal(t, []BrokenLink{
		{Page: "about.html", URL: "css/gone.css", Target: "css/gone.css"},
		{Page: "index.html", URL: "missing.html", Target: "missing.html"},
	}, broken)
	require.Equal(t, "index.html: missing.html -> missing.html", broken[1].String())
}

func TestVerify_MissingPage(t *testing.T) {
	_, err := Verify(t.TempDir(), []string{"nope.html"}, "https://example.com")
	require.Error(t, err)
}
