package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var markdown = goldmark.New()

// MarkdownToHTML converts Markdown source to HTML.
func MarkdownToHTML(src string) (string, error) {
	var sb strings.Builder
	if err := markdown.Convert([]byte(src), &sb); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return sb.String(), nil
}

func (e *Environment) funcs() template.FuncMap {
	caser := cases.Title(language.English)
	return template.FuncMap{
		"url":      e.url,
		"asset":    e.asset,
		"markdown": MarkdownToHTML,
		"title":    caser.String,
		"lower":    strings.ToLower,
		"upper":    strings.ToUpper,
		"join":     func(sep string, items []string) string { return strings.Join(items, sep) },
		"year":     func() int { return e.opts.BuildTime.Year() },
	}
}

// url joins a site-relative path onto the root URL.
func (e *Environment) url(path string) string {
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return e.opts.RootURL + "/"
	}
	return e.opts.RootURL + "/" + path
}

// asset is url with a cache busting query parameter.
func (e *Environment) asset(path string) string {
	u := e.url(path)
	if e.opts.CacheVersion == "" {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "v=" + e.opts.CacheVersion
}
