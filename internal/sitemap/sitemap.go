// Package sitemap writes a sitemaps.org sitemap for the rendered pages.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

// Namespace is the sitemaps.org 0.9 schema namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URLSet is the document root.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URL is a single sitemap entry.
type URL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Build creates the sitemap for pages (slash separated paths relative to the site root).
// index.html files map to their directory URL with a trailing slash.
func Build(rootURL string, pages []string, lastmod time.Time) URLSet {
	root := strings.TrimSuffix(rootURL, "/")
	mod := ""
	if !lastmod.IsZero() {
		mod = lastmod.UTC().Format("2006-01-02")
	}

	locs := make([]string, 0, len(pages))
	for _, p := range pages {
		locs = append(locs, Location(root, p))
	}
	sort.Strings(locs)

	set := URLSet{Xmlns: Namespace}
	for i, loc := range locs {
		if i > 0 && locs[i-1] == loc {
			continue
		}
		set.URLs = append(set.URLs, URL{Loc: loc, LastMod: mod})
	}
	return set
}

// Location returns the public URL of page.
func Location(root, page string) string {
	page = strings.TrimPrefix(path.Clean("/"+page), "/")
	switch {
	case page == "index.html" || page == "":
		return root + "/"
	case path.Base(page) == "index.html":
		return root + "/" + path.Dir(page) + "/"
	default:
		return root + "/" + page
	}
}

// Encode renders the sitemap as indented XML with a declaration.
func (s URLSet) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Write builds and atomically writes the sitemap to dest. It returns the number of entries.
func Write(dest, rootURL string, pages []string, lastmod time.Time) (int, error) {
	set := Build(rootURL, pages, lastmod)
	data, err := set.Encode()
	if err != nil {
		return 0, err
	}
	if err := atomic.WriteFile(dest, bytes.NewReader(data)); err != nil {
		return 0, fmt.Errorf("write sitemap: %w", err)
	}
	return len(set.URLs), nil
}
