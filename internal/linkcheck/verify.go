package linkcheck

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// BrokenLink is an internal link whose target does not exist in the output directory.
type BrokenLink struct {
	Page   string
	URL    string
	Target string
}

func (b BrokenLink) String() string {
	return fmt.Sprintf("%s: %s -> %s", b.Page, b.URL, b.Target)
}

var ignoredSchemes = []string{"mailto:", "tel:", "javascript:", "data:"}

// Verify checks every internal link of the given pages (paths relative to outputDir).
func Verify(outputDir string, pages []string, rootURL string) ([]BrokenLink, error) {
	base, err := url.Parse(rootURL)
	if err != nil {
		return nil, fmt.Errorf("parse root url: %w", err)
	}
	basePath := strings.TrimSuffix(base.Path, "/")

	var broken []BrokenLink
	for _, page := range pages {
		links, err := extractFile(filepath.Join(outputDir, filepath.FromSlash(page)))
		if err != nil {
			return nil, fmt.Errorf("extract links from %s: %w", page, err)
		}
		for _, link := range links {
			target, ok := resolve(link.URL, page, base, basePath)
			if !ok {
				continue
			}
			if !exists(outputDir, target) {
				broken = append(broken, BrokenLink{Page: page, URL: link.URL, Target: target})
			}
		}
	}
	return broken, nil
}

func extractFile(p string) ([]Link, error) {
	f, err := os.Open(filepath.Clean(p))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Extract(f)
}

// resolve maps a link to a slash separated path relative to the output root.
// ok is false for links that are not checked (external, fragment only, special schemes).
func resolve(raw, page string, base *url.URL, basePath string) (string, bool) {
	lower := strings.ToLower(raw)
	for _, scheme := range ignoredSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}
	if strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, "?") {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Host != "" || u.Scheme != "" {
		if !strings.EqualFold(u.Host, base.Host) {
			return "", false
		}
	}

	p := u.Path
	if p == "" {
		if u.Host == "" {
			return "", false
		}
		p = "/"
	}
	trailing := strings.HasSuffix(p, "/")

	if strings.HasPrefix(p, "/") {
		if basePath != "" {
			if p != basePath && !strings.HasPrefix(p, basePath+"/") {
				return "", false
			}
			p = strings.TrimPrefix(p, basePath)
		}
		p = path.Clean(p)
	} else {
		p = path.Join("/", path.Dir(page), p)
	}
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return "index.html", true
	}
	if trailing {
		p = path.Join(p, "index.html")
	}
	return p, true
}

func exists(outputDir, target string) bool {
	full := filepath.Join(outputDir, filepath.FromSlash(target))
	info, err := os.Stat(full)
	if err != nil {
		return false
	}
	if info.IsDir() {
		info, err = os.Stat(filepath.Join(full, "index.html"))
		return err == nil && info.Mode().IsRegular()
	}
	return true
}
