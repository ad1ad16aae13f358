// Package attributions loads credit entries (fonts, icons, images) from Markdown files
// so templates can render an attributions page.
package attributions

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// DefaultCategory is used for entries without a category field.
const DefaultCategory = "General"

// Item is a single attribution entry.
type Item struct {
	Category    string
	Title       string
	Link        string
	FilePath    string // relative to the attributions directory, slash separated
	Body        string // rendered HTML
	Fingerprint string
}

// Map returns the template representation of the item.
func (i Item) Map() map[string]string {
	return map[string]string{
		"category":    i.Category,
		"title":       i.Title,
		"link":        i.Link,
		"filePath":    i.FilePath,
		"body":        i.Body,
		"fingerprint": i.Fingerprint,
	}
}

// Category groups items sharing a category name.
type Category struct {
	Name  string
	Items []Item
}

// Load reads every *.md file below dir. A missing directory yields no items.
// Items are sorted by category, then title, then path.
func Load(dir string) ([]Item, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat attributions dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("attributions path %s is not a directory", dir)
	}

	var items []Item
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		item, err := loadItem(path, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Category != items[b].Category {
			return items[a].Category < items[b].Category
		}
		if items[a].Title != items[b].Title {
			return items[a].Title < items[b].Title
		}
		return items[a].FilePath < items[b].FilePath
	})
	return items, nil
}

func loadItem(path, rel string) (Item, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Item{}, fmt.Errorf("read %s: %w", rel, err)
	}
	doc, err := frontmatter.Parse(content)
	if err != nil {
		return Item{}, fmt.Errorf("parse front matter of %s: %w", rel, err)
	}

	item := Item{
		Category: strings.TrimSpace(doc.String("category")),
		Title:    strings.TrimSpace(doc.String("title")),
		Link:     strings.TrimSpace(doc.String("link")),
		FilePath: rel,
	}
	if item.Category == "" {
		item.Category = DefaultCategory
	}
	if item.Title == "" {
		base := filepath.Base(rel)
		item.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if item.Body, err = render.MarkdownToHTML(string(doc.Body)); err != nil {
		return Item{}, fmt.Errorf("render %s: %w", rel, err)
	}
	if item.Fingerprint, err = fingerprint(doc.Fields, doc.Body); err != nil {
		return Item{}, fmt.Errorf("fingerprint %s: %w", rel, err)
	}
	return item, nil
}

// fingerprint hashes the canonical front matter (without any stored fingerprint) and body.
func fingerprint(fields map[string]any, body []byte) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField {
			continue
		}
		hashed[k] = v
	}
	fm, err := frontmatter.SerializeYAML(hashed)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(fm), "\n"), string(body)), nil
}

// Group returns items bucketed by category, preserving the order of items.
func Group(items []Item) []Category {
	var out []Category
	index := map[string]int{}
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(out)
			index[item.Category] = i
			out = append(out, Category{Name: item.Category})
		}
		out[i].Items = append(out[i].Items, item)
	}
	return out
}

// Maps converts items to their template representation.
func Maps(items []Item) []map[string]string {
	out := make([]map[string]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Map())
	}
	return out
}

// CategoryMaps converts grouped categories for templates: each entry has "name" and "items".
func CategoryMaps(categories []Category) []map[string]any {
	out := make([]map[string]any, 0, len(categories))
	for _, c := range categories {
		out = append(out, map[string]any{"name": c.Name, "items": Maps(c.Items)})
	}
	return out
}
