// Package render owns the template environment used to turn content pages into HTML.
//
// Templates are looked up through an ordered search path. The template directory comes
// first so a layout there shadows a file with the same name in the content directory.
package render

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Options configures an Environment.
type Options struct {
	TemplateDir     string
	SourceDir       string
	RootURL         string
	CacheVersion    string
	BuildTime       time.Time
	StrictVariables bool
}

// Environment is a parsed set of shared templates plus the search path for pages.
// It is built once per build and is not safe for concurrent Render calls.
type Environment struct {
	opts       Options
	search     []string
	missingKey string
	shared     *template.Template
	names      []string
	skipped    []string
}

// NewEnvironment parses every shared template reachable through the search path.
func NewEnvironment(opts Options) (*Environment, error) {
	env := &Environment{
		opts:   opts,
		search: []string{opts.TemplateDir, opts.SourceDir},
	}

	env.missingKey = "missingkey=default"
	if opts.StrictVariables {
		env.missingKey = "missingkey=error"
	}
	env.shared = template.New("").Funcs(env.funcs()).Option(env.missingKey)

	seen := map[string]bool{}
	templates, err := collect(opts.TemplateDir, true)
	if err != nil {
		return nil, err
	}
	fragments, err := collect(opts.SourceDir, false)
	if err != nil {
		return nil, err
	}

	for _, group := range []struct {
		root    string
		names   []string
		content bool
	}{{opts.TemplateDir, templates, false}, {opts.SourceDir, fragments, true}} {
		for _, name := range group.names {
			if seen[name] {
				continue
			}
			seen[name] = true
			if err := env.parseShared(group.root, name); err != nil {
				if !group.content {
					return nil, err
				}
				// Content fragments may be plain static HTML with foreign {{ }} markup.
				slog.Warn("Content fragment is not a valid template, it will only be copied",
					logfields.Template(name), logfields.Error(err))
				env.skipped = append(env.skipped, name)
				continue
			}
			env.names = append(env.names, name)
		}
	}
	sort.Strings(env.names)
	return env, nil
}

// Templates returns the names of all shared templates in sorted order.
func (e *Environment) Templates() []string {
	return append([]string(nil), e.names...)
}

// Skipped returns the content fragments that failed to parse and are not available to pages.
func (e *Environment) Skipped() []string {
	return append([]string(nil), e.skipped...)
}

// Render executes the named page with data and returns the output.
func (e *Environment) Render(name string, data any) (string, error) {
	path, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", sberrors.TemplateError(name, err)
	}

	set, err := e.shared.Clone()
	if err != nil {
		return "", sberrors.TemplateError(name, err)
	}
	// Clone does not carry options over.
	set.Option(e.missingKey)
	page, err := set.New(name).Parse(string(content))
	if err != nil {
		return "", sberrors.TemplateError(name, err)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return "", sberrors.TemplateError(name, err)
	}
	return buf.String(), nil
}

// lookup resolves name against the search path, first match wins.
func (e *Environment) lookup(name string) (string, error) {
	clean := filepath.FromSlash(name)
	if !filepath.IsLocal(clean) {
		return "", sberrors.TemplateNotFound(name)
	}
	for _, dir := range e.search {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, clean)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", sberrors.TemplateNotFound(name)
}

func (e *Environment) parseShared(root, name string) error {
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	if err != nil {
		return sberrors.TemplateError(name, err)
	}
	if _, err := e.shared.New(name).Parse(string(content)); err != nil {
		return sberrors.TemplateError(name, err)
	}
	return nil
}

// collect lists *.html files below root as slash separated names. Top-level files are
// included only when includeTop is set; content pages at the top level are rendered per page.
func collect(root string, includeTop bool) ([]string, error) {
	if root == "" {
		return nil, nil
	}
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, sberrors.FileSystemError("stat", root, err)
	}
	if !info.IsDir() {
		return nil, sberrors.FileSystemError("stat", root, fmt.Errorf("not a directory"))
	}

	var names []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if !includeTop && !strings.ContainsRune(rel, filepath.Separator) {
			return nil
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, sberrors.FileSystemError("walk", root, err)
	}
	sort.Strings(names)
	return names, nil
}
