package config

import (
	"net/url"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// Validate checks the configuration for values the build cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Site.Name) == "" {
		return errors.ValidationFailed("site.name", "required")
	}
	if c.Site.RootURL == "" {
		return errors.ValidationFailed("site.root_url", "required")
	}
	u, err := url.Parse(c.Site.RootURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.ValidationFailed("site.root_url", "must be an absolute http(s) URL")
	}

	dirs := []struct {
		field string
		value string
	}{
		{"build.source_directory", c.Build.SourceDirectory},
		{"build.template_directory", c.Build.TemplateDirectory},
		{"build.output_directory", c.Build.OutputDirectory},
	}
	for _, d := range dirs {
		if strings.TrimSpace(d.value) == "" {
			return errors.ValidationFailed(d.field, "required")
		}
	}

	if filepath.Clean(c.SourceDir()) == filepath.Clean(c.TemplateDir()) {
		return errors.ValidationFailed("build.template_directory", "must differ from build.source_directory")
	}

	out := filepath.Clean(c.OutputDir())
	for _, in := range []struct {
		field string
		path  string
	}{
		{"build.source_directory", filepath.Clean(c.SourceDir())},
		{"build.template_directory", filepath.Clean(c.TemplateDir())},
	} {
		if in.path == out {
			return errors.ValidationFailed("build.output_directory", "must differ from "+in.field)
		}
		// The output directory is wiped on every build.
		if isWithin(out, in.path) {
			return errors.ValidationFailed("build.output_directory", "must not contain "+in.field)
		}
	}

	if src := filepath.Clean(c.SourceDir()); isWithin(src, out) && !c.IsBlacklisted(topLevelName(src, out)) {
		return errors.ValidationFailed("build.output_directory", "inside build.source_directory must be listed in build.blacklist")
	}

	for _, name := range c.Build.Blacklist {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return errors.ValidationFailed("build.blacklist", "entries must be plain file or directory names: "+name)
		}
	}

	if err := logLevelNormalizer.Validate(c.Logging.Level); err != nil {
		return errors.ValidationFailed("logging.level", err.Error())
	}
	if err := logFormatNormalizer.Validate(c.Logging.Format); err != nil {
		return errors.ValidationFailed("logging.format", err.Error())
	}
	return nil
}

// isWithin reports whether path lies inside root.
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// topLevelName returns the first path element of path below root.
func topLevelName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	return strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
}

// IsBlacklisted reports whether a top-level source entry is excluded from copying.
func (c *Config) IsBlacklisted(name string) bool {
	for _, b := range c.Build.Blacklist {
		if b == name {
			return true
		}
	}
	return false
}
