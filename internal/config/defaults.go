package config

import "strings"

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			SourceDirectory:   "content",
			TemplateDirectory: "templates",
			OutputDirectory:   "dist",
			StrictVariables:   true,
			Sitemap:           true,
			VerifyLinks:       true,
		},
		SocialMedia: map[string]string{},
		Overrides:   map[string]any{},
		Attributions: AttributionsConfig{
			Directory: "legal/attributions",
		},
		Logging: LoggingConfig{
			Level:  string(LogLevelInfo),
			Format: string(LogFormatText),
		},
	}
}

// applyDerivedDefaults fills values that depend on other fields.
func (c *Config) applyDerivedDefaults() {
	if c.Site.ShortName == "" {
		c.Site.ShortName = c.Site.Name
	}
	c.Site.RootURL = strings.TrimRight(strings.TrimSpace(c.Site.RootURL), "/")
	if c.SocialMedia == nil {
		c.SocialMedia = map[string]string{}
	}
	if c.Overrides == nil {
		c.Overrides = map[string]any{}
	}
}
