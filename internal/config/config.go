package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "sitebuilder.yaml"

//go:embed example.yaml
var exampleConfig []byte

// Config represents the site configuration
type Config struct {
	Site         SiteConfig         `yaml:"site"`
	Build        BuildConfig        `yaml:"build"`
	SocialMedia  map[string]string  `yaml:"social_media,omitempty"` // name -> URL, exposed to templates by name
	Overrides    map[string]any     `yaml:"overrides,omitempty"`    // extra template values, highest precedence
	Attributions AttributionsConfig `yaml:"attributions"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Logging      LoggingConfig      `yaml:"logging"`

	// BaseDir is the directory relative paths are resolved against (the config file's directory).
	BaseDir string `yaml:"-"`
	// Path is the absolute path of the loaded configuration file.
	Path string `yaml:"-"`
}

// SiteConfig holds site-wide metadata
type SiteConfig struct {
	Name      string `yaml:"name"`                 // e.g. "My Blog"
	ShortName string `yaml:"short_name,omitempty"` // e.g. "Blog"; defaults to Name
	RootURL   string `yaml:"root_url"`             // e.g. "https://example.com"
}

// BuildConfig controls where content is read from and written to
type BuildConfig struct {
	SourceDirectory   string   `yaml:"source_directory"`
	TemplateDirectory string   `yaml:"template_directory"`
	OutputDirectory   string   `yaml:"output_directory"`
	Blacklist         []string `yaml:"blacklist,omitempty"` // top-level source entries never copied
	StrictVariables   bool     `yaml:"strict_variables"`    // fail on undefined template values
	Sitemap           bool     `yaml:"sitemap"`
	VerifyLinks       bool     `yaml:"verify_links"`
	FailOnBrokenLinks bool     `yaml:"fail_on_broken_links"`
}

// AttributionsConfig locates attribution entries inside the source directory
type AttributionsConfig struct {
	Directory string `yaml:"directory"` // relative to build.source_directory
}

// MetricsConfig controls build metrics export
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"` // prometheus textfile collector output
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	loadEnvFiles(filepath.Dir(configPath))

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to resolve config path").
			WithContext("path", configPath)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(configPath)
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.ConfigParseError(configPath, err)
	}
	cfg.Path = absPath
	cfg.BaseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML configuration over the defaults. Environment variables
// in the content are expanded first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyDerivedDefaults()
	return cfg, nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.New(errors.CategoryConfig, errors.SeverityFatal, "configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.FileSystemError("mkdir", dir, err)
		}
	}

	if err := os.WriteFile(configPath, exampleConfig, 0o600); err != nil {
		return errors.FileSystemError("write", configPath, err)
	}
	return nil
}

// Resolve returns p resolved against the config base directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// SourceDir returns the resolved content directory.
func (c *Config) SourceDir() string { return c.Resolve(c.Build.SourceDirectory) }

// TemplateDir returns the resolved template directory.
func (c *Config) TemplateDir() string { return c.Resolve(c.Build.TemplateDirectory) }

// OutputDir returns the resolved output directory.
func (c *Config) OutputDir() string { return c.Resolve(c.Build.OutputDirectory) }

// AttributionsDir returns the resolved attributions directory (inside the source directory).
func (c *Config) AttributionsDir() string {
	if c.Attributions.Directory == "" {
		return ""
	}
	if filepath.IsAbs(c.Attributions.Directory) {
		return c.Attributions.Directory
	}
	return filepath.Join(c.SourceDir(), c.Attributions.Directory)
}
