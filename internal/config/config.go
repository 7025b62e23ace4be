package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// DefaultFilename is the configuration file looked up when none is given.
const DefaultFilename = "_content.yml"

// Config is the whole site configuration: site metadata, the external menu,
// the table of contents tree and pipeline settings.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Footer     FooterConfig     `yaml:"footer,omitempty"`
	Menu       []MenuItem       `yaml:"menu,omitempty"`
	TOC        []TOCEntry       `yaml:"toc"`
	Paths      PathsConfig      `yaml:"paths,omitempty"`
	Conversion ConversionConfig `yaml:"conversion,omitempty"`
	Verify     VerifyConfig     `yaml:"verify,omitempty"`
	Search     SearchConfig     `yaml:"search,omitempty"`
	Notify     NotifyConfig     `yaml:"notify,omitempty"`
	Metrics    MetricsConfig    `yaml:"metrics,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`

	// path the configuration was loaded from; relative paths resolve
	// against its directory.
	path string
}

// SiteConfig is the site block rendered into every page.
type SiteConfig struct {
	Title       string      `yaml:"title"`
	Author      string      `yaml:"author,omitempty"`
	Description string      `yaml:"description,omitempty"`
	Logo        string      `yaml:"logo,omitempty"`
	Favicon     string      `yaml:"favicon,omitempty"`
	Language    string      `yaml:"language,omitempty"`
	GitHubURL   string      `yaml:"github_url,omitempty"`
	Header      string      `yaml:"header,omitempty"`
	Theme       ThemeConfig `yaml:"theme,omitempty"`
	BaseURL     string      `yaml:"base_url,omitempty"`
}

// ThemeConfig selects the colour scheme names exposed to templates.
type ThemeConfig struct {
	Default string `yaml:"default,omitempty"`
	Light   string `yaml:"light,omitempty"`
	Dark    string `yaml:"dark,omitempty"`
}

// FooterConfig holds the footer text.
type FooterConfig struct {
	Text string `yaml:"text,omitempty"`
}

// ConversionConfig controls the conversion stage.
type ConversionConfig struct {
	Enabled *bool         `yaml:"enabled,omitempty"`
	Pandoc  string        `yaml:"pandoc,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// Matrix overrides the default source to target capability table.
	// Keys and values are extensions such as ".md" or "pdf".
	Matrix map[string][]string `yaml:"matrix,omitempty"`
}

// VerifyConfig controls the accessibility verifier.
type VerifyConfig struct {
	Enabled     bool          `yaml:"enabled,omitempty"`
	Mode        VerifyMode    `yaml:"mode,omitempty"`
	Checker     CheckerKind   `yaml:"checker,omitempty"`
	Pa11y       string        `yaml:"pa11y,omitempty"`
	Pa11yConfig string        `yaml:"pa11y_config,omitempty"`
	WCAGLevel   string        `yaml:"wcag_level,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	Summary     bool          `yaml:"summary,omitempty"`
}

// SearchConfig controls the full text search index.
type SearchConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// NotifyConfig configures optional NATS notifications.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
	// Retries is the number of publish retries; 0 means the default and a
	// negative value disables retrying.
	Retries    int           `yaml:"retries,omitempty"`
	RetryDelay time.Duration `yaml:"retry_delay,omitempty"`
}

// MetricsConfig configures the Prometheus textfile output.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
	File   string    `yaml:"file,omitempty"`
}

// ConversionEnabled reports whether the conversion stage runs.
func (c *Config) ConversionEnabled() bool { return boolOr(c.Conversion.Enabled, true) }

// SearchEnabled reports whether the search index is built.
func (c *Config) SearchEnabled() bool { return boolOr(c.Search.Enabled, true) }

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string { return c.path }

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Load reads, validates and defaults the configuration at configPath.
// Structural problems (no site block, toc not a list) are fatal config
// errors; nothing is written before they are reported.
func Load(configPath string) (*Config, error) {
	LoadEnv(filepath.Dir(configPath))

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "read configuration").
			Fatal().WithContext("path", configPath).Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(configPath)
	if err != nil {
		abs = configPath
	}
	cfg.path = abs
	return cfg, nil
}

// Parse validates and decodes configuration bytes. Environment expansion
// is the caller's concern.
func Parse(data []byte) (*Config, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "parse configuration yaml").Fatal().Build()
	}
	if err := ValidateStructure(raw); err != nil {
		return nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "decode configuration").Fatal().Build()
	}
	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "apply configuration defaults").Fatal().Build()
	}
	return &cfg, nil
}

// Init writes an example configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}

	example := Config{
		Site: SiteConfig{
			Title:       "My Course Site",
			Author:      "Jane Doe",
			Description: "Lecture notes and exercises",
			Language:    "en",
			Theme:       ThemeConfig{Default: "auto", Light: "light", Dark: "dark"},
		},
		Footer: FooterConfig{Text: "Built with sitebuilder"},
		Menu: []MenuItem{
			{Name: "Source", URL: "https://example.com/repo", Weight: 10},
		},
		TOC: []TOCEntry{
			{Title: "Home", File: "_index.md"},
			{Title: "About", File: "about.md"},
			{Title: "Guides", Children: []TOCEntry{
				{Title: "Guides", File: "guides/guides.md"},
				{Title: "Intro", File: "guides/intro.md"},
			}},
		},
		Verify: VerifyConfig{Checker: CheckerAuto, WCAGLevel: "AA"},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&example); err != nil {
		return fmt.Errorf("marshal example configuration: %w", err)
	}
	if err := os.WriteFile(configPath, buf.Bytes(), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write configuration").
			WithContext("path", configPath).Build()
	}
	return nil
}
