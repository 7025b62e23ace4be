package config

import (
	"fmt"
	"strings"
	"time"
)

// DefaultApplier applies defaults for one configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier runs every domain applier in order.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns the applier used by Load.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{appliers: []DefaultApplier{
		siteDefaults{},
		pathDefaults{},
		conversionDefaults{},
		verifyDefaults{},
		notifyDefaults{},
		loggingDefaults{},
	}}
}

func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, a := range c.appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", a.Domain(), err)
		}
	}
	return nil
}

type siteDefaults struct{}

func (siteDefaults) Domain() string { return "site" }

func (siteDefaults) ApplyDefaults(cfg *Config) error {
	if strings.TrimSpace(cfg.Site.Title) == "" {
		cfg.Site.Title = "Documentation"
	}
	if cfg.Site.Language == "" {
		cfg.Site.Language = "en"
	}
	if cfg.Site.Theme.Default == "" {
		cfg.Site.Theme.Default = "auto"
	}
	if cfg.Site.Theme.Light == "" {
		cfg.Site.Theme.Light = "light"
	}
	if cfg.Site.Theme.Dark == "" {
		cfg.Site.Theme.Dark = "dark"
	}
	return nil
}

type pathDefaults struct{}

func (pathDefaults) Domain() string { return "paths" }

func (pathDefaults) ApplyDefaults(cfg *Config) error {
	p := &cfg.Paths
	if p.Content == "" {
		p.Content = "content"
	}
	if p.Build == "" {
		p.Build = "build"
	}
	if p.Database == "" {
		p.Database = "db/sqlite.db"
	}
	if p.Layouts == "" {
		p.Layouts = "layouts"
	}
	if p.Static == "" {
		p.Static = "static"
	}
	if cfg.Search.Dir == "" {
		cfg.Search.Dir = "search.bleve"
	}
	return nil
}

type conversionDefaults struct{}

func (conversionDefaults) Domain() string { return "conversion" }

func (conversionDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Conversion.Pandoc == "" {
		cfg.Conversion.Pandoc = "pandoc"
	}
	if cfg.Conversion.Timeout < 0 {
		cfg.Conversion.Timeout = 0
	} else if cfg.Conversion.Timeout == 0 {
		cfg.Conversion.Timeout = 5 * time.Minute
	}
	return nil
}

type verifyDefaults struct{}

func (verifyDefaults) Domain() string { return "verify" }

func (verifyDefaults) ApplyDefaults(cfg *Config) error {
	v := &cfg.Verify
	v.Mode = NormalizeVerifyMode(string(v.Mode))
	kind, err := ParseCheckerKind(string(v.Checker))
	if err != nil {
		return err
	}
	v.Checker = kind
	if v.Pa11y == "" {
		v.Pa11y = "pa11y"
	}
	if v.WCAGLevel == "" {
		v.WCAGLevel = "AA"
	}
	v.WCAGLevel = strings.ToUpper(v.WCAGLevel)
	if v.Timeout <= 0 {
		v.Timeout = 2 * time.Minute
	}
	return nil
}

type notifyDefaults struct{}

func (notifyDefaults) Domain() string { return "notify" }

func (notifyDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Notify.NATSURL != "" && cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "sitebuilder"
	}
	return nil
}

type loggingDefaults struct{}

func (loggingDefaults) Domain() string { return "logging" }

func (loggingDefaults) ApplyDefaults(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}
