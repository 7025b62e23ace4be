package render

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

//go:embed layouts/*.html
var embeddedLayouts embed.FS

// Layout names. Each page layout defines "main" and is executed through
// the shared "baseof" frame.
const (
	LayoutBase    = "baseof.html"
	LayoutSingle  = "single.html"
	LayoutSection = "section.html"
)

// LayoutSource records where a layout was loaded from.
type LayoutSource struct {
	Name string
	Path string // empty for embedded defaults
}

// Layouts holds the parsed page templates.
type Layouts struct {
	single  *template.Template
	section *template.Template
	Sources []LayoutSource
}

// loadLayout returns a user override from dir or the embedded default.
func loadLayout(dir, name string) (string, LayoutSource, error) {
	if dir != "" {
		p := filepath.Join(dir, name)
		// #nosec G304 -- p is a fixed layout name below the configured layouts dir
		if b, err := os.ReadFile(p); err == nil {
			slog.Debug("Loaded layout override", slog.String("layout", name), logfields.Path(p))
			return string(b), LayoutSource{Name: name, Path: p}, nil
		}
	}
	b, err := embeddedLayouts.ReadFile("layouts/" + name)
	if err != nil {
		return "", LayoutSource{}, fmt.Errorf("embedded layout %s missing: %w", name, err)
	}
	return string(b), LayoutSource{Name: name}, nil
}

// LoadLayouts parses baseof plus the single and section layouts, preferring
// files in dir over the embedded defaults.
func LoadLayouts(dir string) (*Layouts, error) {
	base, baseSrc, err := loadLayout(dir, LayoutBase)
	if err != nil {
		return nil, err
	}
	frame, err := template.New(LayoutBase).Funcs(funcs()).Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", baseSrc.Name, err)
	}

	out := &Layouts{Sources: []LayoutSource{baseSrc}}
	for _, name := range []string{LayoutSingle, LayoutSection} {
		body, src, err := loadLayout(dir, name)
		if err != nil {
			return nil, err
		}
		clone, err := frame.Clone()
		if err != nil {
			return nil, err
		}
		t, err := clone.New(name).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", src.Name, err)
		}
		out.Sources = append(out.Sources, src)
		if name == LayoutSingle {
			out.single = t
		} else {
			out.section = t
		}
	}
	return out, nil
}

func (l *Layouts) template(section bool) *template.Template {
	if section {
		return l.section
	}
	return l.single
}
