package model

import (
	"path"
	"strings"
)

// Format is a normalized file extension including the leading dot.
type Format string

const (
	FormatMarkdown Format = ".md"
	FormatMarp     Format = ".marp"
	FormatText     Format = ".txt"
	FormatTeX      Format = ".tex"
	FormatPDF      Format = ".pdf"
	FormatDOCX     Format = ".docx"
	FormatPPT      Format = ".ppt"
	FormatJupyter  Format = ".jupyter"
	FormatNotebook Format = ".ipynb"
	FormatHTML     Format = ".html"
)

// ParseFormat normalizes "PDF", "pdf" and ".pdf" to FormatPDF.
func ParseFormat(s string) Format {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, ".") {
		s = "." + s
	}
	return Format(s)
}

// FormatOf returns the format of a file path.
func FormatOf(p string) Format {
	return ParseFormat(path.Ext(p))
}

// Label is the human readable download label used on rendered pages.
func (f Format) Label() string {
	switch f {
	case FormatPDF:
		return "PDF"
	case FormatDOCX:
		return "Word"
	case FormatTeX:
		return "LaTeX"
	case FormatMarkdown:
		return "Markdown"
	case FormatText:
		return "Plain Text"
	case FormatNotebook, FormatJupyter:
		return "Notebook"
	case FormatPPT:
		return "Slides"
	case FormatMarp:
		return "Marp"
	default:
		return strings.ToUpper(strings.TrimPrefix(string(f), "."))
	}
}

// CapabilityFlags records which target formats a content node may be
// converted to, derived from the capability matrix for its source format.
type CapabilityFlags struct {
	Markdown bool
	Text     bool
	TeX      bool
	PDF      bool
	DOCX     bool
	PPT      bool
	Jupyter  bool
	Notebook bool
}

// Set marks target as enabled or disabled. Unknown formats are ignored.
func (c *CapabilityFlags) Set(target Format, enabled bool) {
	if p := c.field(target); p != nil {
		*p = enabled
	}
}

// Has reports whether target is enabled.
func (c CapabilityFlags) Has(target Format) bool {
	if p := c.field(target); p != nil {
		return *p
	}
	return false
}

func (c *CapabilityFlags) field(f Format) *bool {
	switch f {
	case FormatMarkdown:
		return &c.Markdown
	case FormatText:
		return &c.Text
	case FormatTeX:
		return &c.TeX
	case FormatPDF:
		return &c.PDF
	case FormatDOCX:
		return &c.DOCX
	case FormatPPT:
		return &c.PPT
	case FormatJupyter:
		return &c.Jupyter
	case FormatNotebook:
		return &c.Notebook
	}
	return nil
}
