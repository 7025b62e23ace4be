package config

import (
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// TOCEntry is one node of the table of contents tree. An entry names a
// source file, groups children as a section, or both.
type TOCEntry struct {
	File        string     `yaml:"file,omitempty"`
	Title       string     `yaml:"title,omitempty"`
	Slug        string     `yaml:"slug,omitempty"`
	MenuContext string     `yaml:"menu_context,omitempty"`
	Children    []TOCEntry `yaml:"children,omitempty"`
}

// HasFile reports whether the entry is backed by a source document.
func (e TOCEntry) HasFile() bool { return strings.TrimSpace(e.File) != "" }

// IsSection reports whether the entry is a pure grouping.
func (e TOCEntry) IsSection() bool { return !e.HasFile() && len(e.Children) > 0 }

// MenuItem is a flat, externally defined navigation entry.
type MenuItem struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Weight int    `yaml:"weight,omitempty"`
}

// UnmarshalYAML accepts any scalar for weight and coerces it with
// ParseWeight so a malformed weight never aborts loading.
func (m *MenuItem) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name   string    `yaml:"name"`
		URL    string    `yaml:"url"`
		Weight yaml.Node `yaml:"weight"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	m.Name = raw.Name
	m.URL = raw.URL
	m.Weight = ParseWeight(raw.Weight.Value)
	return nil
}

// ParseWeight coerces a weight or order value to an int. Empty,
// non-numeric and out of range values yield 0; fractions are truncated.
func ParseWeight(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

// CountEntries returns the number of entries in the tree.
func CountEntries(entries []TOCEntry) int {
	n := 0
	stack := append([]TOCEntry(nil), entries...)
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		stack = append(stack, e.Children...)
	}
	return n
}
