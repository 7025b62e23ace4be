package convert

import (
	"slices"
	"sort"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// Matrix maps a source format to the target formats it may be converted to.
type Matrix map[model.Format][]model.Format

// Targets lists every format a capability row is kept for.
var Targets = []model.Format{
	model.FormatText, model.FormatMarkdown, model.FormatMarp, model.FormatTeX,
	model.FormatPDF, model.FormatDOCX, model.FormatPPT, model.FormatJupyter,
	model.FormatNotebook,
}

// DefaultMatrix returns the built-in capability table.
func DefaultMatrix() Matrix {
	return Matrix{
		model.FormatMarkdown: {model.FormatText, model.FormatMarkdown, model.FormatMarp, model.FormatTeX,
			model.FormatPDF, model.FormatDOCX, model.FormatPPT, model.FormatJupyter},
		model.FormatMarp: {model.FormatText, model.FormatMarkdown, model.FormatMarp, model.FormatPDF,
			model.FormatDOCX, model.FormatPPT},
		model.FormatTeX: {model.FormatText, model.FormatMarkdown, model.FormatTeX, model.FormatPDF,
			model.FormatDOCX},
		model.FormatNotebook: {model.FormatText, model.FormatMarkdown, model.FormatTeX, model.FormatPDF,
			model.FormatDOCX, model.FormatJupyter, model.FormatNotebook},
		model.FormatJupyter: {model.FormatMarkdown, model.FormatTeX, model.FormatPDF, model.FormatDOCX,
			model.FormatJupyter, model.FormatNotebook},
		model.FormatDOCX: {model.FormatText, model.FormatMarkdown, model.FormatTeX, model.FormatPDF,
			model.FormatDOCX},
		model.FormatPPT:  {model.FormatText, model.FormatPPT},
		model.FormatText: {model.FormatText, model.FormatMarkdown, model.FormatTeX, model.FormatDOCX, model.FormatPDF},
	}
}

// MatrixWith returns the default matrix with the configured rows replacing
// the built-in ones. An empty list disables every target for that source.
func MatrixWith(overrides map[string][]string) Matrix {
	m := DefaultMatrix()
	for src, targets := range overrides {
		from := model.ParseFormat(src)
		if from == "" {
			continue
		}
		row := make([]model.Format, 0, len(targets))
		for _, t := range targets {
			if to := model.ParseFormat(t); to != "" && !slices.Contains(row, to) {
				row = append(row, to)
			}
		}
		m[from] = row
	}
	return m
}

// Enabled reports whether from may be converted to to.
func (m Matrix) Enabled(from, to model.Format) bool {
	return slices.Contains(m[from], to)
}

// Flags returns the per-node capability flags for a source format.
func (m Matrix) Flags(source model.Format) model.CapabilityFlags {
	var f model.CapabilityFlags
	for _, t := range m[source] {
		f.Set(t, true)
	}
	return f
}

// Capabilities expands the matrix into one row per (source, target) pair,
// disabled pairs included, ordered by source then target.
func (m Matrix) Capabilities() []model.ConversionCapability {
	sources := make([]model.Format, 0, len(m))
	for src := range m {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	targets := slices.Clone(Targets)
	for _, row := range m {
		for _, t := range row {
			if !slices.Contains(targets, t) {
				targets = append(targets, t)
			}
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	out := make([]model.ConversionCapability, 0, len(sources)*len(targets))
	for _, src := range sources {
		for _, t := range targets {
			out = append(out, model.ConversionCapability{SourceFormat: src, TargetFormat: t, Enabled: m.Enabled(src, t)})
		}
	}
	return out
}
