package model

import "strings"

// MimeSection is the mime type recorded for auto-built section index nodes.
const MimeSection = "section"

// DefaultMenuContext is the context assigned when no ancestor names one.
const DefaultMenuContext = "main"

// ContentNode is one resolved entry of the table of contents: a page backed
// by a source file or an auto-built section index.
type ContentNode struct {
	ID               int64
	Title            string
	SourcePath       string // empty for sections
	OutputPath       string // relative to the build root, slash separated
	IsAutobuilt      bool
	MimeType         string
	ParentOutputPath string // empty for roots
	Slug             string
	Order            int
	Level            int
	RelativeLink     string
	MenuContext      string
	Capabilities     CapabilityFlags
}

// IsRoot reports whether the node has no parent.
func (n ContentNode) IsRoot() bool { return n.ParentOutputPath == "" }

// IsSection reports whether the node is an auto-built grouping.
func (n ContentNode) IsSection() bool { return n.IsAutobuilt && n.SourcePath == "" }

// IsSectionIndex reports whether the page lives at <dir>/index.html below
// the site root.
func (n ContentNode) IsSectionIndex() bool {
	return strings.HasSuffix(n.OutputPath, "/index.html")
}

// SourceFormat returns the format of the backing source file.
func (n ContentNode) SourceFormat() Format {
	if n.SourcePath == "" {
		return ""
	}
	return FormatOf(n.SourcePath)
}

// DedupKey identifies duplicate table of contents entries.
func (n ContentNode) DedupKey() DedupKey {
	return DedupKey{SourcePath: n.SourcePath, OutputPath: n.OutputPath, Title: n.Title}
}

// DedupKey is the (source_path, output_path, title) triple.
type DedupKey struct {
	SourcePath string
	OutputPath string
	Title      string
}

// HierarchyRow is the projection returned by descendant and ancestor
// queries. Level is relative to the queried node.
type HierarchyRow struct {
	ID               int64
	Title            string
	OutputPath       string
	ParentOutputPath string
	Slug             string
	Level            int
}

// Row projects n onto a HierarchyRow with the given relative level.
func (n ContentNode) Row(level int) HierarchyRow {
	return HierarchyRow{
		ID:               n.ID,
		Title:            n.Title,
		OutputPath:       n.OutputPath,
		ParentOutputPath: n.ParentOutputPath,
		Slug:             n.Slug,
		Level:            level,
	}
}
