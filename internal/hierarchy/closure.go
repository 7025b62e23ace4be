package hierarchy

import (
	"cmp"
	"slices"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// Index is a parent to children lookup built once over a node set.
type Index struct {
	nodes    []model.ContentNode
	byOutput map[string][]int
	children map[string][]int
}

// NewIndex indexes nodes by output path and by parent output path.
func NewIndex(nodes []model.ContentNode) *Index {
	x := &Index{
		nodes:    nodes,
		byOutput: make(map[string][]int, len(nodes)),
		children: make(map[string][]int, len(nodes)),
	}
	for i, n := range nodes {
		x.byOutput[n.OutputPath] = append(x.byOutput[n.OutputPath], i)
		if n.ParentOutputPath != "" {
			x.children[n.ParentOutputPath] = append(x.children[n.ParentOutputPath], i)
		}
	}
	for p, idx := range x.children {
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Compare(nodes[a].Order, nodes[b].Order)
		})
		x.children[p] = idx
	}
	return x
}

// Lookup returns the node that owns outputPath. When a section and its
// index page share a path the section is returned.
func (x *Index) Lookup(outputPath string) (model.ContentNode, bool) {
	idx := x.byOutput[outputPath]
	if len(idx) == 0 {
		return model.ContentNode{}, false
	}
	for _, i := range idx {
		if x.nodes[i].ParentOutputPath != outputPath {
			return x.nodes[i], true
		}
	}
	return x.nodes[idx[0]], true
}

// All returns every node stored at outputPath in input order.
func (x *Index) All(outputPath string) []model.ContentNode {
	idx := x.byOutput[outputPath]
	out := make([]model.ContentNode, 0, len(idx))
	for _, i := range idx {
		out = append(out, x.nodes[i])
	}
	return out
}

// Children returns the direct children of parentOutputPath by sibling order.
func (x *Index) Children(parentOutputPath string) []model.ContentNode {
	idx := x.children[parentOutputPath]
	out := make([]model.ContentNode, 0, len(idx))
	for _, i := range idx {
		out = append(out, x.nodes[i])
	}
	return out
}

// Descendants returns the transitive closure of children below
// parentOutputPath. Levels are relative to the seed, which is level 0 and
// not included; rows are ordered by level, then output path. An unknown
// seed yields an empty slice.
//
// The walk is iterative and expands each output path once, so shared
// paths and malformed cycles terminate.
func (x *Index) Descendants(parentOutputPath string) []model.HierarchyRow {
	out := []model.HierarchyRow{}
	if len(x.byOutput[parentOutputPath]) == 0 {
		return out
	}

	expanded := map[string]bool{parentOutputPath: true}
	emitted := map[int]bool{}
	frontier := []string{parentOutputPath}
	for level := 1; len(frontier) > 0; level++ {
		var next []string
		for _, p := range frontier {
			for _, i := range x.children[p] {
				if emitted[i] {
					continue
				}
				emitted[i] = true
				n := x.nodes[i]
				out = append(out, n.Row(level))
				if !expanded[n.OutputPath] {
					expanded[n.OutputPath] = true
					next = append(next, n.OutputPath)
				}
			}
		}
		frontier = next
	}

	slices.SortStableFunc(out, func(a, b model.HierarchyRow) int {
		return cmp.Or(cmp.Compare(a.Level, b.Level), cmp.Compare(a.OutputPath, b.OutputPath))
	})
	return out
}

// Ancestors returns the chain from the root down to the parent of the node
// at outputPath. Row levels are the absolute node levels.
func (x *Index) Ancestors(outputPath string) []model.HierarchyRow {
	cur, ok := x.Lookup(outputPath)
	if !ok {
		return []model.HierarchyRow{}
	}
	var chain []model.HierarchyRow
	seen := map[string]bool{outputPath: true}
	for cur.ParentOutputPath != "" && !seen[cur.ParentOutputPath] {
		seen[cur.ParentOutputPath] = true
		parent, ok := x.Lookup(cur.ParentOutputPath)
		if !ok {
			break
		}
		chain = append(chain, parent.Row(parent.Level))
		cur = parent
	}
	slices.Reverse(chain)
	if chain == nil {
		chain = []model.HierarchyRow{}
	}
	return chain
}

// Roots returns nodes without a parent in sibling order.
func (x *Index) Roots() []model.ContentNode {
	var out []model.ContentNode
	for _, n := range x.nodes {
		if n.IsRoot() {
			out = append(out, n)
		}
	}
	slices.SortStableFunc(out, func(a, b model.ContentNode) int { return cmp.Compare(a.Order, b.Order) })
	return out
}

// Descendants is a convenience wrapper that builds a one-off index.
func Descendants(nodes []model.ContentNode, parentOutputPath string) []model.HierarchyRow {
	return NewIndex(nodes).Descendants(parentOutputPath)
}

// Ancestors is a convenience wrapper that builds a one-off index.
func Ancestors(nodes []model.ContentNode, outputPath string) []model.HierarchyRow {
	return NewIndex(nodes).Ancestors(outputPath)
}
