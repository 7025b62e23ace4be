package hierarchy

import (
	"slices"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// Dedupe keeps the first node for every (source_path, output_path, title)
// triple and preserves the input order.
func Dedupe(nodes []model.ContentNode) []model.ContentNode {
	seen := make(map[model.DedupKey]struct{}, len(nodes))
	out := make([]model.ContentNode, 0, len(nodes))
	for _, n := range nodes {
		k := n.DedupKey()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, n)
	}
	return out
}

type siblingKey struct {
	parent string
	order  int
}

// ensureUniqueOrder keeps list positions as the sibling order and only
// moves a node when dropping a duplicate left two siblings on the same
// position; the later one goes after the current maximum.
func ensureUniqueOrder(nodes []model.ContentNode) []model.ContentNode {
	used := make(map[siblingKey]bool, len(nodes))
	maxOrder := map[string]int{}
	for _, n := range nodes {
		if n.Order > maxOrder[n.ParentOutputPath] {
			maxOrder[n.ParentOutputPath] = n.Order
		}
	}
	for i := range nodes {
		n := &nodes[i]
		k := siblingKey{n.ParentOutputPath, n.Order}
		if used[k] {
			maxOrder[n.ParentOutputPath]++
			n.Order = maxOrder[n.ParentOutputPath]
			k.order = n.Order
		}
		used[k] = true
	}
	return slices.Clip(nodes)
}
