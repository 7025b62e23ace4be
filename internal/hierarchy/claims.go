package hierarchy

import (
	"fmt"
	"slices"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// claimant is an entry holding an output path.
type claimant struct {
	key     model.DedupKey
	parent  string
	section bool
}

// pathClaims tracks which entries hold each output path during a walk.
type pathClaims struct {
	holders map[string][]claimant
	index   map[string]bool
}

func newPathClaims() *pathClaims {
	return &pathClaims{
		holders: map[string][]claimant{},
		index:   map[string]bool{},
	}
}

// claim registers node's output path and returns the path it should use
// and whether that differs from the one it asked for.
//
// A path may be shared by exact duplicates (removed later by Dedupe) and by
// one page acting as the index of its parent section, e.g. guides/guides.md
// under the Guides section. Files repeated anywhere in the tree count as
// duplicates; a repeated section only does under the same parent, so two
// "Exercises" sections in different parts stay distinct. Any other
// collision gets a numeric suffix.
func (c *pathClaims) claim(node model.ContentNode) (string, bool) {
	want := node.OutputPath
	me := claimant{key: node.DedupKey(), parent: node.ParentOutputPath, section: node.IsSection()}

	switch {
	case len(c.holders[want]) == 0, c.duplicate(want, me, node.IsSection()):
		c.add(want, me)
		return want, false
	case node.ParentOutputPath == want && !node.IsSection() && !c.index[want] && c.heldBySection(want):
		c.index[want] = true
		c.add(want, me)
		return want, false
	}

	for i := 2; ; i++ {
		candidate := suffixed(want, i)
		if len(c.holders[candidate]) == 0 {
			me.key.OutputPath = candidate
			c.add(candidate, me)
			return candidate, true
		}
	}
}

func (c *pathClaims) duplicate(p string, me claimant, section bool) bool {
	return slices.ContainsFunc(c.holders[p], func(h claimant) bool {
		if h.key != me.key {
			return false
		}
		return !section || h.parent == me.parent
	})
}

// heldBySection reports whether a section already holds p.
func (c *pathClaims) heldBySection(p string) bool {
	return slices.ContainsFunc(c.holders[p], func(h claimant) bool { return h.section })
}

func (c *pathClaims) add(p string, me claimant) {
	if !slices.Contains(c.holders[p], me) {
		c.holders[p] = append(c.holders[p], me)
	}
}

// suffixed inserts -n before the file name or, for index pages, after the
// directory: a/b.html -> a/b-2.html, a/index.html -> a-2/index.html.
func suffixed(p string, n int) string {
	if p == "index.html" {
		return fmt.Sprintf("index-%d.html", n)
	}
	if dir, ok := strings.CutSuffix(p, "/index.html"); ok {
		return fmt.Sprintf("%s-%d/index.html", dir, n)
	}
	return fmt.Sprintf("%s-%d.html", strings.TrimSuffix(p, ".html"), n)
}
