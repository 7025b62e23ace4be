package hierarchy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

func resolve(t *testing.T, entries []config.TOCEntry) *Result {
	t.Helper()
	res, err := NewResolver(Options{}).Resolve(entries)
	require.NoError(t, err)
	require.Empty(t, Validate(res.Nodes))
	return res
}

func bySource(nodes []model.ContentNode) map[string]model.ContentNode {
	m := map[string]model.ContentNode{}
	for _, n := range nodes {
		if n.SourcePath != "" {
			m[n.SourcePath] = n
		}
	}
	return m
}

func TestResolveEndToEndExample(t *testing.T) {
	res := resolve(t, []config.TOCEntry{
		{Title: "Home", File: "_index.md"},
		{Title: "Guides", Children: []config.TOCEntry{
			{Title: "Guides", File: "guides/guides.md"},
			{Title: "Intro", File: "guides/intro.md"},
		}},
	})

	src := bySource(res.Nodes)
	require.Equal(t, "index.html", src["content/_index.md"].OutputPath)
	require.Equal(t, "guides/index.html", src["content/guides/guides.md"].OutputPath)
	require.Equal(t, "guides/intro.html", src["content/guides/intro.md"].OutputPath)

	section := res.Nodes[1]
	require.True(t, section.IsSection())
	require.Equal(t, "guides/index.html", section.OutputPath)
	require.Equal(t, model.MimeSection, section.MimeType)
	require.Equal(t, "guides", section.Slug)

	intro := src["content/guides/intro.md"]
	require.Equal(t, "guides/index.html", intro.ParentOutputPath)
	require.Equal(t, 1, intro.Level)
	require.Equal(t, 1, intro.Order)
	require.Equal(t, "guides", intro.Slug)
	require.Equal(t, "main", intro.MenuContext)
	require.Equal(t, intro.OutputPath, intro.RelativeLink)
	require.Equal(t, "text/markdown", intro.MimeType)
	require.Zero(t, res.Renamed)
}

func TestOutputPathPolicy(t *testing.T) {
	tests := []struct {
		name  string
		entry config.TOCEntry
		want  string
	}{
		{"top-level file promoted to folder", config.TOCEntry{File: "about.md"}, "about/index.html"},
		{"already prefixed source", config.TOCEntry{File: "content/about.md"}, "about/index.html"},
		{"root index", config.TOCEntry{File: "index.md"}, "index.html"},
		{"nested non-colliding", config.TOCEntry{File: "samples/about.md"}, "samples/about.html"},
		{"file named after its folder", config.TOCEntry{File: "samples/samples.md"}, "samples/index.html"},
		{"explicit slug", config.TOCEntry{File: "samples/about.md", Slug: "Extra Stuff"}, "extra-stuff/about.html"},
		{"notebook", config.TOCEntry{File: "lab/Lab 1.ipynb"}, "lab/Lab 1.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolve(t, []config.TOCEntry{tt.entry})
			require.Len(t, res.Nodes, 1)
			require.Equal(t, tt.want, res.Nodes[0].OutputPath)
		})
	}
}

func TestSlugInheritance(t *testing.T) {
	res := resolve(t, []config.TOCEntry{
		{Title: "Docs", Slug: "documentation", Children: []config.TOCEntry{
			{File: "docs/docs.md"},
			{File: "docs/setup.md", Children: []config.TOCEntry{
				{File: "docs/deep/detail.md"},
				{File: "docs/deep/own.md", Slug: "custom"},
			}},
		}},
	})
	src := bySource(res.Nodes)

	require.Equal(t, "documentation/index.html", src["content/docs/docs.md"].OutputPath)
	require.Equal(t, "Docs", src["content/docs/docs.md"].Title)
	require.Equal(t, "documentation/setup.html", src["content/docs/setup.md"].OutputPath)
	require.Equal(t, "documentation/detail.html", src["content/docs/deep/detail.md"].OutputPath,
		"nearest ancestor slug wins over the source directory")
	require.Equal(t, "custom/own.html", src["content/docs/deep/own.md"].OutputPath)
	require.Equal(t, "documentation/setup.html", src["content/docs/deep/own.md"].ParentOutputPath)
	require.Equal(t, 2, src["content/docs/deep/own.md"].Level)
}

func TestSectionSlugFromTitle(t *testing.T) {
	res := resolve(t, []config.TOCEntry{
		{Title: "Week 1: Getting Started!", Children: []config.TOCEntry{{File: "w1/a.md"}}},
		{Children: []config.TOCEntry{{File: "misc/b.md"}}},
	})
	require.Equal(t, "week-1-getting-started/index.html", res.Nodes[0].OutputPath)
	require.True(t, res.Nodes[0].IsAutobuilt)
	require.Equal(t, "week-1-getting-started/a.html", res.Nodes[1].OutputPath)
	require.Equal(t, "section-1/index.html", res.Nodes[2].OutputPath)
	require.Equal(t, "Section 1", res.Nodes[2].Title)
}

func TestMenuContextInheritance(t *testing.T) {
	res := resolve(t, []config.TOCEntry{
		{Title: "Home", File: "_index.md"},
		{Title: "Legal", MenuContext: "footer", Children: []config.TOCEntry{
			{File: "legal/privacy.md"},
			{File: "legal/terms.md", MenuContext: "hidden"},
		}},
	})
	src := bySource(res.Nodes)
	require.Equal(t, "main", src["content/_index.md"].MenuContext)
	require.Equal(t, "footer", res.Nodes[1].MenuContext)
	require.Equal(t, "footer", src["content/legal/privacy.md"].MenuContext)
	require.Equal(t, "hidden", src["content/legal/terms.md"].MenuContext)
}

func TestDeduplication(t *testing.T) {
	t.Run("same triple collapses", func(t *testing.T) {
		res := resolve(t, []config.TOCEntry{
			{Title: "Intro", File: "guides/intro.md"},
			{Title: "Guides", Children: []config.TOCEntry{
				{Title: "Intro", File: "guides/intro.md"},
			}},
		})
		var intros []model.ContentNode
		for _, n := range res.Nodes {
			if n.SourcePath == "content/guides/intro.md" {
				intros = append(intros, n)
			}
		}
		require.Len(t, intros, 1)
		require.True(t, intros[0].IsRoot(), "first occurrence wins")
		require.Equal(t, 1, res.Duplicates)
	})

	t.Run("different parents keep one record per triple", func(t *testing.T) {
		res := resolve(t, []config.TOCEntry{
			{Title: "A", Children: []config.TOCEntry{{Title: "Intro", File: "guides/intro.md"}}},
			{Title: "B", Children: []config.TOCEntry{{Title: "Intro", File: "guides/intro.md"}}},
			{Title: "B", Children: []config.TOCEntry{{Title: "Intro", File: "guides/intro.md"}}},
		})
		seen := map[model.DedupKey]int{}
		for _, n := range res.Nodes {
			seen[n.DedupKey()]++
		}
		for k, c := range seen {
			require.Equal(t, 1, c, "triple %+v", k)
		}
	})

	t.Run("dedupe keeps first and order", func(t *testing.T) {
		a := model.ContentNode{Title: "A", OutputPath: "a.html", Order: 0}
		b := model.ContentNode{Title: "B", OutputPath: "b.html", Order: 1}
		a2 := a
		a2.Order = 5
		require.Equal(t, []model.ContentNode{a, b}, Dedupe([]model.ContentNode{a, b, a2}))
	})
}

func TestCollisionsAreRenamed(t *testing.T) {
	res := resolve(t, []config.TOCEntry{
		{Title: "Part 1", Children: []config.TOCEntry{
			{Title: "Exercises", Children: []config.TOCEntry{{File: "p1/ex.md"}}},
		}},
		{Title: "Part 2", Children: []config.TOCEntry{
			{Title: "Exercises", Children: []config.TOCEntry{{File: "p2/ex.md"}}},
		}},
		{Title: "About", File: "about.md"},
		{Title: "About", Children: []config.TOCEntry{{File: "about/team.md"}}},
	})
	src := bySource(res.Nodes)
	require.Equal(t, "exercises/ex.html", src["content/p1/ex.md"].OutputPath)
	require.Equal(t, "exercises-2/ex.html", src["content/p2/ex.md"].OutputPath)
	require.Equal(t, "about-2/team.html", src["content/about/team.md"].OutputPath)
	require.Equal(t, 2, res.Renamed)

	paths := map[string]int{}
	for _, n := range res.Nodes {
		paths[n.OutputPath]++
	}
	for p, c := range paths {
		require.Equal(t, 1, c, "path %s", p)
	}
}

func TestSecondIndexPageIsRenamed(t *testing.T) {
	res := resolve(t, []config.TOCEntry{
		{Title: "Guides", Children: []config.TOCEntry{
			{File: "guides/guides.md"},
			{File: "more/guides/guides.md"},
		}},
	})
	src := bySource(res.Nodes)
	require.Equal(t, "guides/index.html", src["content/guides/guides.md"].OutputPath)
	require.Equal(t, "guides-2/index.html", src["content/more/guides/guides.md"].OutputPath)
	require.Equal(t, 1, res.Renamed)
}

func TestPageChildDoesNotSharePageParentPath(t *testing.T) {
	res := resolve(t, []config.TOCEntry{
		{Title: "About", File: "about.md", Children: []config.TOCEntry{
			{Title: "About Detail", File: "about/about.md"},
		}},
	})
	src := bySource(res.Nodes)
	parent := src["content/about.md"]
	child := src["content/about/about.md"]
	require.NotEqual(t, parent.OutputPath, child.OutputPath)
	require.Equal(t, parent.OutputPath, child.ParentOutputPath)
	require.Equal(t, 1, res.Renamed)
}

func TestValidateReportsSharedPagePath(t *testing.T) {
	nodes := []model.ContentNode{
		{Title: "Home", SourcePath: "content/index.md", OutputPath: "index.html"},
		{Title: "A", SourcePath: "content/a.md", OutputPath: "a/index.html", ParentOutputPath: "index.html", Level: 1, Order: 0},
		{Title: "B", SourcePath: "content/b.md", OutputPath: "a/index.html", ParentOutputPath: "a/index.html", Level: 2, Order: 0},
	}
	problems := Validate(nodes)
	require.NotEmpty(t, problems)
	found := false
	for _, p := range problems {
		if p.Message == "output path also used by content/a.md" {
			found = true
		}
	}
	require.True(t, found, "%v", problems)
}

func TestLevelsAndOrders(t *testing.T) {
	entries := []config.TOCEntry{
		{Title: "Home", File: "_index.md"},
		{Title: "Guides", Children: []config.TOCEntry{
			{File: "guides/guides.md"},
			{File: "guides/a.md", Children: []config.TOCEntry{
				{File: "guides/a1.md"},
				{File: "guides/a2.md"},
				{File: "guides/a3.md"},
			}},
			{File: "guides/b.md"},
		}},
		{Title: "Empty"},
		{Title: "Ref", Children: []config.TOCEntry{{File: "ref/x.md"}}},
	}
	res := resolve(t, entries)
	require.Equal(t, 1, res.Skipped)

	idx := NewIndex(res.Nodes)
	for _, n := range res.Nodes {
		if n.IsRoot() {
			require.Zero(t, n.Level)
			continue
		}
		parent, ok := idx.Lookup(n.ParentOutputPath)
		require.True(t, ok)
		require.Equal(t, parent.Level+1, n.Level, n.OutputPath)
	}

	orders := map[string][]int{}
	for _, n := range res.Nodes {
		orders[n.ParentOutputPath] = append(orders[n.ParentOutputPath], n.Order)
	}
	require.Equal(t, []int{0, 1, 3}, orders[""], "order is the list position, skipped entries keep their slot")
	require.Equal(t, []int{0, 1, 2}, orders["guides/index.html"])
	require.Equal(t, []int{0, 1, 2}, orders["guides/a.html"])
}

func TestResolveIsDeterministic(t *testing.T) {
	entries := []config.TOCEntry{
		{Title: "Home", File: "_index.md"},
		{Title: "Guides", Children: []config.TOCEntry{
			{Title: "Guides", File: "guides/guides.md"},
			{Title: "Intro", File: "guides/intro.md"},
			{Title: "Intro", File: "guides/intro.md"},
		}},
		{Title: "Guides", Children: []config.TOCEntry{{File: "x/y.md"}}},
	}
	r := NewResolver(Options{})
	first, err := r.Resolve(entries)
	require.NoError(t, err)
	second, err := r.Resolve(entries)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDeepTreeHasNoRecursionLimit(t *testing.T) {
	const depth = 2000
	leaf := config.TOCEntry{Title: "Leaf", File: "deep/leaf.md"}
	cur := leaf
	for i := depth; i > 0; i-- {
		cur = config.TOCEntry{Title: fmt.Sprintf("Level %d", i), Children: []config.TOCEntry{cur}}
	}
	res := resolve(t, []config.TOCEntry{cur})
	require.Len(t, res.Nodes, depth+1)
	require.Equal(t, depth, res.Nodes[depth].Level)

	rows := Descendants(res.Nodes, "level-1/index.html")
	require.Len(t, rows, depth)
	require.Equal(t, depth, rows[len(rows)-1].Level)
}

func TestCapabilitiesAreAttached(t *testing.T) {
	r := NewResolver(Options{Capabilities: func(f model.Format) model.CapabilityFlags {
		var c model.CapabilityFlags
		if f == model.FormatMarkdown {
			c.Set(model.FormatPDF, true)
		}
		return c
	}})
	res, err := r.Resolve([]config.TOCEntry{
		{File: "a.md"},
		{File: "b.docx"},
		{Title: "S", Children: []config.TOCEntry{{File: "s/c.md"}}},
	})
	require.NoError(t, err)
	require.True(t, res.Nodes[0].Capabilities.Has(model.FormatPDF))
	require.False(t, res.Nodes[1].Capabilities.Has(model.FormatPDF))
	require.False(t, res.Nodes[2].Capabilities.Has(model.FormatPDF))
}

func TestResolveErrors(t *testing.T) {
	_, err := NewResolver(Options{}).Resolve(nil)
	require.ErrorIs(t, err, ErrEmptyTOC)

	_, err = NewResolver(Options{}).Resolve([]config.TOCEntry{{Title: "nothing"}})
	require.ErrorIs(t, err, ErrNoPlaceableEntries)
}

func TestContentRootOption(t *testing.T) {
	res, err := NewResolver(Options{ContentRoot: "."}).Resolve([]config.TOCEntry{{File: "docs/x.md"}})
	require.NoError(t, err)
	require.Equal(t, "docs/x.md", res.Nodes[0].SourcePath)
	require.Equal(t, "docs/x.html", res.Nodes[0].OutputPath)

	res, err = NewResolver(Options{ContentRoot: "src/"}).Resolve([]config.TOCEntry{{File: "./about.md"}})
	require.NoError(t, err)
	require.Equal(t, "src/about.md", res.Nodes[0].SourcePath)
	require.Equal(t, "about/index.html", res.Nodes[0].OutputPath)
}
