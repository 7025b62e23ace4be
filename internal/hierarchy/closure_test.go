package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

func courseTree(t *testing.T) []model.ContentNode {
	t.Helper()
	return resolve(t, []config.TOCEntry{
		{Title: "Home", File: "_index.md"},
		{Title: "Course", Children: []config.TOCEntry{
			{Title: "Week 1", Children: []config.TOCEntry{
				{Title: "Lecture 1", File: "course/w1/l1.md"},
				{Title: "Lecture 2", File: "course/w1/l2.md"},
			}},
			{Title: "Overview", File: "course/overview.md"},
		}},
	}).Nodes
}

func TestDescendantsBreadthFirst(t *testing.T) {
	rows := Descendants(courseTree(t), "course/index.html")

	got := make([]string, 0, len(rows))
	levels := make([]int, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.OutputPath)
		levels = append(levels, r.Level)
	}
	require.Equal(t, []string{
		"course/overview.html",
		"week-1/index.html",
		"week-1/l1.html",
		"week-1/l2.html",
	}, got)
	require.Equal(t, []int{1, 1, 2, 2}, levels)
	require.Equal(t, "week-1/index.html", rows[2].ParentOutputPath)
	require.Equal(t, "Lecture 1", rows[2].Title)
	require.Equal(t, "week-1", rows[2].Slug)
}

func TestDescendantsEdgeCases(t *testing.T) {
	nodes := courseTree(t)

	require.NotNil(t, Descendants(nodes, "missing/index.html"))
	require.Empty(t, Descendants(nodes, "missing/index.html"))
	require.Empty(t, Descendants(nodes, "week-1/l1.html"), "leaf has no descendants")

	cyclic := []model.ContentNode{
		{ID: 1, OutputPath: "a/index.html", ParentOutputPath: "b/index.html"},
		{ID: 2, OutputPath: "b/index.html", ParentOutputPath: "a/index.html"},
	}
	rows := Descendants(cyclic, "a/index.html")
	require.Len(t, rows, 2, "cycle terminates and every node is reported once")
}

func TestDescendantsIncludesColocatedIndexPage(t *testing.T) {
	nodes := resolve(t, []config.TOCEntry{
		{Title: "Guides", Children: []config.TOCEntry{
			{Title: "Guides", File: "guides/guides.md", Children: []config.TOCEntry{
				{Title: "Deep", File: "guides/deep.md"},
			}},
			{Title: "Intro", File: "guides/intro.md"},
		}},
	}).Nodes

	rows := Descendants(nodes, "guides/index.html")
	require.Len(t, rows, 3)
	require.Equal(t, "guides/deep.html", rows[0].OutputPath)
	require.Equal(t, "guides/index.html", rows[1].OutputPath)
	require.Equal(t, "guides/intro.html", rows[2].OutputPath)
	for _, r := range rows {
		require.Equal(t, 1, r.Level)
	}
}

func TestAncestors(t *testing.T) {
	nodes := courseTree(t)
	rows := Ancestors(nodes, "week-1/l2.html")
	require.Len(t, rows, 2)
	require.Equal(t, "course/index.html", rows[0].OutputPath)
	require.Equal(t, 0, rows[0].Level)
	require.Equal(t, "week-1/index.html", rows[1].OutputPath)
	require.Equal(t, 1, rows[1].Level)

	require.Empty(t, Ancestors(nodes, "index.html"))
	require.Empty(t, Ancestors(nodes, "nope.html"))
}

func TestIndexLookupPrefersSection(t *testing.T) {
	nodes := resolve(t, []config.TOCEntry{
		{Title: "Guides", Children: []config.TOCEntry{{Title: "Guides Home", File: "guides/guides.md"}}},
	}).Nodes
	x := NewIndex(nodes)

	n, ok := x.Lookup("guides/index.html")
	require.True(t, ok)
	require.True(t, n.IsSection())
	require.Len(t, x.All("guides/index.html"), 2)
	require.Len(t, x.Roots(), 1)
	require.Equal(t, "Guides Home", x.Children("guides/index.html")[0].Title)
}
