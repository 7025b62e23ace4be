package nav

import (
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

func rootNodes() []model.ContentNode {
	return []model.ContentNode{
		{Title: "Home", OutputPath: "index.html", RelativeLink: "index.html", Order: 0, MenuContext: "main"},
		{Title: "News", OutputPath: "news/index.html", RelativeLink: "news/index.html", Order: 1, MenuContext: "main", IsAutobuilt: true},
		{Title: "About", OutputPath: "about/index.html", RelativeLink: "about/index.html", Order: 2, MenuContext: "main"},
		{Title: "Imprint", OutputPath: "imprint/index.html", Order: 3, MenuContext: "footer"},
		{Title: "Intro", OutputPath: "news/intro.html", ParentOutputPath: "news/index.html", Order: 0, MenuContext: "main"},
	}
}

func links(items []Item) map[string]string {
	m := map[string]string{}
	for _, it := range items {
		m[it.Title] = it.Link
	}
	return m
}

func TestBuildMenuFromRoot(t *testing.T) {
	items := BuildMenu(rootNodes(), "index.html")
	require.Len(t, items, 3)
	assert.Equal(t, []string{"Home", "News", "About"}, []string{items[0].Title, items[1].Title, items[2].Title})
	assert.Equal(t, map[string]string{
		"Home":  "index.html",
		"News":  "news/index.html",
		"About": "about/index.html",
	}, links(items))
	assert.True(t, items[0].Active)
}

func TestBuildMenuFromSectionIndex(t *testing.T) {
	got := links(BuildMenu(rootNodes(), "news/index.html"))
	assert.Equal(t, "../index.html", got["Home"])
	assert.Equal(t, "index.html", got["News"])
	assert.Equal(t, "../about/index.html", got["About"])
}

func TestBuildMenuFromNestedPage(t *testing.T) {
	items := BuildMenu(rootNodes(), "news/2024/launch.html")
	got := links(items)
	assert.Equal(t, "../../index.html", got["Home"])
	assert.Equal(t, "../index.html", got["News"])
	assert.Equal(t, "../../about/index.html", got["About"])
	assert.True(t, items[1].Active)
}

func TestBuildMenuOrdersBySiblingOrder(t *testing.T) {
	nodes := []model.ContentNode{
		{Title: "B", OutputPath: "b/index.html", Order: 2},
		{Title: "A", OutputPath: "a/index.html", Order: 1},
	}
	items := BuildMenu(nodes, "index.html")
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Title)
}

func TestHomeAlwaysResolvesToRootIndex(t *testing.T) {
	nodes := []model.ContentNode{
		{Title: "home", OutputPath: "welcome/index.html", Order: 0},
		{Title: "Docs", OutputPath: "docs/index.html", Order: 1},
	}
	for _, page := range []string{
		"index.html", "docs/index.html", "docs/setup.html", "docs/a/b/c.html", "welcome/index.html",
	} {
		for _, it := range BuildMenu(nodes, page) {
			if it.Title != "home" {
				continue
			}
			resolved := path.Clean(path.Join(path.Dir(page), it.Link))
			assert.Equal(t, "index.html", resolved, page)
		}
	}
}

func TestMenuLinksWalkUpPageDepth(t *testing.T) {
	for depth := 0; depth < 6; depth++ {
		page := strings.Repeat("d/", depth) + "page.html"
		link := RelativeTo(page, "about/index.html")
		assert.Equal(t, depth, strings.Count(link, "../"), page)
		assert.Equal(t, strings.Repeat("../", depth), AssetPrefix(page))
	}
}

func TestRelativeTo(t *testing.T) {
	tests := []struct {
		current, target, want string
	}{
		{"index.html", "guides/intro.html", "guides/intro.html"},
		{"guides/intro.html", "guides/setup.html", "setup.html"},
		{"guides/intro.html", "index.html", "../index.html"},
		{"a/b/c.html", "a/x.html", "../x.html"},
		{"a/b/c.html", "a/b/index.html", "index.html"},
		{"/guides/intro.html", "/about/index.html", "../about/index.html"},
		{"guides/intro.html", "", "../index.html"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeTo(tt.current, tt.target), tt.current+" -> "+tt.target)
	}
}

func TestExternalItems(t *testing.T) {
	menu := []config.MenuItem{
		{Name: "Repo", URL: "https://github.com/example/site", Weight: 30},
		{Name: "News", URL: "news/_index.html", Weight: 20},
		{Name: "About", URL: "about.html", Weight: 10},
		{Name: "Broken", URL: ""},
	}
	items := ExternalItems(menu, "guides/intro.html")
	require.Len(t, items, 3)
	assert.Equal(t, Item{Title: "About", Link: "../about/index.html"}, items[0])
	assert.Equal(t, "../news/index.html", items[1].Link)
	assert.Equal(t, Item{Title: "Repo", Link: "https://github.com/example/site", External: true}, items[2])
}

func TestRewriteMenuURL(t *testing.T) {
	tests := map[string]string{
		"about.html":        "about/index.html",
		"news/_index.html":  "news/index.html",
		"index.html":        "index.html",
		"index/index.html":  "index.html",
		"/docs/":            "docs/index.html",
		"guides/intro.html": "guides/intro.html",
		"about.html#team":   "about/index.html#team",
	}
	for in, want := range tests {
		assert.Equal(t, want, RewriteMenuURL(in), in)
	}
}

func TestBreadcrumbs(t *testing.T) {
	ancestors := []model.HierarchyRow{
		{Title: "Guides", OutputPath: "guides/index.html"},
		{Title: "Advanced", OutputPath: "advanced/index.html", ParentOutputPath: "guides/index.html"},
	}
	crumbs := Breadcrumbs(ancestors, model.ContentNode{Title: "Tuning", OutputPath: "advanced/tuning.html"})
	assert.Equal(t, []Crumb{
		{Title: "Home", Link: "../index.html"},
		{Title: "Guides", Link: "../guides/index.html"},
		{Title: "Advanced", Link: "index.html"},
		{Title: "Tuning"},
	}, crumbs)
}

func TestBreadcrumbsSkipsIndexedSection(t *testing.T) {
	ancestors := []model.HierarchyRow{{Title: "Guides", OutputPath: "guides/index.html"}}
	crumbs := Breadcrumbs(ancestors, model.ContentNode{Title: "Guides overview", OutputPath: "guides/index.html"})
	assert.Equal(t, []Crumb{{Title: "Home", Link: "../index.html"}, {Title: "Guides overview"}}, crumbs)

	root := Breadcrumbs(nil, model.ContentNode{Title: "Home", OutputPath: "index.html"})
	assert.Equal(t, []Crumb{{Title: "Home"}}, root)
}
