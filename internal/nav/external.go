package nav

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// ExternalItems converts the configured flat menu into entries for
// currentPage, ordered by weight. Absolute URLs pass through; site paths
// are rewritten to the built layout and made page relative.
func ExternalItems(menu []config.MenuItem, currentPage string) []Item {
	sorted := make([]config.MenuItem, len(menu))
	copy(sorted, menu)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weight < sorted[j].Weight })

	current := cleanPath(currentPage)
	items := make([]Item, 0, len(sorted))
	for _, m := range sorted {
		if strings.TrimSpace(m.URL) == "" {
			continue
		}
		if IsAbsoluteURL(m.URL) {
			items = append(items, Item{Title: m.Name, Link: m.URL, External: true})
			continue
		}
		target := RewriteMenuURL(m.URL)
		items = append(items, Item{
			Title:  m.Name,
			Link:   menuLink(current, target),
			Active: isActive(current, target),
		})
	}
	return items
}

// RewriteMenuURL maps a menu URL written against source names to the
// built layout: "about.html" becomes "about/index.html" and
// "news/_index.html" becomes "news/index.html".
func RewriteMenuURL(u string) string {
	p := cleanPath(u)
	fragment := ""
	if i := strings.IndexByte(p, '#'); i >= 0 {
		p, fragment = p[:i], p[i:]
	}
	base := p
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		base = p[i+1:]
	}
	dir := strings.TrimSuffix(p, base)

	stem, isHTML := strings.CutSuffix(base, ".html")
	if !isHTML {
		stem, isHTML = strings.CutSuffix(base, ".htm")
	}
	switch {
	case p == "" || p == RootIndex || p == "index/index.html":
		p = RootIndex
	case isHTML && (stem == "_index" || stem == "index"):
		p = dir + RootIndex
	case isHTML && dir == "":
		p = stem + "/" + RootIndex
	case strings.HasSuffix(p, "/") || (!isHTML && !strings.Contains(base, ".")):
		p = strings.TrimSuffix(p, "/") + "/" + RootIndex
	}
	return p + fragment
}
