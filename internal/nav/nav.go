// Package nav computes page-relative navigation: the top-level menu,
// breadcrumbs and asset prefixes. Every link it produces is relative to the
// directory of the page being rendered, so the site works from any base URL.
package nav

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// RootIndex is the site root index page.
const RootIndex = "index.html"

// Item is one rendered navigation entry.
type Item struct {
	Title    string
	Link     string
	Active   bool
	External bool
}

// BuildMenu returns the main menu for currentPage. Only root nodes in the
// main menu context are used, ordered by sibling order. The home entry
// always links to the site root index.
func BuildMenu(nodes []model.ContentNode, currentPage string) []Item {
	current := cleanPath(currentPage)

	roots := make([]model.ContentNode, 0, len(nodes))
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if !n.IsRoot() || !inMainMenu(n) || seen[n.OutputPath] {
			continue
		}
		seen[n.OutputPath] = true
		roots = append(roots, n)
	}
	sort.SliceStable(roots, func(i, j int) bool { return roots[i].Order < roots[j].Order })

	items := make([]Item, 0, len(roots))
	for _, n := range roots {
		target := cleanPath(firstNonEmpty(n.RelativeLink, n.OutputPath))
		if IsHome(n) {
			target = RootIndex
		}
		items = append(items, Item{
			Title:  n.Title,
			Link:   menuLink(current, target),
			Active: isActive(current, target),
		})
	}
	return items
}

// IsHome reports whether n is the home entry: titled "home" or placed at
// the root index.
func IsHome(n model.ContentNode) bool {
	if strings.EqualFold(strings.TrimSpace(n.Title), "home") {
		return true
	}
	return n.IsRoot() && cleanPath(n.OutputPath) == RootIndex
}

// menuLink computes the href for target as seen from current. A section
// index page linking to itself gets "index.html".
func menuLink(current, target string) string {
	if isSectionIndex(current) && target == current {
		return RootIndex
	}
	return RelativeTo(current, target)
}

func isSectionIndex(p string) bool {
	return p != RootIndex && strings.HasSuffix(p, "/"+RootIndex)
}

func isActive(current, target string) bool {
	if current == target {
		return true
	}
	if target == RootIndex || !strings.HasSuffix(target, "/"+RootIndex) {
		return false
	}
	return strings.HasPrefix(current, strings.TrimSuffix(target, RootIndex))
}

func inMainMenu(n model.ContentNode) bool {
	return n.MenuContext == "" || n.MenuContext == model.DefaultMenuContext
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
