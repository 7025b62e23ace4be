package nav

import "git.home.luguber.info/inful/sitebuilder/internal/model"

// Crumb is one breadcrumb entry. The current page has an empty Link.
type Crumb struct {
	Title string
	Link  string
}

// Breadcrumbs builds the trail home, ancestors, current. ancestors is the
// root-first chain returned by the ancestor query. An ancestor sharing the
// current page's path is the section the page indexes and is skipped.
func Breadcrumbs(ancestors []model.HierarchyRow, current model.ContentNode) []Crumb {
	here := cleanPath(current.OutputPath)
	crumbs := make([]Crumb, 0, len(ancestors)+2)
	if here != RootIndex {
		crumbs = append(crumbs, Crumb{Title: "Home", Link: RelativeTo(here, RootIndex)})
	}
	for _, a := range ancestors {
		p := cleanPath(a.OutputPath)
		if p == here || p == RootIndex {
			continue
		}
		crumbs = append(crumbs, Crumb{Title: a.Title, Link: RelativeTo(here, p)})
	}
	return append(crumbs, Crumb{Title: current.Title})
}
