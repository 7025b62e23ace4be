package render

import (
	"html/template"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/nav"
)

// BadgeMarker and BadgeEnd delimit the accessibility badge slot. The
// verifier fills the slot once the page has been checked.
const (
	BadgeMarker = "<!-- accessibility-badge -->"
	BadgeEnd    = "<!-- /accessibility-badge -->"
)

// Static asset locations relative to the build root.
const (
	CSSFile = "css/theme-dark.css"
	JSFile  = "js/main.js"
)

// PageContext is the data every layout is executed with.
type PageContext struct {
	Site         model.SiteInfo
	Title        string
	Content      template.HTML
	Menu         []nav.Item
	ExternalMenu []nav.Item
	Breadcrumbs  []nav.Crumb
	Children     []Child
	Downloads    []Download
	OutputPath   string
	IsSection    bool
	HomePath     string
	CSSPath      string
	JSPath       string
	LogoPath     string
	FaviconPath  string
	LastModified string
	Footer       string
	BuildID      string
	BadgeSlot    template.HTML
}

// Child is one entry of a section index listing.
type Child struct {
	Title string
	Link  string
	Level int // 1 for direct children
}

// Download is a link to a converted copy of the page.
type Download struct {
	Label     string
	Href      string
	Theme     string
	AriaLabel string
	Format    model.Format
}

// downloadFormats are offered in this order.
var downloadFormats = []model.Format{
	model.FormatPDF, model.FormatDOCX, model.FormatTeX, model.FormatMarkdown, model.FormatText,
}

// Downloads turns successful conversions into download links relative to
// the page.
func Downloads(page string, results []model.ConversionResult) []Download {
	byFormat := make(map[model.Format]model.ConversionResult, len(results))
	for _, r := range results {
		if r.Status == model.ConversionSuccess {
			byFormat[r.TargetFormat] = r
		}
	}
	var out []Download
	for _, f := range downloadFormats {
		r, ok := byFormat[f]
		if !ok {
			continue
		}
		label := f.Label()
		out = append(out, Download{
			Label:     label,
			Href:      nav.RelativeTo(page, r.OutputPath),
			Theme:     "download-" + strings.TrimPrefix(string(f), "."),
			AriaLabel: "Download as " + label,
			Format:    f,
		})
	}
	return out
}

// Children lists the descendants of a section page, skipping rows that
// share the page's own output path.
func Children(page string, rows []model.HierarchyRow) []Child {
	out := make([]Child, 0, len(rows))
	for _, r := range rows {
		if r.OutputPath == page {
			continue
		}
		out = append(out, Child{Title: r.Title, Link: nav.RelativeTo(page, r.OutputPath), Level: r.Level})
	}
	return out
}

// assetPath returns name under dir relative to page, or "" for no name.
func assetPath(page, dir, name string) string {
	if name == "" {
		return ""
	}
	if nav.IsAbsoluteURL(name) {
		return name
	}
	return nav.AssetPrefix(page) + path.Join(dir, path.Base(name))
}

func funcs() template.FuncMap {
	caser := cases.Title(language.English)
	return template.FuncMap{
		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"titleCase": caser.String,
		"join":      strings.Join,
	}
}
