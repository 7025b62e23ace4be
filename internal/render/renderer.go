package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/docx"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/nav"
	"git.home.luguber.info/inful/sitebuilder/internal/notebook"
)

// Store is the read side of the store the renderer needs.
type Store interface {
	ListContent(ctx context.Context) ([]model.ContentNode, error)
	GetDescendants(ctx context.Context, parentOutputPath string) ([]model.HierarchyRow, error)
	GetAncestors(ctx context.Context, outputPath string) ([]model.HierarchyRow, error)
	SuccessfulConversions(ctx context.Context, contentID int64) ([]model.ConversionResult, error)
	SourceInfo(ctx context.Context, contentID int64) (model.SourceInfo, bool, error)
	SiteInfo(ctx context.Context) (model.SiteInfo, error)
}

// Options configures a Renderer.
type Options struct {
	Paths   config.Paths
	Menu    []config.MenuItem
	BuildID string
	// ImageName maps a content-relative image path to its name in the flat
	// images directory.
	ImageName func(contentRel string) string
	Markdown  markdown.Options
	Logger    *slog.Logger
	Recorder  metrics.Recorder
}

// Renderer writes one HTML page per distinct output path.
type Renderer struct {
	store    Store
	opts     Options
	layouts  *Layouts
	md       *markdown.Renderer
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Summary counts rendered pages.
type Summary struct {
	Pages    int
	Sections int
	Failed   int
	Written  []string // output paths, in render order
}

// New loads the layouts and prepares the Markdown renderer.
func New(st Store, opts Options) (*Renderer, error) {
	layouts, err := LoadLayouts(opts.Paths.Layouts)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, ErrLayouts.Message()).
			Fatal().WithContext("dir", opts.Paths.Layouts).Build()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		store:    st,
		opts:     opts,
		layouts:  layouts,
		md:       markdown.NewRenderer(opts.Markdown),
		logger:   logger,
		recorder: metrics.OrNoop(opts.Recorder),
	}, nil
}

// page is one output path with the nodes placed on it: an optional
// content leaf and an optional section.
type page struct {
	outputPath string
	leaf       *model.ContentNode
	section    *model.ContentNode
}

func (p page) node() model.ContentNode {
	if p.leaf != nil {
		return *p.leaf
	}
	return *p.section
}

// group merges nodes sharing an output path, keeping first-seen order.
func group(nodes []model.ContentNode) []page {
	index := make(map[string]int)
	var pages []page
	for i := range nodes {
		n := &nodes[i]
		at, ok := index[n.OutputPath]
		if !ok {
			at = len(pages)
			index[n.OutputPath] = at
			pages = append(pages, page{outputPath: n.OutputPath})
		}
		switch {
		case n.IsSection() && pages[at].section == nil:
			pages[at].section = n
		case !n.IsSection() && pages[at].leaf == nil:
			pages[at].leaf = n
		}
	}
	return pages
}

// RenderAll renders every node in the store. Page failures are logged and
// counted; only store errors and cancellation abort.
func (r *Renderer) RenderAll(ctx context.Context) (Summary, error) {
	nodes, err := r.store.ListContent(ctx)
	if err != nil {
		return Summary{}, err
	}
	return r.render(ctx, nodes, group(nodes))
}

// RenderFile renders only the pages whose source is sourcePath, given
// either relative to the project root or to the content directory.
func (r *Renderer) RenderFile(ctx context.Context, sourcePath string) (Summary, error) {
	nodes, err := r.store.ListContent(ctx)
	if err != nil {
		return Summary{}, err
	}
	want := r.opts.Paths.NormalizeSource(sourcePath)
	var selected []page
	for _, p := range group(nodes) {
		if p.leaf != nil && p.leaf.SourcePath == want {
			selected = append(selected, p)
		}
	}
	if len(selected) == 0 {
		return Summary{}, ErrNoMatchingSource.WithContext("source", sourcePath)
	}
	return r.render(ctx, nodes, selected)
}

func (r *Renderer) render(ctx context.Context, all []model.ContentNode, pages []page) (Summary, error) {
	site, err := r.store.SiteInfo(ctx)
	if err != nil && !errors.HasCategory(err, errors.CategoryNotFound) {
		return Summary{}, err
	}
	var sum Summary
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if err := r.renderPage(ctx, site, all, p); err != nil {
			if errors.HasCategory(err, errors.CategoryStore) {
				return sum, err
			}
			sum.Failed++
			r.logger.Error("Page render failed",
				logfields.OutputPath(p.outputPath), logfields.SourcePath(p.node().SourcePath), logfields.Error(err))
			continue
		}
		sum.Written = append(sum.Written, p.outputPath)
		if p.section != nil {
			sum.Sections++
			r.recorder.IncPageRendered("section")
		} else {
			sum.Pages++
			r.recorder.IncPageRendered("page")
		}
	}
	r.logger.Info("Rendered pages",
		slog.Int("pages", sum.Pages), slog.Int("sections", sum.Sections), slog.Int("failed", sum.Failed))
	return sum, nil
}

func (r *Renderer) renderPage(ctx context.Context, site model.SiteInfo, all []model.ContentNode, p page) error {
	n := p.node()
	pc, err := r.pageContext(ctx, site, all, p)
	if err != nil {
		return err
	}

	if p.leaf != nil {
		body, title, err := r.content(*p.leaf)
		if err != nil {
			return errors.WrapError(err, errors.CategoryRender, ErrPageFailed.Message()).
				WithContext("source", p.leaf.SourcePath).Build()
		}
		pc.Content = body
		if pc.Title == "" {
			pc.Title = title
		}
	}
	if pc.Title == "" {
		pc.Title = "Untitled"
	}

	var buf bytes.Buffer
	if err := r.layouts.template(p.section != nil).ExecuteTemplate(&buf, "baseof", pc); err != nil {
		return errors.WrapError(err, errors.CategoryRender, ErrPageFailed.Message()).
			WithContext("output", n.OutputPath).Build()
	}
	out := r.opts.Paths.OutputFile(p.outputPath)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	return os.WriteFile(out, buf.Bytes(), 0o644)
}

func (r *Renderer) pageContext(ctx context.Context, site model.SiteInfo, all []model.ContentNode, p page) (PageContext, error) {
	n := p.node()
	here := p.outputPath
	pc := PageContext{
		Site:         site,
		Title:        n.Title,
		Menu:         nav.BuildMenu(all, here),
		ExternalMenu: nav.ExternalItems(r.opts.Menu, here),
		OutputPath:   here,
		IsSection:    p.section != nil,
		HomePath:     nav.RelativeTo(here, nav.RootIndex),
		CSSPath:      nav.AssetPrefix(here) + CSSFile,
		JSPath:       nav.AssetPrefix(here) + JSFile,
		LogoPath:     assetPath(here, "images", site.Logo),
		FaviconPath:  assetPath(here, "images", site.Favicon),
		Footer:       site.FooterText,
		BuildID:      r.opts.BuildID,
		BadgeSlot:    template.HTML(BadgeMarker + BadgeEnd), // #nosec G203 -- constant comments
	}

	ancestors, err := r.store.GetAncestors(ctx, here)
	if err != nil {
		return pc, err
	}
	pc.Breadcrumbs = nav.Breadcrumbs(ancestors, n)

	if p.section != nil {
		rows, err := r.store.GetDescendants(ctx, here)
		if err != nil {
			return pc, err
		}
		pc.Children = Children(here, rows)
	}
	if p.leaf != nil {
		conv, err := r.store.SuccessfulConversions(ctx, p.leaf.ID)
		if err != nil {
			return pc, err
		}
		pc.Downloads = Downloads(here, conv)

		info, found, err := r.store.SourceInfo(ctx, p.leaf.ID)
		if err != nil {
			return pc, err
		}
		if found && !info.LastModified.IsZero() {
			pc.LastModified = info.LastModified.UTC().Format("2006-01-02")
		}
	}
	return pc, nil
}

// content renders the leaf's source to an HTML fragment and returns the
// title found in it.
func (r *Renderer) content(n model.ContentNode) (template.HTML, string, error) {
	src := r.opts.Paths.SourceFile(n.SourcePath)
	opts := markdown.PageOptions{
		AssetPrefix: nav.AssetPrefix(n.OutputPath),
		ImageName:   r.imageName(n),
		DropTitle:   true,
	}

	switch n.SourceFormat() {
	case model.FormatMarkdown, model.FormatMarp:
		data, err := os.ReadFile(src)
		if err != nil {
			return "", "", err
		}
		doc, err := frontmatter.Parse(data)
		if err != nil {
			doc = frontmatter.Document{Body: data}
		}
		page, err := r.md.Render(doc.Body, opts)
		if err != nil {
			return "", "", err
		}
		title := page.Title
		if meta, err := doc.Meta(); err == nil && meta.Title != "" {
			title = meta.Title
		}
		return template.HTML(page.HTML), title, nil // #nosec G203 -- rendered from trusted content

	case model.FormatNotebook, model.FormatJupyter:
		nb, err := notebook.Read(src)
		if err != nil {
			return "", "", err
		}
		out, err := nb.HTML(cellRenderer{r: r.md, opts: opts, style: r.opts.Markdown.HighlightStyle})
		if err != nil {
			return "", "", err
		}
		return template.HTML(out), "", nil // #nosec G203 -- rendered from trusted content

	case model.FormatDOCX:
		doc, err := docx.Read(src)
		if err != nil {
			return "", "", err
		}
		page, err := r.md.Render([]byte(doc.Markdown()), opts)
		if err != nil {
			return "", "", err
		}
		return template.HTML(page.HTML), doc.Title(), nil // #nosec G203 -- rendered from trusted content

	default:
		data, err := os.ReadFile(src)
		if err != nil {
			return "", "", err
		}
		return template.HTML("<pre>" + html.EscapeString(string(data)) + "</pre>"), "", nil // #nosec G203 -- escaped
	}
}

func (r *Renderer) imageName(n model.ContentNode) func(string) string {
	if r.opts.ImageName == nil {
		return nil
	}
	return func(dest string) string {
		rel := assets.ResolveReference(r.opts.Paths.ContentPrefix, n.SourcePath, markdown.StripQuery(dest))
		return r.opts.ImageName(rel)
	}
}

// cellRenderer renders notebook cells with the page's Markdown settings.
type cellRenderer struct {
	r     *markdown.Renderer
	opts  markdown.PageOptions
	style string
}

func (c cellRenderer) Markdown(src string) (string, error) {
	opts := c.opts
	opts.DropTitle = false
	page, err := c.r.Render([]byte(src), opts)
	if err != nil {
		return "", fmt.Errorf("render markdown cell: %w", err)
	}
	return string(page.HTML), nil
}

func (c cellRenderer) Code(src, lang string) string {
	return markdown.HighlightHTML(src, lang, c.style)
}
