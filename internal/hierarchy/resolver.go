package hierarchy

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// CapabilityFunc returns the conversion flags for a source format.
type CapabilityFunc func(source model.Format) model.CapabilityFlags

// Options configures a Resolver.
type Options struct {
	// ContentRoot is the slash separated prefix every source path gets,
	// "content" by default. Use "." for sources at the project root.
	ContentRoot        string
	DefaultMenuContext string
	Capabilities       CapabilityFunc
	Logger             *slog.Logger
}

// Resolver places table of contents entries. It is stateless between calls.
type Resolver struct {
	contentRoot string
	menuContext string
	caps        CapabilityFunc
	logger      *slog.Logger
	titleCaser  cases.Caser
}

// Result is the outcome of one resolution.
type Result struct {
	Nodes      []model.ContentNode
	Duplicates int // entries dropped by deduplication
	Skipped    int // entries with neither file nor children
	Renamed    int // entries moved off a colliding output path
}

// NewResolver creates a resolver with defaults filled in.
func NewResolver(opts Options) *Resolver {
	root := strings.Trim(path.Clean("/"+strings.ReplaceAll(opts.ContentRoot, "\\", "/")), "/")
	if opts.ContentRoot == "" {
		root = "content"
	}
	mc := opts.DefaultMenuContext
	if mc == "" {
		mc = model.DefaultMenuContext
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		contentRoot: root,
		menuContext: mc,
		caps:        opts.Capabilities,
		logger:      logger,
		titleCaser:  cases.Title(language.English),
	}
}

// frame is the traversal state for one pending entry.
type frame struct {
	entry        config.TOCEntry
	index        int
	parentOutput string
	parentSlug   string
	parentMenu   string
	level        int
}

// Resolve walks entries depth first in pre-order and returns the
// deduplicated node set. It only fails when the tree has nothing to place.
func (r *Resolver) Resolve(entries []config.TOCEntry) (*Result, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTOC
	}

	res := &Result{}
	claims := newPathClaims()
	var nodes []model.ContentNode

	stack := make([]frame, 0, len(entries))
	pushChildren := func(children []config.TOCEntry, parent model.ContentNode) {
		// Children of a section's index page hang off the shared path, so
		// they sit one level below the section, beside the index page.
		level := parent.Level + 1
		if parent.OutputPath == parent.ParentOutputPath {
			level = parent.Level
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				entry:        children[i],
				index:        i,
				parentOutput: parent.OutputPath,
				parentSlug:   parent.Slug,
				parentMenu:   parent.MenuContext,
				level:        level,
			})
		}
	}
	for i := len(entries) - 1; i >= 0; i-- {
		stack = append(stack, frame{entry: entries[i], index: i})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var node model.ContentNode
		switch {
		case f.entry.HasFile():
			node = r.placeFile(f)
		case len(f.entry.Children) > 0:
			node = r.placeSection(f)
		default:
			res.Skipped++
			r.logger.Warn("Skipping table of contents entry without file or children",
				logfields.Title(f.entry.Title), logfields.Level(f.level))
			continue
		}

		if claimed, moved := claims.claim(node); moved {
			res.Renamed++
			r.logger.Warn("Output path collision, renamed",
				logfields.Title(node.Title),
				logfields.SourcePath(node.SourcePath),
				slog.String("wanted", node.OutputPath),
				logfields.OutputPath(claimed))
			if node.IsSection() {
				node.Slug = strings.TrimSuffix(claimed, "/index.html")
			}
			node.OutputPath = claimed
		}
		node.RelativeLink = node.OutputPath

		nodes = append(nodes, node)
		pushChildren(f.entry.Children, node)
	}

	if len(nodes) == 0 {
		return nil, ErrNoPlaceableEntries
	}

	before := len(nodes)
	nodes = Dedupe(nodes)
	res.Duplicates = before - len(nodes)
	if res.Duplicates > 0 {
		r.logger.Info("Removed duplicate table of contents entries", logfields.Count(res.Duplicates))
	}
	res.Nodes = ensureUniqueOrder(nodes)
	return res, nil
}

func (r *Resolver) placeFile(f frame) model.ContentNode {
	src := r.sourcePath(f.entry.File)
	rel := r.contentRelative(src)
	ext := path.Ext(rel)
	base := strings.TrimSuffix(path.Base(rel), ext)
	dir := path.Dir(rel)
	topLevel := dir == "."

	explicit := SlugifyPath(f.entry.Slug)
	title := strings.TrimSpace(f.entry.Title)
	if title == "" {
		title = r.humanize(base)
	}

	var slug, out string
	switch {
	case topLevel && isIndexName(base):
		slug = explicit
		out = "index.html"
	case topLevel:
		slug = Slugify(base)
		if slug == "" {
			slug = fallbackSlug(explicit, f)
		}
		out = slug + "/index.html"
	default:
		slug = firstNonEmpty(explicit, f.parentSlug, SlugifyPath(dir), Slugify(title))
		if slug == "" {
			slug = fallbackSlug("", f)
		}
		if base == path.Base(dir) {
			out = slug + "/index.html"
		} else {
			out = slug + "/" + base + ".html"
		}
	}

	node := model.ContentNode{
		Title:            title,
		SourcePath:       src,
		OutputPath:       out,
		MimeType:         mimeOrExt(ext),
		ParentOutputPath: f.parentOutput,
		Slug:             slug,
		Order:            f.index,
		Level:            f.level,
		MenuContext:      firstNonEmpty(strings.TrimSpace(f.entry.MenuContext), f.parentMenu, r.menuContext),
	}
	if r.caps != nil {
		node.Capabilities = r.caps(model.ParseFormat(ext))
	}
	return node
}

func (r *Resolver) placeSection(f frame) model.ContentNode {
	title := strings.TrimSpace(f.entry.Title)
	slug := firstNonEmpty(SlugifyPath(f.entry.Slug), Slugify(title))
	if slug == "" {
		slug = fallbackSlug("", f)
	}
	if title == "" {
		title = r.humanize(path.Base(slug))
	}
	return model.ContentNode{
		Title:            title,
		OutputPath:       slug + "/index.html",
		IsAutobuilt:      true,
		MimeType:         model.MimeSection,
		ParentOutputPath: f.parentOutput,
		Slug:             slug,
		Order:            f.index,
		Level:            f.level,
		MenuContext:      firstNonEmpty(strings.TrimSpace(f.entry.MenuContext), f.parentMenu, r.menuContext),
	}
}

// sourcePath normalizes a TOC file reference and prefixes the content
// root unless it is already there.
func (r *Resolver) sourcePath(file string) string {
	p := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(strings.TrimSpace(file), "\\", "/")), "/")
	if r.contentRoot == "" || r.contentRoot == "." {
		return p
	}
	if p == r.contentRoot || strings.HasPrefix(p, r.contentRoot+"/") {
		return p
	}
	return r.contentRoot + "/" + p
}

func (r *Resolver) contentRelative(src string) string {
	if r.contentRoot == "" || r.contentRoot == "." {
		return src
	}
	return strings.TrimPrefix(src, r.contentRoot+"/")
}

func (r *Resolver) humanize(base string) string {
	s := strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return r.titleCaser.String(strings.TrimSpace(s))
}

func isIndexName(base string) bool {
	return base == "index" || base == "_index"
}

func fallbackSlug(explicit string, f frame) string {
	if explicit != "" {
		return explicit
	}
	return fmt.Sprintf("section-%d", f.index)
}

func mimeOrExt(ext string) string {
	if m := model.MimeTypeFor(ext); m != "" {
		return m
	}
	return strings.ToLower(ext)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
