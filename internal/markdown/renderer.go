package markdown

import (
	"bytes"
	"path"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// DefaultHighlightStyle is the chroma style used for fenced code.
const DefaultHighlightStyle = "github"

// Options configures a Renderer.
type Options struct {
	HighlightStyle string
	// DisableHighlight renders fenced code as plain pre/code blocks.
	DisableHighlight bool
}

// PageOptions carries per-page rendering state.
type PageOptions struct {
	// AssetPrefix leads from the page back to the site root ("../../").
	AssetPrefix string
	// ImageName maps a local image destination to its file name in the
	// flat images directory. Nil uses the destination's base name.
	ImageName func(dest string) string
	// DropTitle removes the first level one heading from the output; the
	// page template shows the title itself.
	DropTitle bool
}

// Page is a rendered Markdown document.
type Page struct {
	HTML  []byte
	Title string // text of the first level one heading, if any
}

// Renderer converts Markdown to HTML fragments. It is safe for concurrent
// use; per-page state travels in the parser context.
type Renderer struct {
	md goldmark.Markdown
}

var pageOptionsKey = parser.NewContextKey()

// NewRenderer builds a renderer with GFM, footnotes and typographic
// punctuation. Raw HTML in sources is passed through.
func NewRenderer(opts Options) *Renderer {
	style := opts.HighlightStyle
	if style == "" {
		style = DefaultHighlightStyle
	}

	rendererOpts := []renderer.Option{gmhtml.WithUnsafe()}
	if !opts.DisableHighlight {
		rendererOpts = append(rendererOpts,
			renderer.WithNodeRenderers(util.Prioritized(&codeRenderer{style: style}, 100)))
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.Typographer),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(imageTransformer{}, 100),
				util.Prioritized(ariaTransformer{}, 200),
			),
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &Renderer{md: md}
}

// Render converts body (frontmatter already removed) for one page.
func (r *Renderer) Render(body []byte, opts PageOptions) (Page, error) {
	ctx := parser.NewContext()
	ctx.Set(pageOptionsKey, opts)
	doc := r.md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))
	title := FirstHeading(doc, body)
	if opts.DropTitle {
		for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
			if h, ok := c.(*gmast.Heading); ok && h.Level == 1 {
				doc.RemoveChild(doc, h)
				break
			}
		}
	}

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, body, doc); err != nil {
		return Page{}, err
	}
	return Page{HTML: buf.Bytes(), Title: title}, nil
}

// FirstHeading returns the text of the first level one heading below n.
func FirstHeading(n gmast.Node, src []byte) string {
	var title string
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := c.(*gmast.Heading); ok && h.Level == 1 {
			title = plainText(h, src)
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return title
}

// Title returns the first level one heading of body.
func Title(body []byte) string {
	root := linkParser.Parser().Parse(text.NewReader(body))
	return FirstHeading(root, body)
}

// imageTransformer points local images at the flat images directory.
type imageTransformer struct{}

func (imageTransformer) Transform(doc *gmast.Document, _ text.Reader, pc parser.Context) {
	opts, _ := pc.Get(pageOptionsKey).(PageOptions)
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		img, ok := n.(*gmast.Image)
		if !entering || !ok {
			return gmast.WalkContinue, nil
		}
		dest := string(img.Destination)
		if !IsLocalAsset(dest) {
			return gmast.WalkContinue, nil
		}
		name := path.Base(StripQuery(dest))
		if opts.ImageName != nil {
			if mapped := opts.ImageName(dest); mapped != "" {
				name = mapped
			}
		}
		img.Destination = []byte(opts.AssetPrefix + "images/" + name)
		return gmast.WalkContinue, nil
	})
}
