package markdown

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// LinkKind is the syntactic form a reference was found in.
type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
	LinkKindHTMLImage           LinkKind = "html_image"
	LinkKindHTMLLink            LinkKind = "html_link"
)

// Link is one destination referenced from a Markdown body.
type Link struct {
	Kind        LinkKind
	Destination string
	Text        string
}

// IsImage reports whether the link embeds an image.
func (l Link) IsImage() bool {
	return l.Kind == LinkKindImage || l.Kind == LinkKindHTMLImage
}

var linkParser = goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Footnote))

// ExtractLinks parses body (frontmatter already removed) and returns every
// link, image, autolink and reference definition, plus img and a tags
// found in raw HTML, in document order. Reference definitions follow,
// sorted by label.
func ExtractLinks(body []byte) []Link {
	ctx := parser.NewContext()
	root := linkParser.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination), Text: plainText(node, body)})
		case *gmast.Link:
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination), Text: plainText(node, body)})
		case *gmast.HTMLBlock:
			var raw bytes.Buffer
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				raw.Write(seg.Value(body))
			}
			links = append(links, htmlLinks(raw.Bytes())...)
		case *gmast.RawHTML:
			var raw bytes.Buffer
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				raw.Write(seg.Value(body))
			}
			links = append(links, htmlLinks(raw.Bytes())...)
		}
		return gmast.WalkContinue, nil
	})

	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		links = append(links, Link{Kind: LinkKindReferenceDefinition, Destination: string(ref.Destination())})
	}
	return links
}

// htmlLinks tokenizes an HTML fragment and returns img src and a href
// attributes.
func htmlLinks(fragment []byte) []Link {
	var out []Link
	z := html.NewTokenizer(bytes.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "img":
				if src := attr(tok, "src"); src != "" {
					out = append(out, Link{Kind: LinkKindHTMLImage, Destination: src, Text: attr(tok, "alt")})
				}
			case "a":
				if href := attr(tok, "href"); href != "" {
					out = append(out, Link{Kind: LinkKindHTMLLink, Destination: href})
				}
			}
		}
	}
}

func attr(tok html.Token, name string) string {
	for _, a := range tok.Attr {
		if a.Key == name {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// IsRemote reports whether dest points off site.
func IsRemote(dest string) bool {
	l := strings.ToLower(strings.TrimSpace(dest))
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") || strings.HasPrefix(l, "//")
}

// IsLocalAsset reports whether dest is a file reference inside the site:
// not remote, not an anchor and not an inline data or mail URL.
func IsLocalAsset(dest string) bool {
	l := strings.ToLower(strings.TrimSpace(dest))
	if l == "" || strings.HasPrefix(l, "#") || IsRemote(l) {
		return false
	}
	for _, scheme := range []string{"data:", "mailto:", "tel:", "javascript:"} {
		if strings.HasPrefix(l, scheme) {
			return false
		}
	}
	return true
}

// StripQuery removes any query string or fragment from dest.
func StripQuery(dest string) string {
	if i := strings.IndexAny(dest, "?#"); i >= 0 {
		return dest[:i]
	}
	return dest
}
