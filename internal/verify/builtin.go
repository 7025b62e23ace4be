package verify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// Issue codes reported by BuiltinChecker. They follow the HTML_CodeSniffer
// names pa11y uses so results from both checkers read alike.
const (
	CodeNoLang        = "WCAG2AA.Principle3.Guideline3_1.3_1_1.H57.2"
	CodeNoTitle       = "WCAG2AA.Principle2.Guideline2_4.2_4_2.H25.1.NoTitleEl"
	CodeImgAlt        = "WCAG2AA.Principle1.Guideline1_1.1_1_1.H37"
	CodeEmptyLink     = "WCAG2AA.Principle4.Guideline4_1.4_1_2.H91.A.NoContent"
	CodeHeadingSkip   = "WCAG2AA.Principle1.Guideline1_3.1_3_1_A.G141"
	CodeUnlabeledCtrl = "WCAG2AA.Principle1.Guideline1_3.1_3_1.F68"
)

const contextLimit = 120

// BuiltinChecker runs structural checks without external tools: document
// language, page title, image alternatives, link text, heading order and
// form control labels.
type BuiltinChecker struct{}

func (BuiltinChecker) Name() string { return "builtin" }

func (c BuiltinChecker) Check(ctx context.Context, htmlPath string) ([]model.AccessibilityIssue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return c.CheckReader(f)
}

// CheckReader checks an HTML document read from r.
func (BuiltinChecker) CheckReader(r io.Reader) ([]model.AccessibilityIssue, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	w := &walker{labels: map[string]bool{}}
	w.collectLabels(doc)
	w.walk(doc, nil)

	if !w.hasTitle {
		w.report(CodeNoTitle, model.IssueError, "A title should be provided for the document, using a non-empty title element in the head section.", nil, nil)
	}
	return w.issues, nil
}

type walker struct {
	issues      []model.AccessibilityIssue
	labels      map[string]bool // ids referenced by <label for>
	hasTitle    bool
	lastHeading int
}

func (w *walker) report(code string, typ model.IssueType, msg string, n *html.Node, path []string) {
	is := model.AccessibilityIssue{Code: code, Type: typ, Message: msg}
	if n != nil {
		is.Context = snippet(n)
		is.Selector = strings.Join(path, " > ")
	}
	w.issues = append(w.issues, is)
}

func (w *walker) collectLabels(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Label {
		if id := attr(n, "for"); id != "" {
			w.labels[id] = true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.collectLabels(c)
	}
}

func (w *walker) walk(n *html.Node, path []string) {
	if n.Type == html.ElementNode {
		path = append(path, n.Data)
		w.element(n, path)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, path)
	}
}

func (w *walker) element(n *html.Node, path []string) {
	switch n.DataAtom {
	case atom.Html:
		if strings.TrimSpace(attr(n, "lang")) == "" && strings.TrimSpace(attr(n, "xml:lang")) == "" {
			w.report(CodeNoLang, model.IssueError,
				"The html element should have a lang or xml:lang attribute which describes the language of the document.", n, path)
		}
	case atom.Title:
		if strings.TrimSpace(textContent(n)) != "" {
			w.hasTitle = true
		}
	case atom.Img:
		if _, ok := attrOK(n, "alt"); !ok && attr(n, "role") != "presentation" {
			w.report(CodeImgAlt, model.IssueError,
				"Img element missing an alt attribute. Use the alt attribute to specify a short text alternative.", n, path)
		}
	case atom.A:
		if attr(n, "href") != "" && accessibleName(n) == "" {
			w.report(CodeEmptyLink, model.IssueError,
				"Anchor element found with a valid href attribute, but no link content has been supplied.", n, path)
		}
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		if w.lastHeading > 0 && level > w.lastHeading+1 {
			w.report(CodeHeadingSkip, model.IssueWarning, fmt.Sprintf(
				"The heading structure is not logically nested. This h%d element follows an h%d.",
				level, w.lastHeading), n, path)
		}
		w.lastHeading = level
	case atom.Input, atom.Select, atom.Textarea:
		if needsLabel(n) && !w.labelled(n, path) {
			w.report(CodeUnlabeledCtrl, model.IssueError,
				"This form field should be labelled in some way. Use the label element, or the title, aria-label or aria-labelledby attribute.", n, path)
		}
	}
}

func (w *walker) labelled(n *html.Node, path []string) bool {
	if id := attr(n, "id"); id != "" && w.labels[id] {
		return true
	}
	for _, a := range []string{"aria-label", "aria-labelledby", "title"} {
		if strings.TrimSpace(attr(n, a)) != "" {
			return true
		}
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == atom.Label {
			return true
		}
	}
	return false
}

func needsLabel(n *html.Node) bool {
	if n.DataAtom != atom.Input {
		return true
	}
	switch strings.ToLower(attr(n, "type")) {
	case "hidden", "submit", "button", "reset", "image":
		return false
	}
	return true
}

// accessibleName approximates the name of a link: its text, an aria-label
// or the alt text of a contained image.
func accessibleName(n *html.Node) string {
	if s := strings.TrimSpace(attr(n, "aria-label")); s != "" {
		return s
	}
	if s := strings.TrimSpace(attr(n, "title")); s != "" {
		return s
	}
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(c *html.Node) {
		switch {
		case c.Type == html.TextNode:
			b.WriteString(c.Data)
		case c.Type == html.ElementNode && c.DataAtom == atom.Img:
			b.WriteString(attr(c, "alt"))
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			visit(cc)
		}
	}
	visit(n)
	return strings.TrimSpace(b.String())
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		} else {
			b.WriteString(textContent(c))
		}
	}
	return b.String()
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

// snippet renders the opening of n for the issue context.
func snippet(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "<" + n.Data + ">"
	}
	s := buf.String()
	if len(s) > contextLimit {
		s = s[:contextLimit] + "..."
	}
	return s
}
