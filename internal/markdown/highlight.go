package markdown

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Fragments only: inline styles so pages need no extra stylesheet.
var codeFormatter = chromahtml.New(chromahtml.WithClasses(false))

// codeRenderer highlights fenced code blocks with chroma. Blocks without
// a language, or in a language chroma does not know, render as plain
// pre/code.
type codeRenderer struct {
	style string
}

func (c *codeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(gmast.KindFencedCodeBlock, c.render)
}

func (c *codeRenderer) render(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if !entering {
		return gmast.WalkContinue, nil
	}
	n := node.(*gmast.FencedCodeBlock)
	code := string(rawLines(n, source))
	lang := strings.ToLower(string(n.Language(source)))

	var buf bytes.Buffer
	if highlight(&buf, code, lang, c.style) {
		_, _ = w.Write(buf.Bytes())
		return gmast.WalkSkipChildren, nil
	}
	Highlight(w, code, lang)
	return gmast.WalkSkipChildren, nil
}

// highlight formats code as an HTML fragment. It reports false when lang
// is empty or unknown, or when formatting fails.
func highlight(w io.Writer, code, lang, style string) bool {
	if lang == "" {
		return false
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return false
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return false
	}
	return codeFormatter.Format(w, styles.Get(style), it) == nil
}

// Highlight writes code as an escaped pre/code block tagged with lang.
func Highlight(w util.BufWriter, code, lang string) {
	_, _ = w.WriteString("<pre><code")
	if lang != "" {
		_, _ = w.WriteString(` class="language-`)
		_, _ = w.Write(util.EscapeHTML([]byte(lang)))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	_, _ = w.Write(util.EscapeHTML([]byte(code)))
	_, _ = w.WriteString("</code></pre>\n")
}

// HighlightHTML returns code highlighted as HTML, falling back to an
// escaped block. Notebook code cells use it outside goldmark.
func HighlightHTML(code, lang, style string) string {
	if style == "" {
		style = DefaultHighlightStyle
	}
	var buf bytes.Buffer
	if highlight(&buf, code, lang, style) {
		return buf.String()
	}
	buf.Reset()
	bw := bufio.NewWriter(&buf)
	Highlight(bw, code, lang)
	_ = bw.Flush()
	return buf.String()
}
