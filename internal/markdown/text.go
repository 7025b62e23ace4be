package markdown

import (
	"bytes"
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// PlainText renders body as plain text: one paragraph per block, list
// items prefixed with "- ", code blocks kept verbatim, markup dropped.
func PlainText(body []byte) string {
	root := linkParser.Parser().Parse(text.NewReader(body))

	var blocks []string
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if s := blockText(n, body, ""); s != "" {
			blocks = append(blocks, s)
		}
	}
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func blockText(n gmast.Node, src []byte, indent string) string {
	switch node := n.(type) {
	case *gmast.FencedCodeBlock, *gmast.CodeBlock:
		return strings.TrimRight(string(rawLines(node, src)), "\n")
	case *gmast.HTMLBlock, *gmast.ThematicBreak:
		return ""
	case *gmast.List:
		var items []string
		for li := node.FirstChild(); li != nil; li = li.NextSibling() {
			var parts []string
			for c := li.FirstChild(); c != nil; c = c.NextSibling() {
				if s := blockText(c, src, indent+"  "); s != "" {
					parts = append(parts, s)
				}
			}
			items = append(items, indent+"- "+strings.Join(parts, "\n"))
		}
		return strings.Join(items, "\n")
	case *extast.Table:
		var rows []string
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			var cells []string
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, plainText(cell, src))
			}
			rows = append(rows, strings.Join(cells, "\t"))
		}
		return strings.Join(rows, "\n")
	case *gmast.Blockquote:
		var parts []string
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			if s := blockText(c, src, indent); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n\n")
	default:
		return strings.TrimSpace(plainText(n, src))
	}
}

// plainText concatenates the inline text below n.
func plainText(n gmast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(t.Value)
		case *gmast.CodeSpan:
			for cc := t.FirstChild(); cc != nil; cc = cc.NextSibling() {
				if tx, ok := cc.(*gmast.Text); ok {
					buf.Write(tx.Segment.Value(src))
				}
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.AutoLink:
			buf.Write(t.URL(src))
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

func rawLines(n gmast.Node, src []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.Bytes()
}
