package markdown

import (
	gmast "github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// ariaTransformer sets explicit roles on tables, lists and list items.
type ariaTransformer struct{}

func (ariaTransformer) Transform(doc *gmast.Document, _ text.Reader, _ parser.Context) {
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch n.Kind() {
		case extast.KindTable:
			n.SetAttributeString("role", []byte("table"))
		case gmast.KindList:
			n.SetAttributeString("role", []byte("list"))
		case gmast.KindListItem:
			n.SetAttributeString("role", []byte("listitem"))
		}
		return gmast.WalkContinue, nil
	})
}
