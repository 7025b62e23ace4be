package notebook

import (
	"fmt"
	"html"
	"strings"
)

// Markdown renders the notebook as Markdown: markdown cells verbatim,
// code cells fenced with the kernel language, text outputs fenced without
// a language and image outputs referenced by imagePath (skipped when nil).
func (nb *Notebook) Markdown(imagePath func(Image) string) string {
	lang := nb.Language()
	var parts []string
	for ci, c := range nb.Cells {
		src := strings.TrimRight(c.Source.String(), "\n")
		switch c.Type {
		case "markdown":
			if src != "" {
				parts = append(parts, src)
			}
		case "code":
			if src != "" {
				parts = append(parts, "```"+lang+"\n"+src+"\n```")
			}
			for oi, o := range c.Outputs {
				if img, ok := outputImage(o); ok {
					if imagePath != nil {
						img.Cell, img.Output = ci, oi
						parts = append(parts, fmt.Sprintf("![Output of cell %d](%s)", ci, imagePath(img)))
					}
					continue
				}
				if t := strings.TrimRight(outputText(o), "\n"); t != "" {
					parts = append(parts, "```\n"+t+"\n```")
				}
			}
		case "raw":
			if src != "" {
				parts = append(parts, src)
			}
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// CellRenderer turns cell content into HTML fragments.
type CellRenderer interface {
	Markdown(src string) (string, error)
	Code(src, lang string) string
}

// HTML renders the notebook as an HTML fragment. Image outputs are
// embedded as data URIs.
func (nb *Notebook) HTML(r CellRenderer) (string, error) {
	lang := nb.Language()
	var b strings.Builder
	for ci, c := range nb.Cells {
		src := c.Source.String()
		switch c.Type {
		case "markdown":
			out, err := r.Markdown(src)
			if err != nil {
				return "", fmt.Errorf("cell %d: %w", ci, err)
			}
			fmt.Fprintf(&b, "<div class=\"nb-cell nb-markdown\">\n%s</div>\n", out)
		case "code":
			fmt.Fprintf(&b, "<div class=\"nb-cell nb-code\">\n%s", r.Code(src, lang))
			for _, o := range c.Outputs {
				if img, ok := outputImage(o); ok {
					fmt.Fprintf(&b, "<img class=\"nb-output\" src=\"%s\" alt=\"Output of cell %d\">\n", img.DataURI(), ci)
					continue
				}
				if t := outputText(o); t != "" {
					fmt.Fprintf(&b, "<pre class=\"nb-output\">%s</pre>\n", html.EscapeString(t))
				}
			}
			b.WriteString("</div>\n")
		}
	}
	return b.String(), nil
}
