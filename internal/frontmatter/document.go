// Package frontmatter splits YAML frontmatter from Markdown sources and
// writes it back when converters emit Markdown.
package frontmatter

import (
	"bytes"
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnterminated indicates the document opens a frontmatter block that is
// never closed.
var ErrUnterminated = errors.New("frontmatter opened with --- but never closed")

// Document is a source file split into frontmatter and body.
type Document struct {
	Front   []byte // YAML without delimiters
	Body    []byte
	Had     bool
	Newline string
}

// Meta holds the frontmatter keys the site build understands. Fields keeps
// every key, including those.
type Meta struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Author      string         `yaml:"author"`
	Draft       bool           `yaml:"draft"`
	Tags        []string       `yaml:"tags"`
	Fields      map[string]any `yaml:"-"`
}

// Parse splits content. A document without an opening delimiter is all
// body.
func Parse(content []byte) (Document, error) {
	nl := newlineOf(content)
	doc := Document{Body: content, Newline: nl}

	delim := []byte("---" + nl)
	if !bytes.HasPrefix(content, delim) {
		return doc, nil
	}
	rest := content[len(delim):]
	if bytes.HasPrefix(rest, delim) {
		doc.Front, doc.Body, doc.Had = []byte{}, rest[len(delim):], true
		return doc, nil
	}

	closing := []byte(nl + "---")
	idx := bytes.Index(rest, closing)
	for idx >= 0 {
		after := rest[idx+len(closing):]
		if len(after) == 0 || bytes.HasPrefix(after, []byte(nl)) {
			doc.Front = rest[:idx+len(nl)]
			doc.Body = bytes.TrimPrefix(after, []byte(nl))
			doc.Had = true
			return doc, nil
		}
		next := bytes.Index(after, closing)
		if next < 0 {
			break
		}
		idx += len(closing) + next
	}
	return Document{Body: content, Newline: nl}, ErrUnterminated
}

// Strip returns the body of content, or content itself when the
// frontmatter cannot be split.
func Strip(content []byte) []byte {
	doc, err := Parse(content)
	if err != nil {
		return content
	}
	return doc.Body
}

// Meta decodes the frontmatter.
func (d Document) Meta() (Meta, error) {
	var m Meta
	if len(bytes.TrimSpace(d.Front)) == 0 {
		m.Fields = map[string]any{}
		return m, nil
	}
	if err := yaml.Unmarshal(d.Front, &m); err != nil {
		return Meta{}, err
	}
	if err := yaml.Unmarshal(d.Front, &m.Fields); err != nil {
		return Meta{}, err
	}
	if m.Fields == nil {
		m.Fields = map[string]any{}
	}
	m.Title = strings.TrimSpace(m.Title)
	return m, nil
}

// Bytes reassembles the document.
func (d Document) Bytes() []byte {
	if !d.Had {
		return d.Body
	}
	nl := d.Newline
	if nl == "" {
		nl = "\n"
	}
	var buf bytes.Buffer
	buf.Grow(len(d.Front) + len(d.Body) + 8)
	buf.WriteString("---" + nl)
	buf.Write(d.Front)
	buf.WriteString("---" + nl)
	buf.Write(d.Body)
	return buf.Bytes()
}

func newlineOf(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
