// Package docx extracts text structure and embedded media from Word
// documents.
package docx

import (
	"archive/zip"
	"fmt"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	godocx "github.com/fumiama/go-docx"
)

// Paragraph is one non-empty body paragraph. Level is the heading level,
// zero for body text.
type Paragraph struct {
	Level int
	Text  string
}

// Document is the readable content of a .docx file.
type Document struct {
	Paragraphs []Paragraph
}

// Read parses the document at p.
func Read(p string) (*Document, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	parsed, err := godocx.Parse(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx %s: %w", p, err)
	}

	doc := &Document{}
	for _, item := range parsed.Document.Body.Items {
		para, ok := item.(*godocx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		level := 0
		if para.Properties != nil && para.Properties.Style != nil {
			level = HeadingLevel(para.Properties.Style.Val)
		}
		doc.Paragraphs = append(doc.Paragraphs, Paragraph{Level: level, Text: text})
	}
	return doc, nil
}

func paragraphText(para *godocx.Paragraph) string {
	var b strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*godocx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*godocx.Text); ok {
				b.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

var headingStyle = regexp.MustCompile(`(?i)^heading\s*([1-6])$`)

// HeadingLevel maps a paragraph style name ("Heading1", "heading 2",
// "Title") to a heading level, zero for body styles.
func HeadingLevel(style string) int {
	style = strings.TrimSpace(style)
	if strings.EqualFold(style, "title") {
		return 1
	}
	m := headingStyle.FindStringSubmatch(style)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// Title returns the first heading, or the first paragraph when there is
// none.
func (d *Document) Title() string {
	for _, p := range d.Paragraphs {
		if p.Level > 0 {
			return p.Text
		}
	}
	if len(d.Paragraphs) > 0 {
		return d.Paragraphs[0].Text
	}
	return ""
}

// Markdown renders headings as ATX headings and body paragraphs as plain
// paragraphs.
func (d *Document) Markdown() string {
	parts := make([]string, 0, len(d.Paragraphs))
	for _, p := range d.Paragraphs {
		if p.Level > 0 {
			parts = append(parts, strings.Repeat("#", p.Level)+" "+p.Text)
			continue
		}
		parts = append(parts, p.Text)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// Text renders every paragraph as a line block.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.Paragraphs))
	for _, p := range d.Paragraphs {
		parts = append(parts, p.Text)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

var referencePattern = regexp.MustCompile(`(https?://[^\s)>"]+|(?:assets|images)/[^\s)>"]+)`)

// References returns URLs and assets/ or images/ paths mentioned in the
// paragraph text, in order of appearance.
func (d *Document) References() []string {
	var out []string
	for _, p := range d.Paragraphs {
		for _, m := range referencePattern.FindAllString(p.Text, -1) {
			if m = strings.TrimRight(m, ".,;:!?"); m != "" {
				out = append(out, m)
			}
		}
	}
	return out
}

// MediaFile is a file stored under word/media inside the package.
type MediaFile struct {
	Name string
	Size int64
}

// Media lists the embedded media of the document at p, sorted by name.
func Media(p string) ([]MediaFile, error) {
	r, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open docx %s: %w", p, err)
	}
	defer func() { _ = r.Close() }()

	var out []MediaFile
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, "word/media/") || strings.HasSuffix(f.Name, "/") {
			continue
		}
		out = append(out, MediaFile{Name: path.Base(f.Name), Size: int64(f.UncompressedSize64)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ExtractMedia copies the embedded media file name into dst.
func ExtractMedia(p, name, dst string) error {
	r, err := zip.OpenReader(p)
	if err != nil {
		return fmt.Errorf("open docx %s: %w", p, err)
	}
	defer func() { _ = r.Close() }()

	f, err := r.Open("word/media/" + name)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := out.ReadFrom(f); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
