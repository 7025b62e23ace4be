package docx

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	godocx "github.com/fumiama/go-docx"
	"github.com/stretchr/testify/require"
)

func TestHeadingLevel(t *testing.T) {
	for style, want := range map[string]int{
		"Heading1":  1,
		"heading 2": 2,
		"HEADING6":  6,
		"Heading7":  0,
		"Title":     1,
		"Normal":    0,
		"":          0,
	} {
		require.Equal(t, want, HeadingLevel(style), style)
	}
}

func TestDocumentRendering(t *testing.T) {
	doc := &Document{Paragraphs: []Paragraph{
		{Level: 1, Text: "Report"},
		{Text: "See https://example.com/data.csv and images/fig1.png."},
		{Level: 2, Text: "Method"},
		{Text: "Details in assets/appendix.pdf"},
	}}

	require.Equal(t, "Report", doc.Title())
	require.Equal(t, "# Report\n\nSee https://example.com/data.csv and images/fig1.png.\n\n## Method\n\nDetails in assets/appendix.pdf\n", doc.Markdown())
	require.Equal(t, []string{"https://example.com/data.csv", "images/fig1.png", "assets/appendix.pdf"}, doc.References())
	require.Contains(t, doc.Text(), "Method\n\nDetails")

	require.Empty(t, (&Document{}).Markdown())
	require.Empty(t, (&Document{}).Title())
}

func TestReadGeneratedDocument(t *testing.T) {
	p := filepath.Join(t.TempDir(), "gen.docx")
	w := godocx.New().WithDefaultTheme()
	w.AddParagraph().AddText("First paragraph")
	w.AddParagraph().AddText("Second paragraph")
	f, err := os.Create(p)
	require.NoError(t, err)
	_, err = w.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	doc, err := Read(p)
	require.NoError(t, err)
	require.Equal(t, []Paragraph{{Text: "First paragraph"}, {Text: "Second paragraph"}}, doc.Paragraphs)
	require.Equal(t, "First paragraph", doc.Title())
}

func TestMedia(t *testing.T) {
	p := filepath.Join(t.TempDir(), "media.docx")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"word/document.xml":      "<w:document/>",
		"word/media/image2.png":  "png-bytes",
		"word/media/image1.jpeg": "jpeg-bytes",
	} {
		entry, err := zw.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	media, err := Media(p)
	require.NoError(t, err)
	require.Equal(t, []MediaFile{{Name: "image1.jpeg", Size: 10}, {Name: "image2.png", Size: 9}}, media)

	dst := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, ExtractMedia(p, "image2.png", dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(got))

	_, err = Media(filepath.Join(t.TempDir(), "missing.docx"))
	require.Error(t, err)
}
