package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

func TestExtract(t *testing.T) {
	title, text, err := Extract(strings.NewReader(`<html><head><title>Intro | Course</title>
<script>var x = "hidden";</script></head>
<body><nav><a href="/">Menu entry</a></nav>
<main><h1>Intro</h1><p>Newton's   second
law.</p><style>.a{}</style></main>
<footer>Footer</footer></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "Intro | Course", title)
	assert.Equal(t, "Intro Newton's second law.", text)
}

func TestExtractWithoutMain(t *testing.T) {
	_, text, err := Extract(strings.NewReader(`<body><p>Only body</p></body>`))
	require.NoError(t, err)
	assert.Equal(t, "Only body", text)
}

func writePage(t *testing.T, paths config.Paths, out, title, body string) {
	t.Helper()
	p := paths.OutputFile(out)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	html := "<html><head><title>" + title + " | Course</title></head><body><main>" + body + "</main></body></html>"
	require.NoError(t, os.WriteFile(p, []byte(html), 0o644))
}

func TestIndexAndSearch(t *testing.T) {
	root := t.TempDir()
	paths := config.Paths{Root: root, Build: filepath.Join(root, "build")}
	writePage(t, paths, "index.html", "Home", "<p>Welcome to the course.</p>")
	writePage(t, paths, "mechanics/index.html", "Mechanics", "<p>Forces and motion.</p>")
	writePage(t, paths, "mechanics/momentum.html", "Momentum", "<p>Momentum is conserved in collisions.</p>")

	nodes := []model.ContentNode{
		{ID: 1, Title: "Home", OutputPath: "index.html"},
		{ID: 2, Title: "Mechanics", OutputPath: "mechanics/index.html", IsAutobuilt: true},
		{ID: 3, Title: "Momentum", OutputPath: "mechanics/momentum.html", ParentOutputPath: "mechanics/index.html"},
		{ID: 4, Title: "Missing", OutputPath: "mechanics/missing.html", ParentOutputPath: "mechanics/index.html"},
	}

	x := NewIndexer(paths, "", nil)
	docs, err := x.Documents(context.Background(), nodes)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, Document{
		Title: "Momentum", Text: "Momentum is conserved in collisions.",
		URL: "mechanics/momentum.html", Section: "Mechanics",
	}, docs[2])

	require.NoError(t, x.Build(context.Background(), docs))
	assert.DirExists(t, filepath.Join(paths.Build, DefaultDir))
	assert.NoDirExists(t, filepath.Join(paths.Build, DefaultDir+".tmp"))

	hits, err := Search(x.Path(), "collisions", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "mechanics/momentum.html", hits[0].URL)
	assert.Equal(t, "Momentum", hits[0].Title)
	assert.Equal(t, "Mechanics", hits[0].Section)

	// Rebuilding swaps the index in place.
	require.NoError(t, x.Build(context.Background(), docs[:1]))
	hits, err = Search(x.Path(), "collisions", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestBuildManyDocumentsInBatches(t *testing.T) {
	root := t.TempDir()
	x := NewIndexer(config.Paths{Build: root}, filepath.Join(root, "idx"), nil)
	docs := make([]Document, 0, 250)
	for i := range 250 {
		docs = append(docs, Document{Title: "Page", Text: "shared words", URL: fmt.Sprintf("p/%d.html", i)})
	}
	require.NoError(t, x.Build(context.Background(), docs))
	assert.Equal(t, filepath.Join(root, "idx"), x.Path())

	hits, err := Search(x.Path(), "shared", 100)
	require.NoError(t, err)
	assert.Len(t, hits, 100)
}

func TestSearchMissingIndex(t *testing.T) {
	_, err := Search(filepath.Join(t.TempDir(), "nope"), "x", 0)
	require.Error(t, err)
}
