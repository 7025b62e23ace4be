package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/hierarchy"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/store"
)

const notebookJSON = `{
 "metadata": {"kernelspec": {"language": "python"}},
 "cells": [
  {"cell_type": "markdown", "source": "Some *notes*"},
  {"cell_type": "code", "source": "x = 1", "outputs": []}
 ]
}`

type fixture struct {
	paths config.Paths
	store *store.Store
	nodes []model.ContentNode
}

func (f fixture) node(t *testing.T, output string) model.ContentNode {
	t.Helper()
	for _, n := range f.nodes {
		if n.OutputPath == output && !n.IsSection() {
			return n
		}
	}
	t.Fatalf("no leaf at %s", output)
	return model.ContentNode{}
}

func (f fixture) read(t *testing.T, output string) string {
	t.Helper()
	data, err := os.ReadFile(f.paths.OutputFile(output))
	require.NoError(t, err)
	return string(data)
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	root := t.TempDir()
	paths := config.Paths{
		Root:          root,
		Content:       filepath.Join(root, "content"),
		Build:         filepath.Join(root, "build"),
		Layouts:       filepath.Join(root, "layouts"),
		ContentPrefix: "content",
	}
	write := func(rel, s string) {
		p := filepath.Join(paths.Content, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(s), 0o644))
	}
	write("_index.md", "# Welcome\n\n![Logo](img/logo.png)\n")
	write("guides/guides.md", "Guides intro.\n")
	write("guides/intro.md", "---\ntitle: Ignored\n---\n# Intro\n\nHello **world**.\n")
	write("nb.ipynb", notebookJSON)

	res, err := hierarchy.NewResolver(hierarchy.Options{}).Resolve([]config.TOCEntry{
		{Title: "Home", File: "_index.md"},
		{Title: "Guides", Children: []config.TOCEntry{
			{Title: "Guides", File: "guides/guides.md"},
			{Title: "Intro", File: "guides/intro.md"},
			{Title: "Advanced", Children: []config.TOCEntry{
				{Title: "Tuning", File: "guides/advanced/tuning.md"},
			}},
		}},
		{Title: "Notebook", File: "nb.ipynb"},
	})
	require.NoError(t, err)

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	nodes, err := st.ReplaceContent(ctx, res.Nodes)
	require.NoError(t, err)
	require.NoError(t, st.SaveSiteInfo(ctx, model.SiteInfo{
		Title: "Course", Logo: "static/images/logo.png", FooterText: "Footer text", Language: "en",
	}))

	f := fixture{paths: paths, store: st, nodes: nodes}
	intro := f.node(t, "guides/intro.html")
	_, err = st.RecordConversion(ctx, model.ConversionResult{
		ContentID: intro.ID, SourceFormat: ".md", TargetFormat: ".pdf",
		OutputPath: "files/guides/intro.pdf", Status: model.ConversionSuccess,
	})
	require.NoError(t, err)
	_, err = st.RecordConversion(ctx, model.ConversionResult{
		ContentID: intro.ID, SourceFormat: ".md", TargetFormat: ".docx",
		OutputPath: "files/guides/intro.docx", Status: model.ConversionFailed, Message: "pandoc failed",
	})
	require.NoError(t, err)
	require.NoError(t, st.SaveSourceInfo(ctx, []model.SourceInfo{{
		ContentID: intro.ID, LastModified: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC), LastModifiedSource: "git",
	}}))
	return f
}

func newRenderer(t *testing.T, f fixture) *Renderer {
	t.Helper()
	r, err := New(f.store, Options{
		Paths:   f.paths,
		Menu:    []config.MenuItem{{Name: "Source", URL: "https://example.com/repo", Weight: 1}},
		BuildID: "build-1",
		ImageName: func(rel string) string {
			if rel == "img/logo.png" {
				return "logo-1a2b3c4d.png"
			}
			return ""
		},
	})
	require.NoError(t, err)
	return r
}

func TestRenderAll(t *testing.T) {
	f := newFixture(t)
	sum, err := newRenderer(t, f).RenderAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Pages)
	assert.Equal(t, 2, sum.Sections)
	assert.Equal(t, 1, sum.Failed, "missing tuning.md")
	assert.NoFileExists(t, f.paths.OutputFile("advanced/tuning.html"))

	home := f.read(t, "index.html")
	assert.Contains(t, home, "<title>Home | Course</title>")
	assert.Contains(t, home, `src="images/logo-1a2b3c4d.png"`)
	assert.Contains(t, home, `href="css/theme-dark.css"`)
	assert.Contains(t, home, `src="images/logo.png"`)
	assert.Contains(t, home, `href="https://example.com/repo" rel="noopener"`)
	assert.Contains(t, home, BadgeMarker)
	assert.NotContains(t, home, ">Welcome</h1>")
	assert.NotContains(t, home, `class="breadcrumbs"`)
}

func TestRenderAll_LeafPage(t *testing.T) {
	f := newFixture(t)
	_, err := newRenderer(t, f).RenderAll(context.Background())
	require.NoError(t, err)

	intro := f.read(t, "guides/intro.html")
	assert.Contains(t, intro, "<h1>Intro</h1>")
	assert.Contains(t, intro, "<strong>world</strong>")
	assert.Contains(t, intro, `href="../css/theme-dark.css"`)
	assert.Contains(t, intro, `<a href="../index.html">Home</a>`)
	assert.Contains(t, intro, `<a href="index.html" aria-current="page">Guides</a>`)
	assert.Contains(t, intro, `href="../files/guides/intro.pdf"`)
	assert.Contains(t, intro, "download-pdf")
	assert.NotContains(t, intro, "download-docx")
	assert.Contains(t, intro, `datetime="2024-03-09"`)
	assert.Contains(t, intro, `<span aria-current="page">Intro</span>`)
}

func TestRenderAll_SectionPage(t *testing.T) {
	f := newFixture(t)
	_, err := newRenderer(t, f).RenderAll(context.Background())
	require.NoError(t, err)

	guides := f.read(t, "guides/index.html")
	assert.Contains(t, guides, "Guides intro.")
	assert.Contains(t, guides, `<li class="level-1"><a href="intro.html">Intro</a></li>`)
	assert.Contains(t, guides, `<li class="level-1"><a href="../advanced/index.html">Advanced</a></li>`)
	assert.Contains(t, guides, `<li class="level-2"><a href="../advanced/tuning.html">Tuning</a></li>`)

	advanced := f.read(t, "advanced/index.html")
	assert.Contains(t, advanced, `<a href="tuning.html">Tuning</a>`)
	assert.NotContains(t, advanced, "download-button")

	nb := f.read(t, "nb/index.html")
	assert.Contains(t, nb, "nb-cell nb-code")
	assert.Contains(t, nb, "<em>notes</em>")
}

func TestRenderFile(t *testing.T) {
	f := newFixture(t)
	r := newRenderer(t, f)

	sum, err := r.RenderFile(context.Background(), "guides/intro.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"guides/intro.html"}, sum.Written)
	assert.NoFileExists(t, f.paths.OutputFile("index.html"))

	sum, err = r.RenderFile(context.Background(), filepath.Join(f.paths.Root, "content", "guides", "guides.md"))
	require.NoError(t, err)
	assert.Equal(t, []string{"guides/index.html"}, sum.Written)

	_, err = r.RenderFile(context.Background(), "nope.md")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestLayoutOverride(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.paths.Layouts, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.paths.Layouts, LayoutSingle),
		[]byte(`{{ define "main" }}<div id="custom">{{ .Title }} {{ .BuildID }}</div>{{ end }}`), 0o644))

	r := newRenderer(t, f)
	_, err := r.RenderFile(context.Background(), "guides/intro.md")
	require.NoError(t, err)
	assert.Contains(t, f.read(t, "guides/intro.html"), `<div id="custom">Intro build-1</div>`)

	sources := r.layouts.Sources
	require.Len(t, sources, 3)
	assert.Empty(t, sources[0].Path)
	assert.Equal(t, filepath.Join(f.paths.Layouts, LayoutSingle), sources[1].Path)
}

func TestLayoutParseErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LayoutSection), []byte(`{{ define "main" }}{{ .Title `), 0o644))
	_, err := New(nil, Options{Paths: config.Paths{Layouts: dir}})
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestDownloads(t *testing.T) {
	got := Downloads("guides/intro.html", []model.ConversionResult{
		{TargetFormat: ".txt", OutputPath: "files/guides/intro.txt", Status: model.ConversionSuccess},
		{TargetFormat: ".pdf", OutputPath: "files/guides/intro.pdf", Status: model.ConversionSuccess},
		{TargetFormat: ".ppt", OutputPath: "files/guides/intro.ppt", Status: model.ConversionSuccess},
		{TargetFormat: ".docx", OutputPath: "files/guides/intro.docx", Status: model.ConversionSkipped},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "PDF", got[0].Label)
	assert.Equal(t, "download-pdf", got[0].Theme)
	assert.Equal(t, "Download as PDF", got[0].AriaLabel)
	assert.Equal(t, "Plain Text", got[1].Label)
	assert.Equal(t, "../files/guides/intro.txt", got[1].Href)
}

func TestChildrenSkipsSelf(t *testing.T) {
	got := Children("guides/index.html", []model.HierarchyRow{
		{Title: "Guides", OutputPath: "guides/index.html", Level: 1},
		{Title: "Intro", OutputPath: "guides/intro.html", Level: 1},
	})
	assert.Equal(t, []Child{{Title: "Intro", Link: "intro.html", Level: 1}}, got)
}
