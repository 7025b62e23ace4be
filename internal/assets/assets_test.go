package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

const notebookSource = `{
 "metadata": {"kernelspec": {"language": "python", "name": "python3"}},
 "cells": [
  {"cell_type": "markdown", "source": ["See ![chart](img/chart.png)"]},
  {"cell_type": "code", "source": "plot()", "outputs": [
    {"output_type": "display_data", "data": {"image/png": "aGVsbG8="}}
  ]}
 ]
}`

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func project(t *testing.T) config.Paths {
	t.Helper()
	root := t.TempDir()
	p := config.Paths{
		Root:          root,
		Content:       filepath.Join(root, "content"),
		Build:         filepath.Join(root, "build"),
		Static:        filepath.Join(root, "static"),
		ContentPrefix: "content",
	}
	writeFile(t, filepath.Join(p.Content, "_index.md"),
		"---\ntitle: Home\n---\n![logo](img/logo.png)\n[slides](files/deck.pdf)\n![remote](https://example.com/r.png)\n[anchor](#top)\n")
	writeFile(t, filepath.Join(p.Content, "guides", "intro.md"),
		"![logo](logo.png)\n![shared](/img/logo.png)\n")
	writeFile(t, filepath.Join(p.Content, "img", "logo.png"), "root logo")
	writeFile(t, filepath.Join(p.Content, "img", "chart.png"), "chart")
	writeFile(t, filepath.Join(p.Content, "guides", "logo.png"), "guides logo")
	writeFile(t, filepath.Join(p.Content, "files", "deck.pdf"), "%PDF")
	writeFile(t, filepath.Join(p.Content, "analysis.ipynb"), notebookSource)
	writeFile(t, filepath.Join(p.Content, ".git", "HEAD"), "ref")
	writeFile(t, filepath.Join(p.Static, "css", "site.css"), "body{}")
	return p
}

func nodes() []model.ContentNode {
	return []model.ContentNode{
		{ID: 1, Title: "Home", SourcePath: "content/_index.md", OutputPath: "index.html"},
		{ID: 2, Title: "Intro", SourcePath: "content/guides/intro.md", OutputPath: "guides/intro.html"},
		{ID: 3, Title: "Analysis", SourcePath: "content/analysis.ipynb", OutputPath: "analysis/index.html"},
		{ID: 4, Title: "Gone", SourcePath: "content/gone.md", OutputPath: "gone/index.html"},
		{ID: 5, Title: "Section", IsAutobuilt: true, OutputPath: "section/index.html"},
	}
}

func byPath(assets []model.AssetRecord) map[string]model.AssetRecord {
	out := make(map[string]model.AssetRecord)
	for _, a := range assets {
		key := a.RelativePath
		if a.IsRemote {
			key = a.URL
		}
		out[a.ReferencedPage+"|"+key] = a
	}
	return out
}

func TestResolveReference(t *testing.T) {
	assert.Equal(t, "img/a.png", ResolveReference("content", "content/index.md", "img/a.png"))
	assert.Equal(t, "guides/a.png", ResolveReference("content", "content/guides/x.md", "./a.png"))
	assert.Equal(t, "img/a.png", ResolveReference("content", "content/guides/x.md", "../img/a.png"))
	assert.Equal(t, "img/a.png", ResolveReference("content", "content/guides/x.md", "/img/a.png"))
	assert.Equal(t, "guides/a.png", ResolveReference("", "guides/x.md", "a.png"))
}

func TestScanFindsReferencesAndProvenance(t *testing.T) {
	p := project(t)
	res, err := NewScanner(p, nil, nil).Scan(context.Background(), nodes())
	require.NoError(t, err)

	require.Equal(t, 1, res.Missing)
	require.Len(t, res.Sources, 4)
	for _, si := range res.Sources {
		if si.ContentID == 4 {
			assert.True(t, si.Missing)
			continue
		}
		assert.NotEmpty(t, si.Fingerprint)
		assert.Equal(t, "mtime", si.LastModifiedSource)
		assert.False(t, si.LastModified.IsZero())
	}

	got := byPath(res.Assets)
	logo := got["content/_index.md|img/logo.png"]
	assert.True(t, logo.IsImage)
	assert.Equal(t, "image/png", logo.MimeType)
	assert.Equal(t, filepath.Join(p.Content, "img", "logo.png"), logo.AbsolutePath)

	pdf := got["content/_index.md|files/deck.pdf"]
	assert.False(t, pdf.IsImage)
	assert.Equal(t, "application/pdf", pdf.MimeType)

	remote := got["content/_index.md|https://example.com/r.png"]
	assert.True(t, remote.IsRemote)
	assert.Empty(t, remote.AbsolutePath)

	assert.Contains(t, got, "content/guides/intro.md|guides/logo.png")
	assert.Contains(t, got, "content/guides/intro.md|img/logo.png")

	chart := got["content/analysis.ipynb|img/chart.png"]
	assert.Equal(t, "markdown", chart.CellType)
	embedded := got["content/analysis.ipynb|notebook_embedded/analysis.ipynb/cell1-0.png"]
	assert.True(t, embedded.IsEmbedded)
	assert.True(t, embedded.IsCodeGenerated)
	assert.Equal(t, "code", embedded.CellType)
}

func TestFingerprintIgnoresVolatileKeys(t *testing.T) {
	a, err := Fingerprint([]byte("---\ntitle: A\nlastmod: 2024-01-01\n---\nbody\n"), true)
	require.NoError(t, err)
	b, err := Fingerprint([]byte("---\ntitle: A\nlastmod: 2025-06-30\nuid: x\n---\nbody\n"), true)
	require.NoError(t, err)
	c, err := Fingerprint([]byte("---\ntitle: B\n---\nbody\n"), true)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestFlatName(t *testing.T) {
	taken := map[string]string{"logo.png": "aaaa0000ffff"}
	assert.Equal(t, "logo.png", FlatName("logo.png", "aaaa0000ffff", taken))
	assert.Equal(t, "logo-bbbb1111.png", FlatName("logo.png", "bbbb1111eeee", taken))
	assert.Equal(t, "icon.svg", FlatName("icon.svg", "cccc", taken))
}

func TestMirrorPopulatesBuild(t *testing.T) {
	p := project(t)
	ctx := context.Background()
	res, err := NewScanner(p, nil, nil).Scan(ctx, nodes())
	require.NoError(t, err)

	out, err := NewMirror(p, nil).Run(ctx, res.Assets)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(p.Files(), "_index.md"))
	assert.FileExists(t, filepath.Join(p.Files(), "files", "deck.pdf"))
	assert.NoDirExists(t, filepath.Join(p.Files(), ".git"))
	assert.FileExists(t, filepath.Join(p.Build, "css", "site.css"))
	assert.FileExists(t, filepath.Join(p.Build, NoJekyllFile))
	assert.Equal(t, 1, out.Static)

	// Two distinct logo.png files share the flat directory.
	rootLogo := out.ImageName("img/logo.png")
	guidesLogo := out.ImageName("guides/logo.png")
	assert.Equal(t, "logo.png", rootLogo)
	assert.Regexp(t, `^logo-[0-9a-f]{8}\.png$`, guidesLogo)
	data, err := os.ReadFile(filepath.Join(p.Images(), guidesLogo))
	require.NoError(t, err)
	assert.Equal(t, "guides logo", string(data))
	assert.Equal(t, "chart.png", out.ImageName("img/chart.png"))
	assert.Equal(t, 3, out.Images)
	assert.Empty(t, out.ImageName("img/missing.png"))

	data, err = os.ReadFile(filepath.Join(p.Files(), NotebookEmbeddedDir, "analysis.ipynb", "cell1-0.png"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, 1, out.Embedded)
}

func TestMirrorSkipsMissingImages(t *testing.T) {
	p := project(t)
	assets := []model.AssetRecord{{
		Filename:       "ghost.png",
		IsImage:        true,
		RelativePath:   "img/ghost.png",
		AbsolutePath:   filepath.Join(p.Content, "img", "ghost.png"),
		ReferencedPage: "content/_index.md",
	}}
	out, err := NewMirror(p, nil).Run(context.Background(), assets)
	require.NoError(t, err)
	assert.Zero(t, out.Images)
	assert.Empty(t, out.ImageName("img/ghost.png"))
}
