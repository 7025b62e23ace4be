package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

type fakeStore struct {
	mu        sync.Mutex
	targets   map[model.Format][]model.Format
	results   []model.ConversionResult
	recordErr error
}

func (f *fakeStore) EnabledTargets(_ context.Context, source model.Format) ([]model.Format, error) {
	return f.targets[source], nil
}

func (f *fakeStore) RecordConversion(_ context.Context, r model.ConversionResult) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return 0, f.recordErr
	}
	f.results = append(f.results, r)
	return int64(len(f.results)), nil
}

func (f *fakeStore) result(id int64, to model.Format) (model.ConversionResult, bool) {
	for _, r := range f.results {
		if r.ContentID == id && r.TargetFormat == to {
			return r, true
		}
	}
	return model.ConversionResult{}, false
}

const notebookJSON = `{
 "metadata": {"kernelspec": {"language": "python"}},
 "cells": [
  {"cell_type": "markdown", "source": "# Results"},
  {"cell_type": "code", "source": "plot()", "outputs": [
    {"output_type": "display_data", "data": {"image/png": "aGVsbG8="}}
  ]}
 ]
}`

func project(t *testing.T) config.Paths {
	t.Helper()
	root := t.TempDir()
	p := config.Paths{
		Root:          root,
		Content:       filepath.Join(root, "content"),
		Build:         filepath.Join(root, "build"),
		ContentPrefix: "content",
	}
	write := func(rel, s string) {
		full := filepath.Join(p.Content, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(s), 0o644))
	}
	write("guides/intro.md", "---\ntitle: Intro\n---\n# Intro\n\nSome *emphasis* here.\n")
	write("nb.ipynb", notebookJSON)
	return p
}

var (
	introNode   = model.ContentNode{ID: 1, Title: "Intro", SourcePath: "content/guides/intro.md", OutputPath: "guides/intro.html"}
	nbNode      = model.ContentNode{ID: 2, Title: "Notebook", SourcePath: "content/nb.ipynb", OutputPath: "nb/index.html"}
	missingNode = model.ContentNode{ID: 3, Title: "Gone", SourcePath: "content/gone.md", OutputPath: "gone/index.html"}
	sectionNode = model.ContentNode{ID: 4, Title: "Guides", IsAutobuilt: true, OutputPath: "guides/index.html"}
)

func missingTool(context.Context, Job) error { return ErrToolNotFound }

func TestDefaultMatrix(t *testing.T) {
	m := DefaultMatrix()
	assert.True(t, m.Enabled(model.FormatMarkdown, model.FormatPDF))
	assert.True(t, m.Enabled(model.FormatNotebook, model.FormatNotebook))
	assert.False(t, m.Enabled(model.FormatPPT, model.FormatPDF))
	assert.Equal(t, []model.Format{model.FormatText, model.FormatPPT}, m[model.FormatPPT])

	flags := m.Flags(model.FormatDOCX)
	assert.True(t, flags.PDF)
	assert.False(t, flags.Notebook)
}

func TestMatrixWithOverrides(t *testing.T) {
	m := MatrixWith(map[string][]string{
		"md":   {"pdf", "PDF", ".txt"},
		".ppt": {},
	})
	assert.Equal(t, []model.Format{model.FormatPDF, model.FormatText}, m[model.FormatMarkdown])
	assert.Empty(t, m[model.FormatPPT])
	assert.True(t, m.Enabled(model.FormatDOCX, model.FormatTeX))
}

func TestCapabilitiesIncludeDisabledPairs(t *testing.T) {
	m := Matrix{model.FormatPPT: {model.FormatText}}
	caps := m.Capabilities()
	require.Len(t, caps, len(Targets))
	enabled := 0
	for _, c := range caps {
		assert.Equal(t, model.FormatPPT, c.SourceFormat)
		if c.Enabled {
			enabled++
			assert.Equal(t, model.FormatText, c.TargetFormat)
		}
	}
	assert.Equal(t, 1, enabled)
}

func TestOutputFor(t *testing.T) {
	assert.Equal(t, "files/guides/intro.docx", OutputFor("guides/intro.html", ".docx"))
	assert.Equal(t, "files/index.pdf", OutputFor("index.html", ".pdf"))
	assert.Equal(t, "files/talks/index.md", OutputFor("talks/index.html", ".md"))
}

func TestRunRecordsEveryAttempt(t *testing.T) {
	p := project(t)
	st := &fakeStore{targets: map[model.Format][]model.Format{
		model.FormatMarkdown: {model.FormatText, model.FormatMarkdown, model.FormatPDF},
		model.FormatNotebook: {model.FormatMarkdown, model.FormatNotebook},
	}}
	o := NewOrchestrator(st, p, WithRegistry(DefaultRegistry(ConverterFunc(missingTool))))

	sum, err := o.Run(context.Background(), []model.ContentNode{introNode, nbNode, missingNode, sectionNode})
	require.NoError(t, err)
	assert.Equal(t, Summary{Attempted: 5, Succeeded: 4, Skipped: 1}, sum)
	require.Len(t, st.results, 5)

	txt, ok := st.result(1, model.FormatText)
	require.True(t, ok)
	assert.Equal(t, model.ConversionSuccess, txt.Status)
	assert.Equal(t, "files/guides/intro.txt", txt.OutputPath)
	data, err := os.ReadFile(p.OutputFile(txt.OutputPath))
	require.NoError(t, err)
	assert.Equal(t, "Intro\n\nSome emphasis here.\n", string(data))

	pdf, _ := st.result(1, model.FormatPDF)
	assert.Equal(t, model.ConversionSkipped, pdf.Status)
	assert.NotEmpty(t, pdf.Message)

	md, _ := st.result(2, model.FormatMarkdown)
	assert.Equal(t, model.ConversionSuccess, md.Status)
	data, err = os.ReadFile(p.OutputFile(md.OutputPath))
	require.NoError(t, err)
	assert.Contains(t, string(data), "---\ntitle: Notebook\n---\n")
	assert.Contains(t, string(data), "```python\nplot()\n```")
	assert.Contains(t, string(data), "](../notebook_embedded/nb.ipynb/cell1-0.png)")

	_, ok = st.result(3, model.FormatText)
	assert.False(t, ok, "missing sources produce no results")
}

func TestRunFailureDoesNotStopOtherNodes(t *testing.T) {
	p := project(t)
	st := &fakeStore{targets: map[model.Format][]model.Format{
		model.FormatMarkdown: {model.FormatText},
		model.FormatNotebook: {model.FormatNotebook},
	}}
	reg := DefaultRegistry(nil)
	reg.Register(model.FormatMarkdown, model.FormatText, ConverterFunc(func(_ context.Context, job Job) error {
		require.NoError(t, os.WriteFile(job.Output, []byte("partial"), 0o644))
		return errors.New("boom")
	}))
	o := NewOrchestrator(st, p, WithRegistry(reg))

	sum, err := o.Run(context.Background(), []model.ContentNode{introNode, nbNode})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Succeeded)

	failed, _ := st.result(1, model.FormatText)
	assert.Equal(t, model.ConversionFailed, failed.Status)
	assert.Equal(t, "boom", failed.Message)
	assert.NoFileExists(t, p.OutputFile(failed.OutputPath))

	copied, _ := st.result(2, model.FormatNotebook)
	assert.Equal(t, model.ConversionSuccess, copied.Status)
	assert.FileExists(t, p.OutputFile("files/nb/index.ipynb"))
}

func TestRunWithoutConverterIsSkipped(t *testing.T) {
	p := project(t)
	st := &fakeStore{targets: map[model.Format][]model.Format{model.FormatMarkdown: {model.FormatTeX}}}
	o := NewOrchestrator(st, p, WithRegistry(NewRegistry(nil)))

	sum, err := o.Run(context.Background(), []model.ContentNode{introNode})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	assert.Contains(t, st.results[0].Message, ErrNoConverter.Error())
}

func TestRunReturnsStoreErrors(t *testing.T) {
	p := project(t)
	st := &fakeStore{
		targets:   map[model.Format][]model.Format{model.FormatMarkdown: {model.FormatMarkdown}},
		recordErr: errors.New("disk full"),
	}
	_, err := NewOrchestrator(st, p).Run(context.Background(), []model.ContentNode{introNode})
	require.EqualError(t, err, "disk full")
}

func TestRunStopsWhenCanceled(t *testing.T) {
	p := project(t)
	st := &fakeStore{targets: map[model.Format][]model.Format{model.FormatMarkdown: {model.FormatMarkdown}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewOrchestrator(st, p).Run(ctx, []model.ContentNode{introNode})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, st.results)
}

func TestPandocArgs(t *testing.T) {
	p := &Pandoc{}
	assert.Equal(t, []string{"in.md", "-o", "out.docx"},
		p.Args(Job{From: model.FormatMarkdown, To: model.FormatDOCX, Source: "in.md", Output: "out.docx"}))
	assert.Equal(t, []string{"in.marp", "-o", "out.ppt", "-f", "markdown", "-t", "pptx"},
		p.Args(Job{From: model.FormatMarp, To: model.FormatPPT, Source: "in.marp", Output: "out.ppt"}))
	assert.Equal(t, []string{"in.md", "-o", "out.pdf", "--standalone"},
		p.Args(Job{From: model.FormatMarkdown, To: model.FormatPDF, Source: "in.md", Output: "out.pdf"}))
}

func TestPandocMissingBinary(t *testing.T) {
	p := &Pandoc{Binary: "sitebuilder-no-such-pandoc"}
	assert.False(t, p.Available())
	err := p.Convert(context.Background(), Job{Source: "a.md", Output: "a.pdf"})
	require.ErrorIs(t, err, ErrToolNotFound)
}
