package notebook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sample = `{
 "metadata": {"kernelspec": {"language": "python", "name": "python3"}},
 "cells": [
  {"cell_type": "markdown", "source": ["# Analysis\n", "See ![chart](img/chart.png)"]},
  {"cell_type": "code", "source": "print(1)", "outputs": [
    {"output_type": "stream", "text": ["1\n"]},
    {"output_type": "display_data", "data": {"image/png": "aGVsbG8=\n", "text/plain": "<Figure>"}}
  ]},
  {"cell_type": "code", "source": [], "outputs": [
    {"output_type": "execute_result", "data": {"image/svg+xml": ["<svg>", "</svg>"]}}
  ]}
 ]
}`

func parse(t *testing.T) *Notebook {
	t.Helper()
	nb, err := Parse([]byte(sample))
	require.NoError(t, err)
	return nb
}

func TestParse_JoinsMultilineSources(t *testing.T) {
	nb := parse(t)
	require.Len(t, nb.Cells, 3)
	require.Equal(t, "# Analysis\nSee ![chart](img/chart.png)", nb.Cells[0].Source.String())
	require.Equal(t, "python", nb.Language())

	cells := nb.MarkdownCells()
	require.Len(t, cells, 1)
	require.Equal(t, 0, cells[0].Index)
}

func TestImages(t *testing.T) {
	imgs := parse(t).Images()
	require.Len(t, imgs, 2)

	require.Equal(t, "cell1-1.png", imgs[0].Filename())
	data, err := imgs[0].Bytes()
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
	require.Equal(t, "data:image/png;base64,aGVsbG8=", imgs[0].DataURI())

	require.Equal(t, "cell2-0.svg", imgs[1].Filename())
	svg, err := imgs[1].Bytes()
	require.NoError(t, err)
	require.Equal(t, "<svg></svg>", string(svg))
}

func TestMarkdown(t *testing.T) {
	md := parse(t).Markdown(func(img Image) string { return "nb/" + img.Filename() })
	require.Equal(t, strings.Join([]string{
		"# Analysis\nSee ![chart](img/chart.png)",
		"```python\nprint(1)\n```",
		"```\n1\n```",
		"![Output of cell 1](nb/cell1-1.png)",
		"![Output of cell 2](nb/cell2-0.svg)",
	}, "\n\n")+"\n", md)

	noImages := parse(t).Markdown(nil)
	require.NotContains(t, noImages, "Output of cell")
}

type fakeCells struct{}

func (fakeCells) Markdown(src string) (string, error) { return "<p>" + src + "</p>\n", nil }
func (fakeCells) Code(src, lang string) string        { return "<pre data-lang=\"" + lang + "\">" + src + "</pre>\n" }

func TestHTML(t *testing.T) {
	out, err := parse(t).HTML(fakeCells{})
	require.NoError(t, err)
	require.Contains(t, out, `<pre data-lang="python">print(1)</pre>`)
	require.Contains(t, out, `<pre class="nb-output">1
</pre>`)
	require.Contains(t, out, `src="data:image/png;base64,aGVsbG8="`)
	require.Contains(t, out, `src="data:image/svg+xml;base64,`)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	require.Error(t, err)
}
