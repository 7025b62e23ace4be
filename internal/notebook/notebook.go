// Package notebook reads Jupyter notebooks (nbformat 4) and renders them
// to Markdown or HTML fragments.
package notebook

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// Notebook is the subset of nbformat the build uses.
type Notebook struct {
	Cells    []Cell   `json:"cells"`
	Metadata Metadata `json:"metadata"`
}

// Metadata holds the kernel language used for code cells.
type Metadata struct {
	KernelSpec struct {
		Language string `json:"language"`
		Name     string `json:"name"`
	} `json:"kernelspec"`
	LanguageInfo struct {
		Name string `json:"name"`
	} `json:"language_info"`
}

// Cell is one notebook cell.
type Cell struct {
	Type    string   `json:"cell_type"`
	Source  Lines    `json:"source"`
	Outputs []Output `json:"outputs,omitempty"`
}

// Output is one code cell output.
type Output struct {
	Type string           `json:"output_type"`
	Text Lines            `json:"text,omitempty"`
	Data map[string]Lines `json:"data,omitempty"`
}

// Lines accepts nbformat multiline strings: either a string or a list of
// strings that are concatenated.
type Lines string

func (l *Lines) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = Lines(s)
		return nil
	}
	var parts []string
	if err := json.Unmarshal(b, &parts); err != nil {
		return err
	}
	*l = Lines(strings.Join(parts, ""))
	return nil
}

func (l Lines) String() string { return string(l) }

// Image is an image produced by a code cell output.
type Image struct {
	Cell     int
	Output   int
	MimeType string
	Data     string // base64 for raster formats, markup for SVG
}

// Ext returns the file extension for the image mime type.
func (i Image) Ext() string { return model.ExtensionForMime(i.MimeType) }

// Bytes decodes the image payload.
func (i Image) Bytes() ([]byte, error) {
	if i.MimeType == "image/svg+xml" {
		return []byte(i.Data), nil
	}
	return base64.StdEncoding.DecodeString(strings.Join(strings.Fields(i.Data), ""))
}

// DataURI returns the image as an inline data URI.
func (i Image) DataURI() string {
	data := strings.Join(strings.Fields(i.Data), "")
	if i.MimeType == "image/svg+xml" {
		data = base64.StdEncoding.EncodeToString([]byte(i.Data))
	}
	return "data:" + i.MimeType + ";base64," + data
}

// Filename is the generated asset name, cell<cell>-<output><ext>.
func (i Image) Filename() string {
	return fmt.Sprintf("cell%d-%d%s", i.Cell, i.Output, i.Ext())
}

// imageTypes in preference order when an output carries several.
var imageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/svg+xml"}

// Parse decodes notebook JSON.
func Parse(data []byte) (*Notebook, error) {
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("decode notebook: %w", err)
	}
	return &nb, nil
}

// Read parses the notebook at path.
func Read(path string) (*Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Language returns the kernel language, defaulting to python.
func (nb *Notebook) Language() string {
	for _, l := range []string{nb.Metadata.LanguageInfo.Name, nb.Metadata.KernelSpec.Language} {
		if l = strings.TrimSpace(l); l != "" {
			return strings.ToLower(l)
		}
	}
	return "python"
}

// MarkdownCell is the source of one markdown cell.
type MarkdownCell struct {
	Index  int
	Source string
}

// MarkdownCells returns every markdown cell in order.
func (nb *Notebook) MarkdownCells() []MarkdownCell {
	var out []MarkdownCell
	for i, c := range nb.Cells {
		if c.Type == "markdown" {
			out = append(out, MarkdownCell{Index: i, Source: c.Source.String()})
		}
	}
	return out
}

// Images returns every image output, one per output, in cell order.
func (nb *Notebook) Images() []Image {
	var out []Image
	for ci, c := range nb.Cells {
		if c.Type != "code" {
			continue
		}
		for oi, o := range c.Outputs {
			if img, ok := outputImage(o); ok {
				img.Cell, img.Output = ci, oi
				out = append(out, img)
			}
		}
	}
	return out
}

func outputImage(o Output) (Image, bool) {
	for _, mt := range imageTypes {
		if d, ok := o.Data[mt]; ok {
			return Image{MimeType: mt, Data: d.String()}, true
		}
	}
	return Image{}, false
}

// outputText returns the textual part of an output, preferring stream text
// then text/plain.
func outputText(o Output) string {
	if o.Text != "" {
		return o.Text.String()
	}
	if t, ok := o.Data["text/plain"]; ok {
		return t.String()
	}
	return ""
}
