package convert

import (
	"context"
	"fmt"
	"sync"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// Job is one (node, target) conversion.
type Job struct {
	Node model.ContentNode
	From model.Format
	To   model.Format
	// Source and Output are absolute paths; OutputRel is the output
	// relative to the build root, slash separated.
	Source    string
	Output    string
	OutputRel string
}

// Converter produces Job.Output from Job.Source.
type Converter interface {
	Convert(ctx context.Context, job Job) error
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(ctx context.Context, job Job) error

func (f ConverterFunc) Convert(ctx context.Context, job Job) error { return f(ctx, job) }

type pair struct{ from, to model.Format }

// Registry resolves converters by format pair with an optional fallback
// for pairs nothing was registered for.
type Registry struct {
	mu       sync.RWMutex
	byPair   map[pair]Converter
	fallback Converter
}

// NewRegistry returns an empty registry using fallback for unregistered
// pairs. fallback may be nil.
func NewRegistry(fallback Converter) *Registry {
	return &Registry{byPair: make(map[pair]Converter), fallback: fallback}
}

// Register binds c to the pair, replacing any previous converter.
func (r *Registry) Register(from, to model.Format, c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPair[pair{from, to}] = c
}

// Lookup returns the converter for the pair.
func (r *Registry) Lookup(from, to model.Format) (Converter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byPair[pair{from, to}]; ok {
		return c, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("%w: %s -> %s", ErrNoConverter, from, to)
}

// DefaultRegistry registers the built-in converters over the given
// fallback, normally a Pandoc converter.
func DefaultRegistry(fallback Converter) *Registry {
	r := NewRegistry(fallback)
	r.Register(model.FormatMarkdown, model.FormatMarkdown, ConverterFunc(copySource))
	r.Register(model.FormatMarp, model.FormatMarp, ConverterFunc(copySource))
	r.Register(model.FormatTeX, model.FormatTeX, ConverterFunc(copySource))
	r.Register(model.FormatText, model.FormatText, ConverterFunc(copySource))
	r.Register(model.FormatPPT, model.FormatPPT, ConverterFunc(copySource))
	r.Register(model.FormatNotebook, model.FormatNotebook, ConverterFunc(copySource))
	r.Register(model.FormatJupyter, model.FormatJupyter, ConverterFunc(copySource))
	r.Register(model.FormatDOCX, model.FormatDOCX, ConverterFunc(copySource))

	r.Register(model.FormatMarkdown, model.FormatText, ConverterFunc(markdownToText))
	r.Register(model.FormatMarp, model.FormatText, ConverterFunc(markdownToText))
	r.Register(model.FormatMarp, model.FormatMarkdown, ConverterFunc(copySource))
	r.Register(model.FormatText, model.FormatMarkdown, ConverterFunc(copySource))
	r.Register(model.FormatNotebook, model.FormatMarkdown, ConverterFunc(notebookToMarkdown))
	r.Register(model.FormatNotebook, model.FormatText, ConverterFunc(notebookToText))
	r.Register(model.FormatDOCX, model.FormatMarkdown, ConverterFunc(docxToMarkdown))
	r.Register(model.FormatDOCX, model.FormatText, ConverterFunc(docxToText))
	return r
}
