// Package search builds and queries a full text index of the rendered
// site with bleve.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/hierarchy"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// DefaultDir is the index directory below the build root.
const DefaultDir = "search.bleve"

const batchSize = 100

// Document is one indexed page.
type Document struct {
	Title   string `json:"title"`
	Text    string `json:"text"`
	URL     string `json:"url"`
	Section string `json:"section"`
}

// Indexer writes the search index for a build.
type Indexer struct {
	paths  config.Paths
	dir    string
	logger *slog.Logger
}

// NewIndexer creates an Indexer writing to dir, resolved against the build
// root when relative.
func NewIndexer(paths config.Paths, dir string, logger *slog.Logger) *Indexer {
	if dir == "" {
		dir = DefaultDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{paths: paths, dir: dir, logger: logger}
}

// Path returns the absolute index location.
func (x *Indexer) Path() string {
	if filepath.IsAbs(x.dir) {
		return x.dir
	}
	return filepath.Join(x.paths.Build, x.dir)
}

// Documents reads the rendered page of every distinct output path. Pages
// missing on disk are logged and skipped.
func (x *Indexer) Documents(ctx context.Context, nodes []model.ContentNode) ([]Document, error) {
	idx := hierarchy.NewIndex(nodes)
	seen := make(map[string]bool, len(nodes))
	docs := make([]Document, 0, len(nodes))
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if seen[n.OutputPath] {
			continue
		}
		seen[n.OutputPath] = true

		f, err := os.Open(x.paths.OutputFile(n.OutputPath))
		if err != nil {
			x.logger.Warn("Skipping page missing from build", logfields.OutputPath(n.OutputPath), logfields.Error(err))
			continue
		}
		title, text, err := Extract(f)
		_ = f.Close()
		if err != nil {
			x.logger.Warn("Skipping unparsable page", logfields.OutputPath(n.OutputPath), logfields.Error(err))
			continue
		}
		if i := strings.LastIndex(title, " | "); i > 0 {
			title = title[:i]
		}
		if title == "" {
			title = n.Title
		}
		docs = append(docs, Document{Title: title, Text: text, URL: n.OutputPath, Section: section(idx, n)})
	}
	return docs, nil
}

// section is the title of the page's top-level ancestor, or its own title
// for root pages.
func section(idx *hierarchy.Index, n model.ContentNode) string {
	if anc := idx.Ancestors(n.OutputPath); len(anc) > 0 {
		return anc[0].Title
	}
	return n.Title
}

// Build replaces the index with docs. The new index is written next to
// the old one and renamed into place once complete.
func (x *Indexer) Build(ctx context.Context, docs []Document) error {
	start := time.Now()
	final := x.Path()
	tmp := final + ".tmp"
	_ = os.RemoveAll(tmp)
	if err := os.MkdirAll(filepath.Dir(tmp), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	index, err := bleve.New(tmp, bleve.NewIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	fail := func(err error) error {
		_ = index.Close()
		_ = os.RemoveAll(tmp)
		return err
	}

	batch := index.NewBatch()
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		if err := batch.Index(d.URL, d); err != nil {
			return fail(fmt.Errorf("failed to add %s to batch: %w", d.URL, err))
		}
		if batch.Size() >= batchSize {
			if err := index.Batch(batch); err != nil {
				return fail(fmt.Errorf("failed to index batch: %w", err))
			}
			batch = index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fail(fmt.Errorf("failed to index final batch: %w", err))
		}
	}
	if err := index.Close(); err != nil {
		_ = os.RemoveAll(tmp)
		return fmt.Errorf("failed to close index: %w", err)
	}

	if err := os.RemoveAll(final); err != nil {
		_ = os.RemoveAll(tmp)
		return fmt.Errorf("failed to remove old index: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.RemoveAll(tmp)
		return fmt.Errorf("failed to rename index: %w", err)
	}
	x.logger.Info("Search index written", logfields.Path(final), logfields.Count(len(docs)),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return nil
}

// Hit is one search result.
type Hit struct {
	URL     string
	Title   string
	Section string
	Score   float64
}

// Search runs a match query against the index at indexPath.
func Search(indexPath, query string, limit int) ([]Hit, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	index, err := bleve.Open(indexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer func() { _ = index.Close() }()

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	req.Fields = []string{"title", "section"}
	res, err := index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{URL: h.ID, Score: h.Score}
		if s, ok := h.Fields["title"].(string); ok {
			hit.Title = s
		}
		if s, ok := h.Fields["section"].(string); ok {
			hit.Section = s
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
