package commands

import (
	"fmt"
	"os"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/search"
)

// SearchCmd queries the index written by the last full build.
type SearchCmd struct {
	Query []string `arg:"" help:"Search terms"`
	Limit int      `short:"n" default:"10" help:"Maximum number of hits"`
}

func (s *SearchCmd) Run(g *Global, root *CLI) error {
	cfg, paths, err := root.loadConfig()
	if err != nil {
		return err
	}
	indexPath := search.NewIndexer(paths, cfg.Search.Dir, g.Logger).Path()
	if _, err := os.Stat(indexPath); err != nil {
		return errors.NewError(errors.CategoryNotFound, "search index not found; run 'sitebuilder build' first").
			WithContext("path", indexPath).Build()
	}

	hits, err := search.Search(indexPath, strings.Join(s.Query, " "), s.Limit)
	if err != nil {
		return err
	}
	out := g.stdout()
	if len(hits) == 0 {
		_, _ = fmt.Fprintln(out, "No matches")
		return nil
	}
	for _, h := range hits {
		title := h.Title
		if h.Section != "" {
			title = h.Section + " / " + title
		}
		_, _ = fmt.Fprintf(out, "%6.3f  %-40s  %s\n", h.Score, title, h.URL)
	}
	return nil
}
