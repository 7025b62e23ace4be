package commands

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/hierarchy"
	"git.home.luguber.info/inful/sitebuilder/internal/nav"
	"git.home.luguber.info/inful/sitebuilder/internal/pipeline"
)

// MenuCmd prints the resolved hierarchy and the menus seen from one page.
// It reads the configuration only; nothing is written.
type MenuCmd struct {
	Page string `short:"p" default:"index.html" help:"Output page the menu is computed for"`
}

func (m *MenuCmd) Run(g *Global, root *CLI) error {
	cfg, paths, err := root.loadConfig()
	if err != nil {
		return err
	}
	res, err := pipeline.New(cfg, paths, nil, pipeline.WithLogger(g.Logger)).Resolve(nil)
	if err != nil {
		return err
	}
	out := g.stdout()

	_, _ = fmt.Fprintf(out, "Hierarchy (%d nodes, %d duplicates, %d skipped, %d renamed)\n",
		len(res.Nodes), res.Duplicates, res.Skipped, res.Renamed)
	for _, n := range res.Nodes {
		kind := "page"
		if n.IsSection() {
			kind = "section"
		}
		src := n.SourcePath
		if src == "" {
			src = "-"
		}
		_, _ = fmt.Fprintf(out, "%s%s [%s] %s <- %s\n", strings.Repeat("  ", n.Level), n.Title, kind, n.OutputPath, src)
	}

	_, _ = fmt.Fprintf(out, "\nMenu for %s\n", m.Page)
	for _, it := range nav.BuildMenu(res.Nodes, m.Page) {
		_, _ = fmt.Fprintln(out, menuLine(it))
	}
	for _, it := range nav.ExternalItems(cfg.Menu, m.Page) {
		_, _ = fmt.Fprintln(out, menuLine(it))
	}

	if problems := hierarchy.Validate(res.Nodes); len(problems) > 0 {
		_, _ = fmt.Fprintf(out, "\nProblems\n")
		for _, pr := range problems {
			_, _ = fmt.Fprintf(out, "  %s\n", pr)
		}
	}
	return nil
}

func menuLine(it nav.Item) string {
	mark := " "
	if it.Active {
		mark = "*"
	}
	if it.External {
		mark = ">"
	}
	return fmt.Sprintf(" %s %s -> %s", mark, it.Title, it.Link)
}
