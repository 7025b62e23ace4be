package hierarchy

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// Problem is one broken structural invariant in a node set.
type Problem struct {
	OutputPath string
	Message    string
}

func (p Problem) String() string { return p.OutputPath + ": " + p.Message }

// Validate checks the structural invariants of a resolved node set: parents
// exist, levels increase by one, sibling orders are unique, sections are
// auto-built index pages and dedup keys are unique.
func Validate(nodes []model.ContentNode) []Problem {
	x := NewIndex(nodes)
	var problems []Problem
	report := func(n model.ContentNode, format string, args ...any) {
		problems = append(problems, Problem{OutputPath: n.OutputPath, Message: fmt.Sprintf(format, args...)})
	}

	keys := map[model.DedupKey]bool{}
	orders := map[siblingKey]string{}
	pages := map[string]string{}
	for _, n := range nodes {
		if keys[n.DedupKey()] {
			report(n, "duplicate entry %q", n.Title)
		}
		keys[n.DedupKey()] = true

		if n.IsRoot() {
			if n.Level != 0 {
				report(n, "root has level %d", n.Level)
			}
		} else if parent, ok := x.Lookup(n.ParentOutputPath); !ok {
			report(n, "parent %s does not exist", n.ParentOutputPath)
		} else if n.Level != parent.Level+1 {
			report(n, "level %d, parent level %d", n.Level, parent.Level)
		}

		k := siblingKey{n.ParentOutputPath, n.Order}
		if other, dup := orders[k]; dup {
			report(n, "order %d already used by %s", n.Order, other)
		}
		orders[k] = n.OutputPath

		if n.SourcePath != "" {
			if other, dup := pages[n.OutputPath]; dup && other != n.SourcePath {
				report(n, "output path also used by %s", other)
			}
			pages[n.OutputPath] = n.SourcePath
		}

		if n.SourcePath == "" {
			if !n.IsAutobuilt {
				report(n, "section is not marked auto-built")
			}
			if !strings.HasSuffix(n.OutputPath, "/index.html") {
				report(n, "section output does not end in /index.html")
			}
		}
	}
	return problems
}
