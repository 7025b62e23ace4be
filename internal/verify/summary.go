package verify

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// SummaryFile is the compliance summary page written below the build root.
const SummaryFile = "compliance-summary.html"

//go:embed templates/compliance-summary.html
var summaryFS embed.FS

var summaryTemplate = template.Must(template.ParseFS(summaryFS, "templates/compliance-summary.html"))

type summaryCell struct {
	Text  string
	Class string
}

type summaryRow struct {
	Title      string
	Link       string
	Cells      []summaryCell
	Checked    string
	CheckedISO string
}

type summaryPage struct {
	Title     string
	CSSPath   string
	Generated string
	Levels    []string
	Rows      []summaryRow
	Checked   int
	Passing   int
}

// WriteSummary renders the compliance table for every stored result to
// <build>/compliance-summary.html and returns the file path.
func (v *Verifier) WriteSummary(ctx context.Context) (string, error) {
	results, err := v.store.AccessibilityResults(ctx)
	if err != nil {
		return "", err
	}
	nodes, err := v.store.ListContent(ctx)
	if err != nil {
		return "", err
	}
	titles := make(map[int64]string, len(nodes))
	for _, n := range nodes {
		titles[n.ID] = n.Title
	}

	page := buildSummary(results, titles)
	page.CSSPath = render.CSSFile
	page.Generated = time.Now().UTC().Format(time.RFC3339)

	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, page); err != nil {
		return "", errors.WrapError(err, errors.CategoryVerify, "render compliance summary").Build()
	}
	out := v.opts.Paths.OutputFile(SummaryFile)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "create build directory").Build()
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "write compliance summary").
			WithContext("path", out).Build()
	}
	v.logger.Info("Wrote compliance summary", logfields.Path(out), slog.Int("pages", page.Checked))
	return out, nil
}

// buildSummary groups results by page, one column per WCAG level.
func buildSummary(results []model.AccessibilityResult, titles map[int64]string) summaryPage {
	levelSet := map[string]bool{}
	byPage := map[string]map[string]model.AccessibilityResult{}
	var order []string
	for _, r := range results {
		levelSet[r.WCAGLevel] = true
		if _, ok := byPage[r.OutputPath]; !ok {
			byPage[r.OutputPath] = map[string]model.AccessibilityResult{}
			order = append(order, r.OutputPath)
		}
		byPage[r.OutputPath][r.WCAGLevel] = r
	}
	levels := make([]string, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Strings(levels)
	sort.Strings(order)

	page := summaryPage{Title: "Accessibility Compliance Summary", Levels: levels}
	for _, p := range order {
		row := summaryRow{Link: p}
		passing := true
		var last time.Time
		for _, l := range levels {
			r, ok := byPage[p][l]
			switch {
			case !ok:
				row.Cells = append(row.Cells, summaryCell{Text: "Not checked", Class: "unchecked"})
				continue
			case r.Failure != "":
				row.Cells = append(row.Cells, summaryCell{Text: "Check failed", Class: "unchecked"})
				passing = false
			case r.ErrorCount == 0:
				row.Cells = append(row.Cells, summaryCell{Text: "Pass", Class: "pass"})
			default:
				row.Cells = append(row.Cells, summaryCell{Text: strconv.Itoa(r.ErrorCount) + " errors", Class: "fail"})
				passing = false
			}
			if row.Title == "" {
				row.Title = titles[r.ContentID]
			}
			if r.CheckedAt.After(last) {
				last = r.CheckedAt
			}
		}
		if row.Title == "" {
			row.Title = p
		}
		if !last.IsZero() {
			row.Checked = last.UTC().Format("2006-01-02 15:04")
			row.CheckedISO = last.UTC().Format(time.RFC3339)
		}
		page.Rows = append(page.Rows, row)
		page.Checked++
		if passing {
			page.Passing++
		}
	}
	return page
}
