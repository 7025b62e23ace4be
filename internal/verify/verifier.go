package verify

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/nav"
)

// Store is the part of the store the verifier reads and writes.
type Store interface {
	ListContent(ctx context.Context) ([]model.ContentNode, error)
	RecordAccessibility(ctx context.Context, r model.AccessibilityResult) (int64, error)
	AccessibilityResults(ctx context.Context) ([]model.AccessibilityResult, error)
	ClearAccessibility(ctx context.Context) error
}

// Publisher receives every stored result.
type Publisher interface {
	PublishAccessibility(ctx context.Context, r model.AccessibilityResult) error
}

// Options configures a Verifier.
type Options struct {
	Paths     config.Paths
	Level     string // WCAG level recorded with results, "AA" by default
	Checker   Checker
	Publisher Publisher
	Logger    *slog.Logger
	Recorder  metrics.Recorder
}

// Verifier checks rendered pages and records the outcome.
type Verifier struct {
	store    Store
	opts     Options
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Summary counts one verification run.
type Summary struct {
	Checked  int
	Passed   int
	Failed   int // pages with errors
	Unusable int // pages the checker could not process
	Missing  int // pages listed in the store but absent on disk
	Errors   int
	Warnings int
	Notices  int
}

// New creates a Verifier. A nil Checker uses BuiltinChecker.
func New(st Store, opts Options) *Verifier {
	if opts.Checker == nil {
		opts.Checker = BuiltinChecker{}
	}
	if opts.Level == "" {
		opts.Level = "AA"
	}
	opts.Level = strings.ToUpper(opts.Level)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{store: st, opts: opts, logger: logger, recorder: metrics.OrNoop(opts.Recorder)}
}

// Reset drops every stored result.
func (v *Verifier) Reset(ctx context.Context) error {
	return v.store.ClearAccessibility(ctx)
}

// Pages returns the nodes checked in mode: only the site root index for
// single, every distinct HTML output otherwise.
func (v *Verifier) Pages(ctx context.Context, mode config.VerifyMode) ([]model.ContentNode, error) {
	nodes, err := v.store.ListContent(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(nodes))
	var pages []model.ContentNode
	for _, n := range nodes {
		if !strings.HasSuffix(n.OutputPath, ".html") || seen[n.OutputPath] {
			continue
		}
		if mode == config.VerifySingle && n.OutputPath != nav.RootIndex {
			continue
		}
		seen[n.OutputPath] = true
		pages = append(pages, n)
	}
	return pages, nil
}

// Run checks the pages selected by mode. Checker failures are recorded per
// page; only store errors and cancellation end the run early.
func (v *Verifier) Run(ctx context.Context, mode config.VerifyMode) (Summary, error) {
	pages, err := v.Pages(ctx, mode)
	if err != nil {
		return Summary{}, err
	}
	v.logger.Info("Checking accessibility",
		logfields.Count(len(pages)), slog.String("mode", string(mode)), logfields.Tool(v.opts.Checker.Name()))

	var sum Summary
	for _, n := range pages {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		res, err := v.CheckPage(ctx, n)
		if err != nil {
			if errors.HasCategory(err, errors.CategoryNotFound) {
				sum.Missing++
				v.logger.Warn("Rendered page not found", logfields.OutputPath(n.OutputPath))
				continue
			}
			return sum, err
		}
		sum.Checked++
		sum.Errors += res.ErrorCount
		sum.Warnings += res.WarningCount
		sum.Notices += res.NoticeCount
		switch {
		case res.Failure != "":
			sum.Unusable++
		case res.ErrorCount > 0:
			sum.Failed++
		default:
			sum.Passed++
		}
	}
	v.logger.Info("Accessibility check complete",
		slog.Int("checked", sum.Checked), slog.Int("passed", sum.Passed),
		slog.Int("failed", sum.Failed), slog.Int("errors", sum.Errors))
	return sum, nil
}

// CheckPage checks one rendered page, stores the result, fills the page's
// badge slot and publishes the result.
func (v *Verifier) CheckPage(ctx context.Context, n model.ContentNode) (model.AccessibilityResult, error) {
	htmlPath := v.opts.Paths.OutputFile(n.OutputPath)
	if _, err := os.Stat(htmlPath); err != nil {
		return model.AccessibilityResult{}, errors.WrapError(err, errors.CategoryNotFound, "rendered page not found").
			WithContext("output", n.OutputPath).Build()
	}

	res := model.AccessibilityResult{
		ContentID:  n.ID,
		OutputPath: n.OutputPath,
		Checker:    v.opts.Checker.Name(),
		WCAGLevel:  v.opts.Level,
		CheckedAt:  time.Now().UTC(),
	}
	issues, err := v.opts.Checker.Check(ctx, htmlPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		res.Failure = err.Error()
		res.BadgeHTML = UncheckedBadge(v.opts.Level)
		v.logger.Error("Accessibility check failed", logfields.OutputPath(n.OutputPath), logfields.Error(err))
	} else {
		res.Issues = issues
		res.Tally()
		res.BadgeHTML = Badge(v.opts.Level, res.ErrorCount)
	}

	if _, err := v.store.RecordAccessibility(ctx, res); err != nil {
		return res, err
	}
	v.recorder.AddAccessibilityIssues(string(model.IssueError), res.ErrorCount)
	v.recorder.AddAccessibilityIssues(string(model.IssueWarning), res.WarningCount)
	v.recorder.AddAccessibilityIssues(string(model.IssueNotice), res.NoticeCount)

	if ok, err := InjectBadge(htmlPath, res.BadgeHTML); err != nil {
		v.logger.Warn("Could not write accessibility badge", logfields.OutputPath(n.OutputPath), logfields.Error(err))
	} else if !ok {
		v.logger.Debug("Page has no badge slot", logfields.OutputPath(n.OutputPath))
	}

	if v.opts.Publisher != nil {
		if err := v.opts.Publisher.PublishAccessibility(ctx, res); err != nil {
			v.logger.Warn("Failed to publish accessibility result", logfields.OutputPath(n.OutputPath), logfields.Error(err))
		}
	}
	v.logger.Debug("Checked page", logfields.OutputPath(n.OutputPath),
		slog.Int("errors", res.ErrorCount), slog.Int("warnings", res.WarningCount), slog.Int("notices", res.NoticeCount))
	return res, nil
}
