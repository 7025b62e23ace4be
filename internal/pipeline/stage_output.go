package pipeline

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/convert"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/search"
	"git.home.luguber.info/inful/sitebuilder/internal/verify"
)

func (b *Builder) converters(logger *slog.Logger) *convert.Registry {
	if b.registry != nil {
		return b.registry
	}
	return convert.DefaultRegistry(&convert.Pandoc{
		Binary:  b.cfg.Conversion.Pandoc,
		Timeout: b.cfg.Conversion.Timeout,
		Logger:  logger,
	})
}

func (b *Builder) stageConvert(ctx context.Context, bs *BuildState) error {
	orch := convert.NewOrchestrator(b.store, b.paths,
		convert.WithLogger(bs.Logger),
		convert.WithRecorder(b.recorder),
		convert.WithRegistry(b.converters(bs.Logger)))
	sum, err := orch.Run(ctx, bs.Targets)
	bs.Report.Converted = sum.Succeeded
	bs.Report.ConvertFailed = sum.Failed
	bs.Report.ConvertSkipped = sum.Skipped
	if err != nil {
		return NewFatalStageError(StageConvert, err)
	}
	if sum.Failed > 0 {
		return NewWarnStageError(StageConvert, errors.ConversionError("some conversions failed").
			WithContext("failed", sum.Failed).Build())
	}
	return nil
}

func (b *Builder) stageRender(ctx context.Context, bs *BuildState) error {
	r, err := render.New(b.store, render.Options{
		Paths:     b.paths,
		Menu:      b.cfg.Menu,
		BuildID:   bs.Report.BuildID,
		ImageName: bs.Mirrored.ImageName,
		Logger:    bs.Logger,
		Recorder:  b.recorder,
	})
	if err != nil {
		return NewFatalStageError(StageRender, err)
	}
	var sum render.Summary
	if bs.Options.File != "" {
		sum, err = r.RenderFile(ctx, bs.Options.File)
	} else {
		sum, err = r.RenderAll(ctx)
	}
	bs.Rendered = sum
	bs.Report.Pages = sum.Pages
	bs.Report.Sections = sum.Sections
	bs.Report.PagesFailed = sum.Failed
	if err != nil {
		return NewFatalStageError(StageRender, err)
	}
	if sum.Failed > 0 {
		return NewWarnStageError(StageRender, errors.RenderError("some pages failed to render").
			WithContext("failed", sum.Failed).Build())
	}
	return nil
}

// stageSearch indexes the rendered pages. Indexing problems never fail the
// build.
func (b *Builder) stageSearch(ctx context.Context, bs *BuildState) error {
	x := search.NewIndexer(b.paths, b.cfg.Search.Dir, bs.Logger)
	docs, err := x.Documents(ctx, bs.Nodes)
	if err != nil {
		return NewWarnStageError(StageSearch, err)
	}
	if err := x.Build(ctx, docs); err != nil {
		return NewWarnStageError(StageSearch, err)
	}
	bs.Report.Indexed = len(docs)
	return nil
}

// Verifier builds the accessibility verifier the builder uses, honouring
// WithChecker.
func (b *Builder) Verifier(logger *slog.Logger) *verify.Verifier {
	if logger == nil {
		logger = b.logger
	}
	checker := b.checker
	if checker == nil {
		checker = verify.NewChecker(b.cfg.Verify, logger)
	}
	return verify.New(b.store, verify.Options{
		Paths:     b.paths,
		Level:     b.cfg.Verify.WCAGLevel,
		Checker:   checker,
		Publisher: b.notifier,
		Logger:    logger,
		Recorder:  b.recorder,
	})
}

func (b *Builder) stageVerify(ctx context.Context, bs *BuildState) error {
	v := b.Verifier(bs.Logger)
	mode := bs.Options.VerifyMode
	if mode == "" {
		mode = config.VerifySingle
	}
	sum, err := v.Run(ctx, mode)
	bs.Report.A11yChecked = sum.Checked
	bs.Report.A11yErrors = sum.Errors
	bs.Report.A11yFailed = sum.Failed
	if err != nil {
		return NewFatalStageError(StageVerify, err)
	}
	if bs.Options.Summary {
		p, err := v.WriteSummary(ctx)
		if err != nil {
			return NewWarnStageError(StageVerify, err)
		}
		bs.Logger.Info("Wrote compliance summary", logfields.Path(p))
	}
	if sum.Unusable > 0 || sum.Missing > 0 {
		return NewWarnStageError(StageVerify, errors.VerifyError("some pages could not be checked").
			WithContext("unusable", sum.Unusable).WithContext("missing", sum.Missing).Build())
	}
	return nil
}
