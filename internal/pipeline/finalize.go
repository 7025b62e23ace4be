package pipeline

import (
	"context"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/notify"
)

// textfileWriter is implemented by recorders that can dump their registry.
type textfileWriter interface {
	WriteTextfile(filename string) error
}

func outcomeLabel(o model.BuildOutcome) metrics.BuildOutcomeLabel {
	switch o {
	case model.OutcomeSuccess:
		return metrics.BuildOutcomeSuccess
	case model.OutcomeWarning:
		return metrics.BuildOutcomeWarning
	case model.OutcomeCanceled:
		return metrics.BuildOutcomeCanceled
	default:
		return metrics.BuildOutcomeFailed
	}
}

// stageFinalize records the build outcome in the store, writes the report
// and metrics, and publishes the completion event. Failing steps add
// warnings to the report; they never fail the build.
func (b *Builder) stageFinalize(ctx context.Context, bs *BuildState) error {
	r := bs.Report
	r.Finish(b.now())
	r.DeriveOutcome()

	b.recorder.ObserveBuildDuration(r.Duration())
	b.recorder.IncBuildOutcome(outcomeLabel(r.Outcome))

	warn := func(err error) {
		r.Warn(StageFinalize, err)
		bs.Logger.Warn("Finalize step failed", logfields.Error(err))
	}

	if bs.started {
		if err := b.store.FinishBuild(ctx, model.BuildRecord{
			ID:         r.BuildID,
			StartedAt:  r.Start,
			FinishedAt: r.End,
			Outcome:    r.Outcome,
			Nodes:      r.Nodes,
			Pages:      r.Pages + r.Sections,
		}); err != nil {
			warn(err)
		}
	}

	textfile := bs.Options.MetricsFile
	if textfile == "" {
		textfile = b.cfg.Metrics.Textfile
	}
	if tw, ok := b.recorder.(textfileWriter); ok && textfile != "" {
		if err := tw.WriteTextfile(textfile); err != nil {
			warn(err)
		}
	}

	reportPath := filepath.Join(b.paths.Build, ReportFile)
	errs, warns := r.Messages()
	if err := b.notifier.PublishBuild(ctx, notify.BuildEvent{
		BuildID:    r.BuildID,
		Outcome:    r.Outcome,
		StartedAt:  r.Start,
		FinishedAt: r.End,
		DurationMS: r.Duration().Milliseconds(),
		Nodes:      r.Nodes,
		Pages:      r.Pages + r.Sections,
		Converted:  r.Converted,
		Failed:     r.ConvertFailed,
		A11yErrors: r.A11yErrors,
		Warnings:   warns,
		Errors:     errs,
		Report:     reportPath,
	}); err != nil {
		warn(err)
	}

	r.DeriveOutcome()
	if _, err := r.Persist(b.paths.Build); err != nil {
		bs.Logger.Error("Could not write build report", logfields.Path(reportPath), logfields.Error(err))
	}

	bs.Logger.Info("Build finished", logfields.Stage(string(StageFinalize)),
		logfields.DurationMS(float64(r.Duration().Milliseconds())), logfields.Path(reportPath))
	bs.Logger.Info(r.Summary())
	return nil
}
