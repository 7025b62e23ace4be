package convert

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// ResultStore is the part of the store the orchestrator needs.
type ResultStore interface {
	EnabledTargets(ctx context.Context, source model.Format) ([]model.Format, error)
	RecordConversion(ctx context.Context, r model.ConversionResult) (int64, error)
}

// Orchestrator runs every enabled conversion for a set of nodes.
type Orchestrator struct {
	store    ResultStore
	registry *Registry
	paths    config.Paths
	logger   *slog.Logger
	recorder metrics.Recorder
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) { o.recorder = metrics.OrNoop(r) }
}

// WithRegistry replaces the default converter registry.
func WithRegistry(r *Registry) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.registry = r
		}
	}
}

// NewOrchestrator builds an orchestrator with the default registry backed
// by pandoc.
func NewOrchestrator(st ResultStore, paths config.Paths, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    st,
		paths:    paths,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = DefaultRegistry(&Pandoc{Logger: o.logger})
	}
	return o
}

// Summary counts conversion attempts by status.
type Summary struct {
	Attempted int
	Succeeded int
	Failed    int
	Skipped   int
}

// Run converts every node with a source file to each enabled target and
// records one result per attempt. Only store failures and cancellation
// stop the run.
func (o *Orchestrator) Run(ctx context.Context, nodes []model.ContentNode) (Summary, error) {
	var sum Summary
	toolWarned := false
	for _, n := range nodes {
		if n.SourcePath == "" {
			continue
		}
		from := n.SourceFormat()
		targets, err := o.store.EnabledTargets(ctx, from)
		if err != nil {
			return sum, err
		}
		if len(targets) == 0 {
			continue
		}
		src := o.paths.SourceFile(n.SourcePath)
		if _, err := os.Stat(src); err != nil {
			o.logger.Warn("Skipping conversions for missing source",
				logfields.SourcePath(n.SourcePath), logfields.Error(err))
			continue
		}

		for _, to := range targets {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			rel := OutputFor(n.OutputPath, string(to))
			job := Job{Node: n, From: from, To: to, Source: src, Output: o.paths.OutputFile(rel), OutputRel: rel}
			res, convErr := o.convert(ctx, job)
			if errors.Is(ctx.Err(), context.Canceled) {
				return sum, ctx.Err()
			}
			if errors.Is(convErr, ErrToolNotFound) && !toolWarned {
				toolWarned = true
				o.logger.Warn("External converter not installed, skipping its targets", logfields.Error(convErr))
			}

			sum.Attempted++
			switch res.Status {
			case model.ConversionSuccess:
				sum.Succeeded++
			case model.ConversionSkipped:
				sum.Skipped++
			default:
				sum.Failed++
			}
			o.recorder.IncConversion(string(to), string(res.Status))
			if _, err := o.store.RecordConversion(ctx, res); err != nil {
				return sum, err
			}
		}
	}
	o.logger.Info("Conversions finished",
		slog.Int("attempted", sum.Attempted), slog.Int("succeeded", sum.Succeeded),
		slog.Int("failed", sum.Failed), slog.Int("skipped", sum.Skipped))
	return sum, nil
}

func (o *Orchestrator) convert(ctx context.Context, job Job) (model.ConversionResult, error) {
	res := model.ConversionResult{
		ContentID:    job.Node.ID,
		SourceFormat: job.From,
		TargetFormat: job.To,
		OutputPath:   job.OutputRel,
	}
	start := o.now()
	err := o.run(ctx, job)
	res.Duration = o.now().Sub(start)
	res.ConvertedAt = o.now()

	attrs := []any{logfields.SourcePath(job.Node.SourcePath), logfields.TargetFormat(string(job.To))}
	switch {
	case err == nil:
		res.Status = model.ConversionSuccess
		o.logger.Debug("Converted", append(attrs, logfields.OutputPath(job.OutputRel))...)
	case errors.Is(err, ErrToolNotFound), errors.Is(err, ErrNoConverter):
		res.Status = model.ConversionSkipped
		res.Message = err.Error()
		o.logger.Debug("Conversion skipped", append(attrs, logfields.Error(err))...)
	default:
		res.Status = model.ConversionFailed
		res.Message = err.Error()
		_ = os.Remove(job.Output)
		o.logger.Warn("Conversion failed", append(attrs, logfields.Error(err))...)
	}
	return res, err
}

func (o *Orchestrator) run(ctx context.Context, job Job) error {
	c, err := o.registry.Lookup(job.From, job.To)
	if err != nil {
		return err
	}
	if err := ensureDir(job.Output); err != nil {
		return err
	}
	return c.Convert(ctx, job)
}
