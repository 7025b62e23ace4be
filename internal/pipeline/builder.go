package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/convert"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/notify"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/store"
	"git.home.luguber.info/inful/sitebuilder/internal/verify"
)

// Builder runs site builds. It carries everything a build needs; there is
// no package level state.
type Builder struct {
	cfg      *config.Config
	paths    config.Paths
	store    *store.Store
	logger   *slog.Logger
	recorder metrics.Recorder
	notifier notify.Publisher
	checker  verify.Checker
	registry *convert.Registry
	now      func() time.Time
	newID    func() string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = metrics.OrNoop(r) }
}

// WithPublisher sets the notification publisher.
func WithPublisher(p notify.Publisher) Option {
	return func(b *Builder) {
		if p != nil {
			b.notifier = p
		}
	}
}

// WithChecker overrides the accessibility checker chosen from config.
func WithChecker(c verify.Checker) Option {
	return func(b *Builder) { b.checker = c }
}

// WithRegistry overrides the converter registry.
func WithRegistry(r *convert.Registry) Option {
	return func(b *Builder) { b.registry = r }
}

// WithClock sets the time source used for build timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator sets the build ID source.
func WithIDGenerator(f func() string) Option {
	return func(b *Builder) {
		if f != nil {
			b.newID = f
		}
	}
}

// New creates a Builder over an open store.
func New(cfg *config.Config, paths config.Paths, st *store.Store, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		paths:    paths,
		store:    st,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		notifier: notify.Noop{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Config returns the configuration the builder was created with.
func (b *Builder) Config() *config.Config { return b.cfg }

// Paths returns the resolved project paths.
func (b *Builder) Paths() config.Paths { return b.paths }

// Store returns the store handle.
func (b *Builder) Store() *store.Store { return b.store }

// BuildOptions selects what one build does.
type BuildOptions struct {
	// File limits conversion and rendering to pages built from this
	// source. The build directory is not cleaned.
	File        string
	NoConvert   bool
	Verify      bool
	VerifyMode  config.VerifyMode
	Summary     bool
	MetricsFile string
}

// BuildState is the mutable state shared by the stages of one build.
type BuildState struct {
	Builder *Builder
	Options BuildOptions
	Report  *BuildReport
	Logger  *slog.Logger

	Nodes    []model.ContentNode
	Targets  []model.ContentNode // nodes selected by Options.File, or all
	Mirrored *assets.Mirrored
	Rendered render.Summary
	started  bool
}

func (bs *BuildState) logger() *slog.Logger {
	if bs.Logger != nil {
		return bs.Logger
	}
	return slog.Default()
}

func (bs *BuildState) recorder() metrics.Recorder {
	if bs.Builder == nil {
		return metrics.NoopRecorder{}
	}
	return bs.Builder.recorder
}

// Stages returns the stage list for opts, without finalize.
func (b *Builder) Stages(opts BuildOptions) []StageDef {
	return NewPipeline().
		Add(StagePrepare, b.stagePrepare).
		Add(StageResolve, b.stageResolve).
		Add(StageScan, b.stageScan).
		Add(StageMirror, b.stageMirror).
		AddIf(b.cfg.ConversionEnabled() && !opts.NoConvert, StageConvert, b.stageConvert).
		Add(StageRender, b.stageRender).
		AddIf(b.cfg.SearchEnabled() && opts.File == "", StageSearch, b.stageSearch).
		AddIf(opts.Verify, StageVerify, b.stageVerify).
		Build()
}

// Build runs one build. The report is always returned and persisted, also
// when a stage fails; the error is the first fatal or canceled stage.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (*BuildReport, error) {
	if opts.VerifyMode == "" {
		opts.VerifyMode = b.cfg.Verify.Mode
	}
	id := b.newID()
	bs := &BuildState{
		Builder: b,
		Options: opts,
		Report:  NewBuildReport(id, b.now()),
		Logger:  b.logger.With(logfields.BuildID(id)),
	}
	bs.Logger.Info("Build started", slog.String("root", b.paths.Root), slog.String("file", opts.File))

	runErr := RunStages(ctx, bs, b.Stages(opts))

	// Finalize records the outcome even for canceled builds.
	_ = RunStages(context.WithoutCancel(ctx), bs, []StageDef{{Name: StageFinalize, Fn: b.stageFinalize}})
	return bs.Report, runErr
}
