package commands

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/notify"
	"git.home.luguber.info/inful/sitebuilder/internal/pipeline"
	"git.home.luguber.info/inful/sitebuilder/internal/store"
)

// EnvLogLevel overrides the configured log level unless --verbose is set.
const EnvLogLevel = "SITEBUILDER_LOG_LEVEL"

// Global is shared state bound into every command.
type Global struct {
	Ctx    context.Context
	Logger *slog.Logger
	Out    io.Writer // command output
	Err    io.Writer // log output
}

func (g *Global) context() context.Context {
	if g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

func (g *Global) stdout() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Global) stderr() io.Writer {
	if g.Err == nil {
		return os.Stderr
	}
	return g.Err
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"_content.yml" type:"path"`
	Root    string           `help:"Project root; defaults to paths.root or the configuration directory" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" default:"withargs" help:"Build the site (default command)"`
	Verify VerifyCmd `cmd:"" help:"Check rendered pages for accessibility problems"`
	Init   InitCmd   `cmd:"" help:"Write an example configuration file"`
	Serve  ServeCmd  `cmd:"" help:"Serve the built site and rebuild on changes"`
	Search SearchCmd `cmd:"" help:"Query the full text search index"`
	Menu   MenuCmd   `cmd:"" help:"Print the resolved hierarchy and main menu"`
}

// AfterApply runs after flag parsing and sets up bootstrap logging. Commands
// that load the configuration reconfigure it from the logging block.
func (c *CLI) AfterApply(g *Global) error {
	config.LoadEnv(filepath.Dir(c.Config))
	g.Logger = newLogger(g.stderr(), c.level(false, config.LogLevelInfo), config.LogFormatText)
	slog.SetDefault(g.Logger)
	return nil
}

// level picks the log level: flags first, then EnvLogLevel, then the
// configured level.
func (c *CLI) level(debug bool, configured config.LogLevel) slog.Level {
	if c.Verbose || debug {
		return slog.LevelDebug
	}
	if raw := os.Getenv(EnvLogLevel); raw != "" {
		return config.NormalizeLogLevel(raw).SlogLevel()
	}
	return configured.SlogLevel()
}

func newLogger(w io.Writer, level slog.Level, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c *CLI) loadConfig() (*config.Config, config.Paths, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, config.Paths{}, err
	}
	paths, err := cfg.ResolvePaths(c.Root)
	if err != nil {
		return nil, config.Paths{}, errors.WrapError(err, errors.CategoryConfig, "resolve project paths").Fatal().Build()
	}
	return cfg, paths, nil
}

// project is everything a command needs to run pipeline operations.
type project struct {
	cfg      *config.Config
	paths    config.Paths
	store    *store.Store
	recorder *metrics.PrometheusRecorder
	notifier notify.Publisher
	logger   *slog.Logger
	closers  []func() error
}

// openProject loads the configuration, applies its logging block and opens
// the store and the event publisher. A publisher that cannot connect is
// logged and replaced by a no-op.
func (c *CLI) openProject(g *Global, debug bool) (*project, error) {
	cfg, paths, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	p := &project{cfg: cfg, paths: paths}

	out := g.stderr()
	if cfg.Logging.File != "" {
		logPath := cfg.Logging.File
		if !filepath.IsAbs(logPath) {
			logPath = filepath.Join(paths.Root, logPath)
		}
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "create log directory").
				WithContext("path", logPath).Build()
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "open log file").
				WithContext("path", logPath).Build()
		}
		p.closers = append(p.closers, f.Close)
		out = io.MultiWriter(out, f)
	}
	p.logger = newLogger(out, c.level(debug, cfg.Logging.Level), cfg.Logging.Format)
	g.Logger = p.logger
	slog.SetDefault(p.logger)

	st, err := store.Open(paths.Database)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	p.store = st.WithLogger(p.logger)
	p.closers = append(p.closers, st.Close)

	pub, err := notify.New(cfg.Notify, p.logger)
	if err != nil {
		p.logger.Warn("Notifications disabled", logfields.URL(cfg.Notify.NATSURL), logfields.Error(err))
		pub = notify.Noop{}
	}
	p.notifier = pub
	p.closers = append(p.closers, pub.Close)

	p.recorder = metrics.NewPrometheusRecorder(nil)
	return p, nil
}

func (p *project) builder(opts ...pipeline.Option) *pipeline.Builder {
	base := []pipeline.Option{
		pipeline.WithLogger(p.logger),
		pipeline.WithRecorder(p.recorder),
		pipeline.WithPublisher(p.notifier),
	}
	return pipeline.New(p.cfg, p.paths, p.store, append(base, opts...)...)
}

// Close releases resources in reverse order of acquisition.
func (p *project) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return stderrors.Join(errs...)
}
