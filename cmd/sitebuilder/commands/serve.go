package commands

import (
	"context"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/pipeline"
	"git.home.luguber.info/inful/sitebuilder/internal/preview"
)

// ServeCmd builds the site, serves it and rebuilds when sources change.
type ServeCmd struct {
	Port         int           `short:"p" default:"8000" help:"HTTP port"`
	Host         string        `default:"" help:"Interface to listen on; all interfaces when empty"`
	RebuildEvery time.Duration `name:"rebuild-every" help:"Also rebuild on this interval (for example 10m); disabled when zero"`
	NoConvert    bool          `name:"no-convert" help:"Skip document conversion on rebuilds"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, paths, err := root.loadConfig()
	if err != nil {
		return err
	}

	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	// The configuration is reloaded for every build so edits to it apply
	// without restarting.
	build := func(ctx context.Context) (*pipeline.BuildReport, error) {
		p, err := root.openProject(g, false)
		if err != nil {
			return nil, err
		}
		defer func() { _ = p.Close() }()
		p.recorder = recorder
		report, err := p.builder().Build(ctx, pipeline.BuildOptions{
			NoConvert: s.NoConvert,
			Verify:    p.cfg.Verify.Enabled,
			Summary:   p.cfg.Verify.Summary,
		})
		if report != nil {
			printReport(g.stdout(), report)
		}
		return report, err
	}

	var watchFiles []string
	if cfg.Path() != "" {
		watchFiles = append(watchFiles, cfg.Path())
	}
	return preview.Serve(g.context(), preview.Options{
		Addr:         fmt.Sprintf("%s:%d", s.Host, s.Port),
		BuildDir:     paths.Build,
		Build:        build,
		WatchDirs:    []string{paths.Content, paths.Layouts, paths.Static},
		WatchFiles:   watchFiles,
		RebuildEvery: s.RebuildEvery,
		Registry:     reg,
		Logger:       g.Logger,
		Ready: func(addr string) {
			_, _ = fmt.Fprintf(g.stdout(), "Serving %s at http://%s/\n", paths.Build, addr)
		},
	})
}
