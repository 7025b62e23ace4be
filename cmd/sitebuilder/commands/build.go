package commands

import (
	"fmt"
	"io"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/pipeline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	File        string `short:"f" help:"Rebuild only pages generated from this source file" type:"path"`
	Debug       bool   `help:"Enable debug logging"`
	Verify      bool   `help:"Run the accessibility verifier on the site index after rendering"`
	VerifyAll   bool   `name:"verify-all" help:"Run the accessibility verifier on every page"`
	Summary     bool   `help:"Write the accessibility compliance summary page"`
	NoConvert   bool   `name:"no-convert" help:"Skip document conversion"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile" type:"path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	p, err := root.openProject(g, b.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	report, err := p.builder().Build(g.context(), b.options(p.cfg))
	if report != nil {
		printReport(g.stdout(), report)
	}
	return err
}

// options merges the flags with the verify block of the configuration.
func (b *BuildCmd) options(cfg *config.Config) pipeline.BuildOptions {
	opts := pipeline.BuildOptions{
		File:        b.File,
		NoConvert:   b.NoConvert,
		Verify:      b.Verify || b.VerifyAll || cfg.Verify.Enabled,
		VerifyMode:  cfg.Verify.Mode,
		Summary:     b.Summary || cfg.Verify.Summary,
		MetricsFile: b.MetricsFile,
	}
	if b.VerifyAll {
		opts.VerifyMode = config.VerifyAll
	}
	return opts
}

func printReport(w io.Writer, r *pipeline.BuildReport) {
	_, _ = fmt.Fprintf(w, "Build %s: %s\n", r.BuildID, r.Summary())
	errs, warns := r.Messages()
	for _, m := range warns {
		_, _ = fmt.Fprintf(w, "  warning: %s\n", m)
	}
	for _, m := range errs {
		_, _ = fmt.Fprintf(w, "  error: %s\n", m)
	}
}
