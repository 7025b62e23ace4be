package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// VerifyCmd checks an already built site without rebuilding it.
type VerifyCmd struct {
	All          bool   `help:"Check every page instead of only the site index"`
	Summary      bool   `help:"Write the accessibility compliance summary page"`
	ConfigPa11y  string `name:"config-pa11y" help:"pa11y configuration file" type:"path"`
	ResetResults bool   `name:"reset-results" help:"Drop stored results before checking"`
}

func (v *VerifyCmd) Run(g *Global, root *CLI) error {
	p, err := root.openProject(g, false)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	if v.ConfigPa11y != "" {
		p.cfg.Verify.Pa11yConfig = v.ConfigPa11y
	}
	ctx := g.context()
	nodes, err := p.store.ListContent(ctx)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return errors.ValidationError("nothing to verify; run 'sitebuilder build' first").
			WithContext("database", p.paths.Database).Build()
	}

	verifier := p.builder().Verifier(p.logger)
	if v.ResetResults {
		if err := verifier.Reset(ctx); err != nil {
			return err
		}
		p.logger.Info("Cleared stored accessibility results")
	}

	mode := p.cfg.Verify.Mode
	if v.All {
		mode = config.VerifyAll
	}
	sum, err := verifier.Run(ctx, mode)
	if err != nil {
		return err
	}

	out := g.stdout()
	_, _ = fmt.Fprintf(out, "Checked %d page(s): %d passed, %d failed, %d not checked, %d missing (errors=%d warnings=%d notices=%d)\n",
		sum.Checked, sum.Passed, sum.Failed, sum.Unusable, sum.Missing, sum.Errors, sum.Warnings, sum.Notices)

	if v.Summary || p.cfg.Verify.Summary {
		path, err := verifier.WriteSummary(ctx)
		if err != nil {
			return err
		}
		p.logger.Info("Wrote compliance summary", logfields.Path(path))
		_, _ = fmt.Fprintf(out, "Summary: %s\n", path)
	}
	if p.cfg.Metrics.Textfile != "" {
		if err := p.recorder.WriteTextfile(p.cfg.Metrics.Textfile); err != nil {
			p.logger.Warn("Failed to write metrics textfile", logfields.Path(p.cfg.Metrics.Textfile), logfields.Error(err))
		}
	}
	return nil
}
