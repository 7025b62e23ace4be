package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/convert"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/hierarchy"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

func (b *Builder) matrix() convert.Matrix { return convert.MatrixWith(b.cfg.Conversion.Matrix) }

// stagePrepare resets the store, seeds the conversion capabilities and the
// site metadata, and empties the build directory for full builds.
func (b *Builder) stagePrepare(ctx context.Context, bs *BuildState) error {
	if err := b.store.Reset(ctx); err != nil {
		return NewFatalStageError(StagePrepare, err)
	}
	if err := b.store.SeedCapabilities(ctx, b.matrix().Capabilities()); err != nil {
		return NewFatalStageError(StagePrepare, err)
	}
	if err := b.store.SaveSiteInfo(ctx, SiteInfo(b.cfg)); err != nil {
		return NewFatalStageError(StagePrepare, err)
	}
	if err := b.store.StartBuild(ctx, bs.Report.BuildID, bs.Report.Start); err != nil {
		return NewFatalStageError(StagePrepare, err)
	}
	bs.started = true

	if bs.Options.File == "" {
		if err := cleanDir(b.paths.Build, b.paths.Database); err != nil {
			return NewFatalStageError(StagePrepare, errors.WrapError(err, errors.CategoryFileSystem, "clean build directory").
				WithContext("dir", b.paths.Build).Build())
		}
	}
	if err := os.MkdirAll(b.paths.Build, 0o755); err != nil {
		return NewFatalStageError(StagePrepare, errors.WrapError(err, errors.CategoryFileSystem, "create build directory").
			WithContext("dir", b.paths.Build).Build())
	}
	return nil
}

// SiteInfo maps the site configuration onto the stored site record.
func SiteInfo(cfg *config.Config) model.SiteInfo {
	s := cfg.Site
	return model.SiteInfo{
		Title:        s.Title,
		Author:       s.Author,
		Description:  s.Description,
		Logo:         s.Logo,
		Favicon:      s.Favicon,
		ThemeDefault: s.Theme.Default,
		ThemeLight:   s.Theme.Light,
		ThemeDark:    s.Theme.Dark,
		Language:     s.Language,
		GitHubURL:    s.GitHubURL,
		FooterText:   cfg.Footer.Text,
		Header:       s.Header,
	}
}

// cleanDir removes everything inside dir except entries containing keep.
func cleanDir(dir, keep string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if keep != "" && (keep == p || strings.HasPrefix(keep, p+string(filepath.Separator))) {
			continue
		}
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return nil
}

// Resolve places the table of contents without touching the store.
func (b *Builder) Resolve(logger *slog.Logger) (*hierarchy.Result, error) {
	if logger == nil {
		logger = b.logger
	}
	root := b.paths.ContentPrefix
	if root == "" {
		root = "."
	}
	return hierarchy.NewResolver(hierarchy.Options{
		ContentRoot:  root,
		Capabilities: b.matrix().Flags,
		Logger:       logger,
	}).Resolve(b.cfg.TOC)
}

func (b *Builder) stageResolve(ctx context.Context, bs *BuildState) error {
	res, err := b.Resolve(bs.Logger)
	if err != nil {
		return NewFatalStageError(StageResolve, err)
	}
	nodes, err := b.store.ReplaceContent(ctx, res.Nodes)
	if err != nil {
		return NewFatalStageError(StageResolve, err)
	}
	bs.Nodes = nodes
	bs.Targets = nodes
	bs.Report.Nodes = len(nodes)
	bs.Report.Duplicates = res.Duplicates
	bs.Logger.Info("Resolved table of contents",
		logfields.Count(len(nodes)), slog.Int("duplicates", res.Duplicates),
		slog.Int("skipped", res.Skipped), slog.Int("renamed", res.Renamed))
	for _, p := range hierarchy.Validate(nodes) {
		bs.Logger.Warn("Hierarchy invariant violated", logfields.OutputPath(p.OutputPath), slog.String("problem", p.Message))
	}

	if bs.Options.File == "" {
		return nil
	}
	want := b.paths.NormalizeSource(bs.Options.File)
	bs.Targets = nil
	for _, n := range nodes {
		if n.SourcePath == want {
			bs.Targets = append(bs.Targets, n)
		}
	}
	if len(bs.Targets) == 0 {
		return NewFatalStageError(StageResolve, render.ErrNoMatchingSource.WithContext("source", want))
	}
	return nil
}

func (b *Builder) stageScan(ctx context.Context, bs *BuildState) error {
	// A fresh resolver per build; it caches commit times.
	res, err := assets.NewScanner(b.paths, nil, bs.Logger).Scan(ctx, bs.Nodes)
	if err != nil {
		return NewFatalStageError(StageScan, err)
	}
	if err := b.store.ReplaceAssets(ctx, res.Assets); err != nil {
		return NewFatalStageError(StageScan, err)
	}
	if err := b.store.SaveSourceInfo(ctx, res.Sources); err != nil {
		return NewFatalStageError(StageScan, err)
	}
	bs.Report.Assets = len(res.Assets)
	bs.Report.MissingSources = res.Missing
	if res.Missing > 0 {
		return NewWarnStageError(StageScan, errors.FileSystemError("content sources missing").
			WithContext("count", res.Missing).Build())
	}
	return nil
}

func (b *Builder) stageMirror(ctx context.Context, bs *BuildState) error {
	recs, err := b.store.Assets(ctx)
	if err != nil {
		return NewFatalStageError(StageMirror, err)
	}
	m, err := assets.NewMirror(b.paths, bs.Logger).Run(ctx, recs)
	if err != nil {
		return NewFatalStageError(StageMirror, err)
	}
	bs.Mirrored = m
	bs.Report.MirroredFiles = m.Files
	bs.Report.MirroredImages = m.Images
	return nil
}
