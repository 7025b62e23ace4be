package assets

import (
	"context"
	"log/slog"
	"os"
	"path"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/docx"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/gitinfo"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/notebook"
)

// Directory names for assets generated from inside notebooks and Word
// documents, below the mirrored files tree.
const (
	NotebookEmbeddedDir = "notebook_embedded"
	DocxEmbeddedDir     = "docx_embedded"
)

// Scanner extracts asset references from content sources.
type Scanner struct {
	paths  config.Paths
	times  *gitinfo.Resolver
	logger *slog.Logger
}

// Result is the outcome of one scan.
type Result struct {
	Assets  []model.AssetRecord
	Sources []model.SourceInfo
	Missing int
}

// NewScanner builds a scanner over the resolved project paths. times may
// be nil, in which case file mtimes are used.
func NewScanner(paths config.Paths, times *gitinfo.Resolver, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	if times == nil {
		times = gitinfo.New(paths.Content)
	}
	return &Scanner{paths: paths, times: times, logger: logger}
}

// Scan reads every distinct source once. Unreadable sources are logged and
// reported as missing; they never fail the scan.
func (s *Scanner) Scan(ctx context.Context, nodes []model.ContentNode) (*Result, error) {
	res := &Result{}
	seen := make(map[string]bool)
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if n.SourcePath == "" || seen[n.SourcePath] {
			continue
		}
		seen[n.SourcePath] = true

		info := model.SourceInfo{ContentID: n.ID}
		abs := s.paths.SourceFile(n.SourcePath)
		data, err := os.ReadFile(abs)
		if err != nil {
			res.Missing++
			info.Missing = true
			res.Sources = append(res.Sources, info)
			err = errors.WrapError(err, errors.CategoryFileSystem, ErrSourceUnreadable.Message()).
				WithContext("path", abs).Build()
			s.logger.Error("Content source unreadable",
				logfields.SourcePath(n.SourcePath), logfields.OutputPath(n.OutputPath), logfields.Error(err))
			continue
		}

		format := n.SourceFormat()
		info.Size = int64(len(data))
		if fp, err := Fingerprint(data, format == model.FormatMarkdown || format == model.FormatMarp); err == nil {
			info.Fingerprint = fp
		} else {
			s.logger.Warn("Fingerprint failed", logfields.SourcePath(n.SourcePath), logfields.Error(err))
		}
		when, src := s.times.LastModified(abs)
		info.LastModified, info.LastModifiedSource = when, string(src)
		res.Sources = append(res.Sources, info)

		var found []model.AssetRecord
		switch format {
		case model.FormatMarkdown, model.FormatMarp:
			found = s.markdownAssets(n, frontmatter.Strip(data), "")
		case model.FormatNotebook, model.FormatJupyter:
			found = s.notebookAssets(n, data)
		case model.FormatDOCX:
			found = s.docxAssets(n, abs)
		}
		res.Assets = append(res.Assets, found...)
	}
	s.logger.Info("Scanned content assets",
		logfields.Count(len(res.Assets)), slog.Int("sources", len(res.Sources)), slog.Int("missing", res.Missing))
	return res, nil
}

func (s *Scanner) markdownAssets(n model.ContentNode, body []byte, cellType string) []model.AssetRecord {
	var out []model.AssetRecord
	for _, l := range markdown.ExtractLinks(body) {
		dest := markdown.StripQuery(l.Destination)
		if a, ok := s.reference(n, dest); ok {
			a.CellType = cellType
			out = append(out, a)
		}
	}
	return out
}

// reference builds a record for dest when its extension has a known mime
// type; page links and anchors are not assets.
func (s *Scanner) reference(n model.ContentNode, dest string) (model.AssetRecord, bool) {
	ext := strings.ToLower(path.Ext(dest))
	mime := model.MimeTypeFor(ext)
	if mime == "" {
		return model.AssetRecord{}, false
	}
	a := model.AssetRecord{
		ContentID:      n.ID,
		Filename:       path.Base(dest),
		Extension:      ext,
		MimeType:       mime,
		IsImage:        model.IsImageExtension(ext),
		IsRemote:       markdown.IsRemote(dest),
		ReferencedPage: n.SourcePath,
	}
	if a.IsRemote {
		a.URL = dest
		return a, true
	}
	if !markdown.IsLocalAsset(dest) {
		return model.AssetRecord{}, false
	}
	a.RelativePath = ResolveReference(s.paths.ContentPrefix, n.SourcePath, dest)
	a.AbsolutePath = s.paths.SourceFile(joinPrefix(s.paths.ContentPrefix, a.RelativePath))
	return a, true
}

func (s *Scanner) notebookAssets(n model.ContentNode, data []byte) []model.AssetRecord {
	nb, err := notebook.Parse(data)
	if err != nil {
		s.logger.Error("Notebook unreadable", logfields.SourcePath(n.SourcePath), logfields.Error(err))
		return nil
	}
	var out []model.AssetRecord
	for _, cell := range nb.MarkdownCells() {
		out = append(out, s.markdownAssets(n, []byte(cell.Source), "markdown")...)
	}
	name := path.Base(n.SourcePath)
	for _, img := range nb.Images() {
		out = append(out, model.AssetRecord{
			ContentID:       n.ID,
			Filename:        img.Filename(),
			Extension:       img.Ext(),
			MimeType:        img.MimeType,
			IsImage:         true,
			IsEmbedded:      true,
			IsCodeGenerated: true,
			ReferencedPage:  n.SourcePath,
			RelativePath:    path.Join(NotebookEmbeddedDir, name, img.Filename()),
			CellType:        "code",
		})
	}
	return out
}

func (s *Scanner) docxAssets(n model.ContentNode, abs string) []model.AssetRecord {
	var out []model.AssetRecord
	doc, err := docx.Read(abs)
	if err != nil {
		s.logger.Error("Word document unreadable", logfields.SourcePath(n.SourcePath), logfields.Error(err))
		return nil
	}
	for _, ref := range doc.References() {
		if a, ok := s.reference(n, ref); ok {
			out = append(out, a)
		}
	}

	media, err := docx.Media(abs)
	if err != nil {
		s.logger.Warn("Word document media unreadable", logfields.SourcePath(n.SourcePath), logfields.Error(err))
		return out
	}
	name := path.Base(n.SourcePath)
	for _, m := range media {
		ext := strings.ToLower(path.Ext(m.Name))
		out = append(out, model.AssetRecord{
			ContentID:      n.ID,
			Filename:       m.Name,
			Extension:      ext,
			MimeType:       model.MimeTypeFor(ext),
			IsImage:        model.IsImageExtension(ext),
			IsEmbedded:     true,
			ReferencedPage: n.SourcePath,
			RelativePath:   path.Join(DocxEmbeddedDir, name, m.Name),
		})
	}
	return out
}

// ResolveReference turns dest, as written in the source at sourcePath,
// into a path relative to the content root. Site-absolute destinations
// ("/img/a.png") are taken from the content root.
func ResolveReference(contentPrefix, sourcePath, dest string) string {
	if strings.HasPrefix(dest, "/") {
		return strings.TrimPrefix(path.Clean(dest), "/")
	}
	rel := strings.TrimPrefix(sourcePath, contentPrefix+"/")
	if contentPrefix == "" {
		rel = sourcePath
	}
	return strings.TrimPrefix(path.Clean(path.Join(path.Dir(rel), dest)), "/")
}

func joinPrefix(prefix, rel string) string {
	if prefix == "" {
		return rel
	}
	return prefix + "/" + rel
}
