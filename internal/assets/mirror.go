package assets

import (
	"context"
	"encoding/hex"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/docx"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/notebook"
)

// NoJekyllFile disables Jekyll processing when the build is published
// as-is to GitHub Pages.
const NoJekyllFile = ".nojekyll"

// Mirror populates the build directory from the content tree.
type Mirror struct {
	paths  config.Paths
	logger *slog.Logger
}

// Mirrored describes what Mirror wrote.
type Mirrored struct {
	Files    int
	Images   int
	Embedded int
	Static   int
	// names maps content-relative image paths to their flat file names.
	names map[string]string
}

// ImageName returns the flat images directory name for the image at
// contentRel, or "" when it was not mirrored.
func (m *Mirrored) ImageName(contentRel string) string {
	if m == nil {
		return ""
	}
	return m.names[path.Clean(contentRel)]
}

// NewMirror builds a mirror over the resolved project paths.
func NewMirror(paths config.Paths, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{paths: paths, logger: logger}
}

// Run copies the content tree to files/, local images to the flat images/
// directory, generated notebook and Word media beside their sources,
// static files to the build root and writes the .nojekyll marker.
func (m *Mirror) Run(ctx context.Context, assets []model.AssetRecord) (*Mirrored, error) {
	out := &Mirrored{names: make(map[string]string)}

	n, err := copyTree(ctx, m.paths.Content, m.paths.Files())
	if err != nil {
		return out, m.fail(err, m.paths.Content)
	}
	out.Files = n

	if err := m.images(ctx, assets, out); err != nil {
		return out, err
	}
	m.embedded(assets, out)

	if st, err := os.Stat(m.paths.Static); err == nil && st.IsDir() {
		n, err := copyTree(ctx, m.paths.Static, m.paths.Build)
		if err != nil {
			return out, m.fail(err, m.paths.Static)
		}
		out.Static = n
	}

	if err := os.WriteFile(filepath.Join(m.paths.Build, NoJekyllFile), nil, 0o644); err != nil {
		return out, m.fail(err, m.paths.Build)
	}
	m.logger.Info("Mirrored content",
		slog.Int("files", out.Files), slog.Int("images", out.Images),
		slog.Int("embedded", out.Embedded), slog.Int("static", out.Static))
	return out, nil
}

func (m *Mirror) fail(err error, p string) error {
	return errors.WrapError(err, errors.CategoryFileSystem, ErrMirrorFailed.Message()).
		WithContext("path", p).Build()
}

// images copies every local image into the flat directory. Distinct files
// sharing a base name get a content hash suffix.
func (m *Mirror) images(ctx context.Context, assets []model.AssetRecord, out *Mirrored) error {
	dir := m.paths.Images()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return m.fail(err, dir)
	}
	taken := make(map[string]string) // flat name -> digest
	for _, a := range assets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !a.IsImage || a.IsRemote || a.IsEmbedded || a.AbsolutePath == "" {
			continue
		}
		key := path.Clean(a.RelativePath)
		if _, done := out.names[key]; done {
			continue
		}
		digest, err := fileDigest(a.AbsolutePath)
		if err != nil {
			m.logger.Warn("Referenced image missing",
				logfields.Path(a.AbsolutePath), logfields.SourcePath(a.ReferencedPage), logfields.Error(err))
			continue
		}
		name := FlatName(a.Filename, digest, taken)
		if _, exists := taken[name]; !exists {
			if err := copyFile(a.AbsolutePath, filepath.Join(dir, name)); err != nil {
				return m.fail(err, a.AbsolutePath)
			}
			taken[name] = digest
			out.Images++
		}
		out.names[key] = name
	}
	return nil
}

// FlatName picks the flat directory name for a file with the given digest.
// The plain name is used when free or already holding identical content;
// otherwise the first eight digest characters are appended to the stem.
func FlatName(filename, digest string, taken map[string]string) string {
	if d, ok := taken[filename]; !ok || d == digest {
		return filename
	}
	ext := path.Ext(filename)
	return strings.TrimSuffix(filename, ext) + "-" + digest[:8] + ext
}

// embedded writes notebook outputs and Word media under files/.
func (m *Mirror) embedded(assets []model.AssetRecord, out *Mirrored) {
	notebooks := make(map[string]map[string]notebook.Image)
	for _, a := range assets {
		if !a.IsEmbedded || a.RelativePath == "" {
			continue
		}
		dst := filepath.Join(m.paths.Files(), filepath.FromSlash(a.RelativePath))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			m.logger.Warn("Cannot create embedded asset directory", logfields.Path(dst), logfields.Error(err))
			continue
		}
		src := m.paths.SourceFile(a.ReferencedPage)

		var err error
		switch {
		case strings.HasPrefix(a.RelativePath, NotebookEmbeddedDir+"/"):
			imgs, ok := notebooks[src]
			if !ok {
				imgs = notebookImages(src)
				notebooks[src] = imgs
			}
			img, found := imgs[a.Filename]
			if !found {
				continue
			}
			var data []byte
			if data, err = img.Bytes(); err == nil {
				err = os.WriteFile(dst, data, 0o644)
			}
		case strings.HasPrefix(a.RelativePath, DocxEmbeddedDir+"/"):
			err = docx.ExtractMedia(src, a.Filename, dst)
		default:
			continue
		}
		if err != nil {
			m.logger.Warn("Cannot write embedded asset", logfields.Path(dst), logfields.SourcePath(a.ReferencedPage), logfields.Error(err))
			continue
		}
		out.Embedded++
	}
}

func notebookImages(src string) map[string]notebook.Image {
	out := make(map[string]notebook.Image)
	nb, err := notebook.Read(src)
	if err != nil {
		return out
	}
	for _, img := range nb.Images() {
		out[img.Filename()] = img
	}
	return out
}

func fileDigest(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyTree copies regular files below src into dst, skipping dot entries.
func copyTree(ctx context.Context, src, dst string) (int, error) {
	count := 0
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if rel != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		count++
		return copyFile(p, target)
	})
	return count, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
