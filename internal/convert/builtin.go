package convert

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	"git.home.luguber.info/inful/sitebuilder/internal/docx"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/nav"
	"git.home.luguber.info/inful/sitebuilder/internal/notebook"
)

func copySource(_ context.Context, job Job) error {
	in, err := os.Open(job.Source)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(job.Output)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func markdownToText(_ context.Context, job Job) error {
	data, err := os.ReadFile(job.Source)
	if err != nil {
		return err
	}
	return writeText(job, markdown.PlainText(frontmatter.Strip(data)))
}

// notebookToMarkdown writes the notebook as Markdown with a title
// frontmatter block. Output images point at the mirrored notebook media.
func notebookToMarkdown(_ context.Context, job Job) error {
	nb, err := notebook.Read(job.Source)
	if err != nil {
		return err
	}
	embedded := path.Join("files", assets.NotebookEmbeddedDir, path.Base(job.Node.SourcePath))
	body := nb.Markdown(func(img notebook.Image) string {
		return nav.RelativeTo(job.OutputRel, path.Join(embedded, img.Filename()))
	})
	out, err := frontmatter.Prepend(map[string]any{"title": job.Node.Title}, []byte(body))
	if err != nil {
		return err
	}
	return writeText(job, string(out))
}

func notebookToText(_ context.Context, job Job) error {
	nb, err := notebook.Read(job.Source)
	if err != nil {
		return err
	}
	return writeText(job, markdown.PlainText([]byte(nb.Markdown(nil))))
}

func docxToMarkdown(_ context.Context, job Job) error {
	doc, err := docx.Read(job.Source)
	if err != nil {
		return err
	}
	return writeText(job, doc.Markdown())
}

func docxToText(_ context.Context, job Job) error {
	doc, err := docx.Read(job.Source)
	if err != nil {
		return err
	}
	return writeText(job, doc.Text())
}

func writeText(job Job, s string) error {
	if !strings.HasSuffix(s, "\n") && s != "" {
		s += "\n"
	}
	return os.WriteFile(job.Output, []byte(s), 0o644)
}

// OutputFor returns where a conversion of the node to target is written,
// relative to the build root: files/<dir of the page>/<page base><target>.
func OutputFor(outputPath string, target string) string {
	dir := path.Dir(outputPath)
	base := strings.TrimSuffix(path.Base(outputPath), path.Ext(outputPath))
	if dir == "." {
		return path.Join("files", base+target)
	}
	return path.Join("files", dir, base+target)
}

func ensureDir(p string) error {
	return os.MkdirAll(filepath.Dir(p), 0o755)
}
