package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// Pandoc converts through the pandoc binary.
type Pandoc struct {
	Binary  string
	Timeout time.Duration // 0 disables the per-call limit
	Logger  *slog.Logger
}

// pandocReaders names the reader for source formats pandoc cannot infer
// from the file extension.
var pandocReaders = map[model.Format]string{
	model.FormatMarp:    "markdown",
	model.FormatText:    "markdown",
	model.FormatJupyter: "ipynb",
}

// pandocWriters does the same for targets.
var pandocWriters = map[model.Format]string{
	model.FormatMarp:    "markdown",
	model.FormatPPT:     "pptx",
	model.FormatJupyter: "ipynb",
}

// Args returns the pandoc command line for job.
func (p *Pandoc) Args(job Job) []string {
	args := []string{job.Source, "-o", job.Output}
	if r, ok := pandocReaders[job.From]; ok {
		args = append(args, "-f", r)
	}
	if w, ok := pandocWriters[job.To]; ok {
		args = append(args, "-t", w)
	}
	if job.To == model.FormatPDF || job.To == model.FormatTeX {
		args = append(args, "--standalone")
	}
	return args
}

func (p *Pandoc) binary() string {
	if p.Binary == "" {
		return "pandoc"
	}
	return p.Binary
}

// Available reports whether the binary can be found.
func (p *Pandoc) Available() bool {
	_, err := exec.LookPath(p.binary())
	return err == nil
}

func (p *Pandoc) Convert(ctx context.Context, job Job) error {
	bin, err := exec.LookPath(p.binary())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrToolNotFound, err)
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	// #nosec G204 -- binary comes from configuration, arguments are file paths
	cmd := exec.CommandContext(ctx, bin, p.Args(job)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if errStr := strings.TrimSpace(stderr.String()); errStr != "" && p.Logger != nil {
		p.Logger.Debug("pandoc stderr", logfields.SourcePath(job.Node.SourcePath), slog.String("error_output", errStr))
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrTimeout, p.Timeout)
		}
		output := strings.TrimSpace(stderr.String())
		if output == "" {
			output = strings.TrimSpace(stdout.String())
		}
		if output != "" {
			return fmt.Errorf("%w: %w: %s", ErrToolFailed, err, output)
		}
		return fmt.Errorf("%w: %w", ErrToolFailed, err)
	}
	return nil
}
