package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// Checker inspects one rendered HTML file.
type Checker interface {
	Name() string
	Check(ctx context.Context, htmlPath string) ([]model.AccessibilityIssue, error)
}

// Pa11yChecker runs the pa11y CLI with the JSON reporter.
type Pa11yChecker struct {
	Binary string
	// Config is an optional pa11y JSON configuration file.
	Config string
	// Standard is passed as --standard when no Config is set, e.g. "WCAG2AA".
	Standard string
	Timeout  time.Duration
	Logger   *slog.Logger
}

func (p *Pa11yChecker) Name() string { return "pa11y" }

func (p *Pa11yChecker) binary() string {
	if p.Binary == "" {
		return "pa11y"
	}
	return p.Binary
}

// Available reports whether the pa11y binary can be found.
func (p *Pa11yChecker) Available() bool {
	_, err := exec.LookPath(p.binary())
	return err == nil
}

// Args returns the pa11y command line for htmlPath.
func (p *Pa11yChecker) Args(htmlPath string) []string {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		abs = htmlPath
	}
	args := []string{"file://" + filepath.ToSlash(abs), "--reporter", "json"}
	switch {
	case p.Config != "":
		cfg, err := filepath.Abs(p.Config)
		if err != nil {
			cfg = p.Config
		}
		args = append(args, "--config", cfg)
	case p.Standard != "":
		args = append(args, "--standard", p.Standard)
	}
	return args
}

// Check runs pa11y on htmlPath. pa11y exits non-zero when it finds issues,
// so the report on stdout is parsed whatever the exit status.
func (p *Pa11yChecker) Check(ctx context.Context, htmlPath string) ([]model.AccessibilityIssue, error) {
	bin, err := exec.LookPath(p.binary())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCheckerNotFound, err)
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	// #nosec G204 -- binary comes from configuration, arguments are file paths
	cmd := exec.CommandContext(ctx, bin, p.Args(htmlPath)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	if p.Logger != nil {
		p.Logger.Debug("pa11y finished", logfields.Path(htmlPath),
			slog.Int("stdout_bytes", stdout.Len()), slog.String("stderr", strings.TrimSpace(stderr.String())))
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: timed out after %s", ErrCheckerFailed, p.Timeout)
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		if runErr != nil {
			return nil, fmt.Errorf("%w: %w: %s", ErrCheckerFailed, runErr, strings.TrimSpace(stderr.String()))
		}
		return nil, nil
	}
	return ParseReport(out)
}

// ParseReport decodes a pa11y JSON report.
func ParseReport(data []byte) ([]model.AccessibilityIssue, error) {
	var issues []model.AccessibilityIssue
	if err := json.Unmarshal(data, &issues); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadReport, err)
	}
	for i := range issues {
		issues[i].Type = model.IssueType(strings.ToLower(string(issues[i].Type)))
	}
	return issues, nil
}

// NewChecker picks the checker for cfg. The auto kind uses pa11y when it
// is installed and falls back to the builtin checks.
func NewChecker(cfg config.VerifyConfig, logger *slog.Logger) Checker {
	if logger == nil {
		logger = slog.Default()
	}
	pa11y := &Pa11yChecker{
		Binary:   cfg.Pa11y,
		Config:   cfg.Pa11yConfig,
		Standard: Standard(cfg.WCAGLevel),
		Timeout:  cfg.Timeout,
		Logger:   logger,
	}
	switch cfg.Checker {
	case config.CheckerBuiltin:
		return BuiltinChecker{}
	case config.CheckerPa11y:
		return pa11y
	}
	if pa11y.Available() {
		return pa11y
	}
	logger.Info("pa11y not installed, using builtin accessibility checks", logfields.Tool(pa11y.binary()))
	return BuiltinChecker{}
}

// Standard maps a WCAG level such as "AA" to the pa11y standard name.
func Standard(level string) string {
	level = strings.ToUpper(strings.TrimSpace(level))
	switch level {
	case "A", "AA", "AAA":
		return "WCAG2" + level
	}
	return ""
}
