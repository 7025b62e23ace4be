package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter turns errors into exit codes and terminal messages.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
}

// NewCLIErrorAdapter creates an adapter. A nil logger means slog.Default.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, stderr: os.Stderr}
}

// ExitCodeFor maps an error to a process exit code.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	ce, ok := AsClassified(err)
	if !ok {
		return 1
	}
	switch ce.Category() {
	case CategoryValidation:
		return 2
	case CategoryTOC:
		return 3
	case CategoryConfig:
		return 7
	case CategoryExternal, CategoryNetwork, CategoryGit:
		return 8
	case CategoryInternal:
		return 10
	case CategoryBuild, CategoryFileSystem, CategoryConversion, CategoryRender, CategoryVerify, CategorySearch:
		return 11
	case CategoryStore:
		return 12
	default:
		return 1
	}
}

// FormatError renders err for the terminal. User-actionable categories are
// always shown in full; everything else is abbreviated unless verbose.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	ce, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return ce.Error()
	}
	switch ce.Category() {
	case CategoryConfig, CategoryValidation, CategoryTOC, CategoryNotFound:
		return fmt.Sprintf("Error: %s", ce.Message())
	default:
		return fmt.Sprintf("Error: %s (use -v for details)", ce.Message())
	}
}

// HandleError logs err, prints it and exits with the mapped code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	a.logError(err)
	_, _ = fmt.Fprintln(a.stderr, a.FormatError(err))
	os.Exit(a.ExitCodeFor(err))
}

func (a *CLIErrorAdapter) logError(err error) {
	ce, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", slog.String("error", err.Error()))
		return
	}
	if !a.verbose && !ce.IsFatal() {
		return
	}
	attrs := []slog.Attr{slog.String("category", string(ce.Category()))}
	for k, v := range ce.Context() {
		attrs = append(attrs, slog.Any(k, v))
	}
	if ce.Cause() != nil {
		attrs = append(attrs, slog.String("cause", ce.Cause().Error()))
	}
	a.logger.LogAttrs(context.Background(), levelFor(ce.Severity()), ce.Message(), attrs...)
}

func levelFor(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
