package config

import (
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevels = normalization.New("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel maps free-form input to a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel { return logLevels.Normalize(raw) }

// SlogLevel converts to the slog equivalent.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormats = normalization.New("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat { return logFormats.Normalize(raw) }

// VerifyMode selects which pages the verifier checks.
type VerifyMode string

const (
	VerifySingle VerifyMode = "single"
	VerifyAll    VerifyMode = "all"
)

var verifyModes = normalization.New("verify mode", map[string]VerifyMode{
	"single": VerifySingle,
	"index":  VerifySingle,
	"all":    VerifyAll,
	"batch":  VerifyAll,
}, VerifySingle)

func NormalizeVerifyMode(raw string) VerifyMode { return verifyModes.Normalize(raw) }

// CheckerKind selects the accessibility checker implementation.
type CheckerKind string

const (
	CheckerAuto    CheckerKind = "auto"
	CheckerPa11y   CheckerKind = "pa11y"
	CheckerBuiltin CheckerKind = "builtin"
)

var checkerKinds = normalization.New("accessibility checker", map[string]CheckerKind{
	"auto":    CheckerAuto,
	"pa11y":   CheckerPa11y,
	"builtin": CheckerBuiltin,
}, CheckerAuto)

// ParseCheckerKind rejects unknown checker names.
func ParseCheckerKind(raw string) (CheckerKind, error) { return checkerKinds.Parse(raw) }
