package logfields

import "log/slog"

// Canonical log field names shared by every stage.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyTitle      = "title"
	KeySource     = "source_path"
	KeyOutput     = "output_path"
	KeyParent     = "parent_output_path"
	KeySlug       = "slug"
	KeyLevel      = "level"
	KeyFormat     = "format"
	KeyTarget     = "target_format"
	KeyTool       = "tool"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyURL        = "url"
	KeyError      = "error"
)

func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Title(t string) slog.Attr        { return slog.String(KeyTitle, t) }
func SourcePath(p string) slog.Attr   { return slog.String(KeySource, p) }
func OutputPath(p string) slog.Attr   { return slog.String(KeyOutput, p) }
func ParentOutput(p string) slog.Attr { return slog.String(KeyParent, p) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Level(l int) slog.Attr           { return slog.Int(KeyLevel, l) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func TargetFormat(f string) slog.Attr { return slog.String(KeyTarget, f) }
func Tool(name string) slog.Attr      { return slog.String(KeyTool, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }

// Error renders err as a string attribute; nil yields an empty value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
