package errors

import (
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("bad flag").Build(), 2},
		{"malformed toc", TOCError("toc is not a list").Build(), 3},
		{"config", ConfigError("missing site block").Build(), 7},
		{"external tool", ExternalError("pandoc missing").Build(), 8},
		{"render", RenderError("template failed").Build(), 11},
		{"store", StoreError("commit failed").Build(), 12},
		{"unclassified", stderrors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, nil)
	loud := NewCLIErrorAdapter(true, nil)

	cfg := ConfigError("toc must be a list").Build()
	require.Equal(t, "Error: toc must be a list", quiet.FormatError(cfg))

	st := WrapError(stderrors.New("locked"), CategoryStore, "commit content").Build()
	require.Equal(t, "Error: commit content (use -v for details)", quiet.FormatError(st))
	require.Contains(t, loud.FormatError(st), "locked")

	require.Equal(t, "Error: boom", quiet.FormatError(stderrors.New("boom")))
	require.Empty(t, quiet.FormatError(nil))
}
