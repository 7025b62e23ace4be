package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type mode string

const (
	modeSingle mode = "single"
	modeAll    mode = "all"
	modeNone   mode = "none"
)

func newModes() *Normalizer[mode] {
	return New("verify mode", map[string]mode{
		"single": modeSingle,
		"all":    modeAll,
		"none":   modeNone,
	}, modeSingle)
}

func TestNormalize(t *testing.T) {
	n := newModes()
	tests := []struct {
		name  string
		input string
		want  mode
	}{
		{"exact", "all", modeAll},
		{"case insensitive", "ALL", modeAll},
		{"padded", "  none ", modeNone},
		{"unknown falls back", "everything", modeSingle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestParse(t *testing.T) {
	n := newModes()

	got, err := n.Parse("All")
	require.NoError(t, err)
	require.Equal(t, modeAll, got)

	got, err = n.Parse("")
	require.NoError(t, err)
	require.Equal(t, modeSingle, got)

	_, err = n.Parse("bogus")
	require.ErrorContains(t, err, "invalid verify mode")
	require.ErrorContains(t, err, "[all none single]")
}

func TestUnderscoreAndHyphenEquivalent(t *testing.T) {
	n := New("checker", map[string]string{"pa11y-ci": "ci"}, "")
	require.True(t, n.Valid("PA11Y_CI"))
	require.Equal(t, []string{"pa11y-ci"}, n.Keys())
}
