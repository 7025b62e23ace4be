package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringUsesInjectedValues(t *testing.T) {
	oldV, oldC, oldT := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldV, oldC, oldT })

	Version = "v1.4.0"
	GitCommit = "0123456789abcdef"
	BuildTime = "2026-01-02T03:04:05Z"

	s := String()
	assert.Equal(t, "sitebuilder v1.4.0 (0123456789ab) built 2026-01-02T03:04:05Z", s)
}

func TestStringDefaults(t *testing.T) {
	assert.Contains(t, String(), "sitebuilder ")
}
