package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("render", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("render", ResultSuccess)
	pr.IncBuildOutcome(BuildOutcomeSuccess)
	pr.IncConversion(".pdf", "skipped")
	pr.IncConversion(".pdf", "skipped")
	pr.IncPageRendered("page")
	pr.AddAccessibilityIssues("error", 3)
	pr.AddAccessibilityIssues("notice", 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)

	require.InDelta(t, 2, testutil.ToFloat64(pr.conversions.WithLabelValues(".pdf", "skipped")), 0)
	require.InDelta(t, 3, testutil.ToFloat64(pr.a11yIssues.WithLabelValues("error")), 0)
	require.Equal(t, 1, testutil.CollectAndCount(pr.a11yIssues))
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	require.NotPanics(t, func() {
		pr.IncPageRendered("page")
		pr.ObserveStageDuration("scan", time.Second)
	})
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBuildOutcome(BuildOutcomeWarning)
	out := filepath.Join(t.TempDir(), "sitebuilder.prom")
	require.NoError(t, pr.WriteTextfile(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), `sitebuilder_build_outcomes_total{outcome="warning"} 1`)
}

func TestHTTPHandler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncPageRendered("section")

	rec := httptest.NewRecorder()
	HTTPHandler(pr.Registry()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "sitebuilder_pages_rendered_total"))
}
