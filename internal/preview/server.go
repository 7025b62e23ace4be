package preview

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// NewRouter serves the build directory plus /healthz, /status and, when reg
// is set, /metrics.
func NewRouter(buildDir string, rb *Rebuilder, reg *prom.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		st := rb.Status()
		code := http.StatusOK
		if !st.HasGoodBuild && st.LastError != "" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, st)
	})
	if reg != nil {
		r.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(reg))
	}

	files := http.FileServer(http.Dir(buildDir))
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(w, req)
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
