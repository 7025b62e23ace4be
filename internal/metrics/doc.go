// Package metrics records build observability data.
//
// Components receive a Recorder through their constructors and default to
// NoopRecorder, so no caller needs nil checks:
//
//	recorder := metrics.NewPrometheusRecorder(prometheus.NewRegistry())
//	builder := pipeline.NewBuilder(cfg, paths, pipeline.WithRecorder(recorder))
//
// PrometheusRecorder can also be dumped once per run with WriteTextfile for
// the node_exporter textfile collector, or served by the preview server.
package metrics
