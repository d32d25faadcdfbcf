// Package metrics records publication statistics.
//
// Components receive a Recorder and default to NoopRecorder, so metric calls
// never need nil checks. When a metrics file is requested the orchestrator
// swaps in a PrometheusRecorder and writes the registry in the node_exporter
// textfile format after the run.
package metrics
