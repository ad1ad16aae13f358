// Package metrics provides build metrics hooks for the site builder.
//
// Components receive a Recorder and default to NoopRecorder, so metrics stay optional
// and call sites never check for nil. When metrics.textfile is configured the CLI
// swaps in a PrometheusRecorder and writes the registry in the Prometheus text
// exposition format after each build, ready for node_exporter's textfile collector.
package metrics
