// Package metrics defines the sinks that observe solver runs. Sinks like the
// Prometheus, InfluxDB and MQTT implementations in infra/metrics record solve
// summaries and search progress and can be combined with NewMultiSink. The
// factory helpers return a MultiSink automatically when multiple sinks are
// configured.
package metrics
