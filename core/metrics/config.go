package metrics

import "github.com/kilianp07/rcpspoc/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks          []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusAddr exposes /metrics when set, e.g. ":9100".
	PrometheusAddr string                 `json:"prometheus_addr" yaml:"prometheus_addr"`
}
