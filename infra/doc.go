// Package infra holds the technical adapters of the solver: the zerolog
// logger, metrics exporters, the MQTT publisher and the PSPLIB reader.
// These packages depend only on interfaces defined in the core packages.
package infra
