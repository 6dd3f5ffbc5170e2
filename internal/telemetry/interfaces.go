// Package telemetry defines the narrow logging and metrics surfaces the
// engine packages depend on, so the simulation core never imports a
// concrete logging backend.
package telemetry

import (
	"log"

	"rockfall/engine/logging"
)

// Logger is the printf surface engine components log through.
type Logger interface {
	Printf(format string, args ...any)
}

// Metrics counts and gauges engine telemetry. Add accumulates a counter,
// Store overwrites a gauge.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }

type nopMetrics struct{}

func (nopMetrics) Add(string, uint64) {}

func (nopMetrics) Store(string, uint64) {}

// LoggerFunc adapts a function into a Logger. A nil func is a no-op, which
// lets tests pass LoggerFunc(nil) for silence.
type LoggerFunc func(format string, args ...any)

func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger. A nil logger yields the
// no-op implementation rather than a wrapper that checks on every call.
func WrapLogger(logger *log.Logger) Logger {
	if logger == nil {
		return nopLogger{}
	}
	return stdLogger{logger: logger}
}

type stdLogger struct {
	logger *log.Logger
}

func (s stdLogger) Printf(format string, args ...any) {
	s.logger.Printf(format, args...)
}

// WrapMetrics adapts the logging package's counter registry. A nil
// registry yields the no-op implementation.
func WrapMetrics(registry *logging.Metrics) Metrics {
	if registry == nil {
		return nopMetrics{}
	}
	return registryMetrics{registry: registry}
}

type registryMetrics struct {
	registry *logging.Metrics
}

func (m registryMetrics) Add(key string, delta uint64) {
	m.registry.TelemetryAdd(key, delta)
}

func (m registryMetrics) Store(key string, value uint64) {
	m.registry.TelemetryStore(key, value)
}
