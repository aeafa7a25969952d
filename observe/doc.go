// Package observe provides logging and metrics plumbing for the health
// engine.
//
// Logging is built on zap; NewLogger constructs the production JSON logger
// from a level string. Metrics are OpenTelemetry instruments covering the
// orchestrator's self-observability counters (runs, run duration, report
// cache hits/misses, per-status check counts); wire them to an exporter by
// passing a real meter, or use NewNopMetrics when none is configured.
package observe
