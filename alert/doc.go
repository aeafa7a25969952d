// Package alert raises and manages operator-facing alerts for critical
// health check results.
//
// The Coordinator consumes completed health reports and creates one alert
// per critical check, deduplicated so that at most one unresolved alert
// exists per source metric. Resolution and reopening are operator
// operations on the Store; the orchestrator never resolves alerts itself.
//
// SQLiteStore enforces the dedup invariant with a partial unique index so
// concurrent detections cannot create duplicates; MemoryStore serves tests
// and persistence-free runs.
package alert
