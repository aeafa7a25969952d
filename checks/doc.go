// Package checks provides the health probe implementations run by the
// orchestrator: database and cache round-trips, host resource gauges
// (memory, disk, load), log file inspection, API quota consumption,
// background worker liveness, and the in-memory store itself.
//
// Every checker obeys the failure-isolation contract: a failure while
// gathering diagnostics degrades the details of the result, never the
// primary signal, and no checker lets an internal error escape as a panic
// in its own code paths.
package checks
