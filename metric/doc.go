// Package metric persists health check outcomes as append-only records.
//
// The Recorder consumes completed reports: every run produces one summary
// record under the "overall" name, and each non-healthy check produces one
// detail record. Retention is tiered by status (critical kept longest) and
// enforced by a probabilistic cleanup so no single run pays the full cost.
package metric
