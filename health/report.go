package health

import (
	"context"
	"sort"
	"time"
)

// Summary aggregates counts over one orchestration run.
type Summary struct {
	// TotalChecks is the number of registered checkers.
	TotalChecks int `json:"total_checks"`

	// SuccessfulChecks counts checks that did not end critical.
	SuccessfulChecks int `json:"successful_checks"`

	// FailedChecks counts checks that ended critical.
	FailedChecks int `json:"failed_checks"`

	// SuccessRate is SuccessfulChecks/TotalChecks as a percentage.
	// Defined as 100 when no checks are registered.
	SuccessRate float64 `json:"success_rate"`

	// ExecutionTimeMS is the wall time of the whole run.
	ExecutionTimeMS float64 `json:"execution_time_ms"`

	// FailedNames lists the names of critical checks, sorted.
	FailedNames []string `json:"failed_names,omitempty"`
}

// Report is the aggregate outcome of one orchestration run.
type Report struct {
	// OverallStatus is the maximum severity across all check results.
	// Critical when no checks ran: no data is never reported healthy.
	OverallStatus Status `json:"overall_status"`

	// Checks maps checker name to its result. Contains one entry per
	// registered checker even when a checker could not run.
	Checks map[string]Result `json:"checks"`

	// Summary holds run-level counts.
	Summary Summary `json:"summary"`

	// GeneratedAt is when the run completed.
	GeneratedAt time.Time `json:"generated_at"`

	// Cached reports whether this report was served from the cache.
	Cached bool `json:"cached"`
}

// NewReport aggregates a set of check results into a report.
func NewReport(checks map[string]Result, elapsed time.Duration) *Report {
	overall := StatusHealthy
	if len(checks) == 0 {
		overall = StatusCritical
	}

	var failed []string
	for name, result := range checks {
		overall = MaxStatus(overall, result.Status)
		if result.Status == StatusCritical {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)

	total := len(checks)
	successful := total - len(failed)
	rate := 100.0
	if total > 0 {
		rate = float64(successful) / float64(total) * 100.0
	}

	return &Report{
		OverallStatus: overall,
		Checks:        checks,
		Summary: Summary{
			TotalChecks:      total,
			SuccessfulChecks: successful,
			FailedChecks:     len(failed),
			SuccessRate:      rate,
			ExecutionTimeMS:  float64(elapsed.Microseconds()) / 1000.0,
			FailedNames:      failed,
		},
		GeneratedAt: time.Now(),
	}
}

// ReportSink consumes completed reports. Sinks run asynchronously after a
// run completes; implementations must contain their own failures.
type ReportSink interface {
	Record(ctx context.Context, report *Report)
}
