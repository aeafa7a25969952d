// Package health implements the health-check orchestration engine.
//
// A Checker probes one subsystem and returns a Result with a severity
// Status (healthy < warning < critical). The Executor runs a checker with a
// per-attempt timeout and linear-backoff retries, converting every failure
// mode (timeout, panic, exhausted retries) into a critical Result. The
// Service fans all registered checkers out over a bounded worker pool,
// aggregates the results into a Report whose overall status is the maximum
// severity, memoizes the report with a TTL chosen from that severity, and
// hands the report to fire-and-forget sinks for alerting and metric
// persistence.
//
// # Basic Usage
//
//	svc := health.NewService(map[string]health.Checker{
//	    "database": dbChecker,
//	    "memory":   memChecker,
//	}, health.ServiceConfig{})
//
//	report := svc.GetSystemHealth(ctx, false)
//	if report.OverallStatus == health.StatusCritical {
//	    // page someone
//	}
//
// GetSystemHealth never returns an error: a health endpoint that crashes
// defeats its purpose, so every internal failure degrades toward a critical
// report instead.
//
// # HTTP Endpoints
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, svc)
package health
