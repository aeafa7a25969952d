package metric

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/jonwraymond/healthops/health"
)

// RecorderConfig configures metric persistence and retention.
type RecorderConfig struct {
	// CleanupProbability is the chance any single run triggers retention
	// cleanup, so cleanup cost is amortized instead of paid on every run.
	// Default: 0.02
	CleanupProbability float64

	// Retention windows are tiered by status: the record of things that
	// went badly wrong stays available for postmortems longest.
	// Defaults: healthy 7 days, warning 30 days, critical 90 days.
	HealthyRetention  time.Duration
	WarningRetention  time.Duration
	CriticalRetention time.Duration
}

func (c RecorderConfig) withDefaults() RecorderConfig {
	if c.CleanupProbability <= 0 {
		c.CleanupProbability = 0.02
	}
	if c.HealthyRetention <= 0 {
		c.HealthyRetention = 7 * 24 * time.Hour
	}
	if c.WarningRetention <= 0 {
		c.WarningRetention = 30 * 24 * time.Hour
	}
	if c.CriticalRetention <= 0 {
		c.CriticalRetention = 90 * 24 * time.Hour
	}
	return c
}

// Recorder persists run summaries and non-healthy check detail. It consumes
// completed reports as a health.ReportSink; the orchestrator invokes it on
// a detached goroutine, so a store outage never reaches the health caller.
type Recorder struct {
	store  Store
	config RecorderConfig
	logger *zap.Logger
}

// NewRecorder creates a metrics recorder over the given store.
func NewRecorder(store Store, config RecorderConfig, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, config: config.withDefaults(), logger: logger}
}

// Record persists one summary metric for the run and one metric per
// non-healthy check. Healthy per-check results are not persisted, to bound
// storage growth under normal operation.
func (r *Recorder) Record(ctx context.Context, report *health.Report) {
	now := time.Now().UTC()

	summary := &Metric{
		CheckName:  OverallCheckName,
		Status:     report.OverallStatus.String(),
		Message:    overallMessage(report),
		DurationMS: report.Summary.ExecutionTimeMS,
		Details: map[string]any{
			"total_checks":      report.Summary.TotalChecks,
			"successful_checks": report.Summary.SuccessfulChecks,
			"failed_checks":     report.Summary.FailedChecks,
			"success_rate":      report.Summary.SuccessRate,
			"failed_names":      report.Summary.FailedNames,
		},
		RecordedAt: now,
	}
	if err := r.store.Create(ctx, summary); err != nil {
		r.logger.Error("failed to record run summary metric", zap.Error(err))
	}

	for name, result := range report.Checks {
		if result.Status == health.StatusHealthy {
			continue
		}
		m := &Metric{
			CheckName:  name,
			Status:     result.Status.String(),
			Message:    result.Message,
			Details:    result.Details,
			RecordedAt: now,
		}
		if result.ResponseTimeMS != nil {
			m.DurationMS = *result.ResponseTimeMS
		}
		if err := r.store.Create(ctx, m); err != nil {
			r.logger.Error("failed to record check metric",
				zap.String("check", name), zap.Error(err))
		}
	}

	// #nosec G404 -- sampling probability, not security-sensitive.
	if rand.Float64() < r.config.CleanupProbability {
		r.Cleanup(ctx)
	}
}

// Cleanup deletes records past their status-tiered retention window.
// Called probabilistically from Record; exported so operators can force it.
func (r *Recorder) Cleanup(ctx context.Context) {
	now := time.Now().UTC()
	tiers := []struct {
		status    string
		retention time.Duration
	}{
		{health.StatusHealthy.String(), r.config.HealthyRetention},
		{health.StatusWarning.String(), r.config.WarningRetention},
		{health.StatusCritical.String(), r.config.CriticalRetention},
	}

	for _, tier := range tiers {
		deleted, err := r.store.DeleteOlderThan(ctx, now.Add(-tier.retention), tier.status)
		if err != nil {
			r.logger.Error("metric retention cleanup failed",
				zap.String("status", tier.status), zap.Error(err))
			continue
		}
		if deleted > 0 {
			r.logger.Info("metric retention cleanup",
				zap.String("status", tier.status), zap.Int64("deleted", deleted))
		}
	}
}

func overallMessage(report *health.Report) string {
	switch report.OverallStatus {
	case health.StatusHealthy:
		return "all checks passed"
	case health.StatusWarning:
		return "some checks degraded"
	default:
		return "some checks failed"
	}
}

var _ health.ReportSink = (*Recorder)(nil)
