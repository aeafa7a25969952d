package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics records orchestration self-observability instruments.
//
// Contract:
//   - Safe for concurrent use.
//   - Must return quickly and never panic; these instruments are advisory
//     and not part of the engine's correctness contract.
type Metrics struct {
	runsTotal    metric.Int64Counter
	runDuration  metric.Float64Histogram
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
	checksByStat metric.Int64Counter
}

// NewMetrics creates instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runsTotal, err := meter.Int64Counter(
		"health.run.total",
		metric.WithDescription("Total number of orchestration runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"health.run.duration_ms",
		metric.WithDescription("Orchestration run duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"health.cache.hits",
		metric.WithDescription("Report cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"health.cache.misses",
		metric.WithDescription("Report cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	checksByStat, err := meter.Int64Counter(
		"health.check.total",
		metric.WithDescription("Check results by status"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		runsTotal:    runsTotal,
		runDuration:  runDuration,
		cacheHits:    cacheHits,
		cacheMisses:  cacheMisses,
		checksByStat: checksByStat,
	}, nil
}

// NewNopMetrics creates metrics backed by a no-op meter, for tests and
// callers that do not wire an exporter.
func NewNopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("healthops"))
	return m
}

// RecordRun records one completed orchestration run.
func (m *Metrics) RecordRun(ctx context.Context, overall string, d time.Duration) {
	opt := metric.WithAttributes(attribute.String("status", overall))
	m.runsTotal.Add(ctx, 1, opt)
	m.runDuration.Record(ctx, float64(d.Microseconds())/1000.0, opt)
}

// RecordCheck records one check result by status.
func (m *Metrics) RecordCheck(ctx context.Context, name, status string) {
	m.checksByStat.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", name),
		attribute.String("status", status),
	))
}

// RecordCacheHit records a report cache hit.
func (m *Metrics) RecordCacheHit(ctx context.Context) {
	m.cacheHits.Add(ctx, 1)
}

// RecordCacheMiss records a report cache miss.
func (m *Metrics) RecordCacheMiss(ctx context.Context) {
	m.cacheMisses.Add(ctx, 1)
}
