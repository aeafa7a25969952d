package health

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/healthops/cache"
	"github.com/jonwraymond/healthops/observe"
)

// ReportCacheKey is the fixed key the system report is memoized under.
const ReportCacheKey = "health:system"

// sinkTimeout bounds how long a fire-and-forget sink may run.
const sinkTimeout = 30 * time.Second

// ServiceConfig configures the health orchestrator.
type ServiceConfig struct {
	// MaxWorkers bounds checker parallelism. Default: 4.
	// The effective pool size is min(MaxWorkers, number of checkers).
	MaxWorkers int

	// CheckTimeout is the per-attempt time budget for one checker.
	// Default: 15 seconds.
	CheckTimeout time.Duration

	// MaxAttempts is the attempt count per checker. Default: 3.
	MaxAttempts int

	// Backoff is the linear backoff unit between attempts. Default: 500ms.
	Backoff time.Duration

	// TTLHealthy, TTLWarning and TTLCritical select the report cache TTL
	// from the report's own severity. A healthy report can live longer;
	// an unhealthy one must stay fresh.
	// Defaults: 60s / 30s / 10s.
	TTLHealthy  time.Duration
	TTLWarning  time.Duration
	TTLCritical time.Duration
}

func (c ServiceConfig) withDefaults() ServiceConfig {
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 4
	}
	if c.CheckTimeout <= 0 {
		c.CheckTimeout = 15 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.Backoff <= 0 {
		c.Backoff = 500 * time.Millisecond
	}
	if c.TTLHealthy <= 0 {
		c.TTLHealthy = 60 * time.Second
	}
	if c.TTLWarning <= 0 {
		c.TTLWarning = 30 * time.Second
	}
	if c.TTLCritical <= 0 {
		c.TTLCritical = 10 * time.Second
	}
	return c
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCache sets the report cache. Default: an in-process MemoryCache.
func WithCache(c cache.Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithLogger sets the logger. Default: no-op.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the self-observability instruments. Default: no-op.
func WithMetrics(m *observe.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithSinks registers fire-and-forget report consumers (alerting, metric
// persistence). Sinks run on their own goroutines after each run.
func WithSinks(sinks ...ReportSink) ServiceOption {
	return func(s *Service) { s.sinks = append(s.sinks, sinks...) }
}

// Service orchestrates a fixed set of named health checkers: it fans them
// out over a bounded worker pool, aggregates their results into a Report,
// memoizes the report with a severity-dependent TTL, and hands completed
// reports to the registered sinks.
//
// The checker set is supplied at construction and immutable afterwards.
type Service struct {
	config   ServiceConfig
	checkers map[string]Checker
	executor *Executor
	cache    cache.Cache
	logger   *zap.Logger
	metrics  *observe.Metrics
	sinks    []ReportSink

	group singleflight.Group

	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	runs        atomic.Int64
	runMicros   atomic.Int64
}

// NewService creates a new orchestrator over the given checkers.
// The map is copied; later mutation of the argument has no effect.
func NewService(checkers map[string]Checker, config ServiceConfig, opts ...ServiceOption) *Service {
	config = config.withDefaults()

	owned := make(map[string]Checker, len(checkers))
	for name, checker := range checkers {
		owned[name] = checker
	}

	s := &Service{
		config:   config,
		checkers: owned,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cache == nil {
		s.cache = cache.NewMemoryCache()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = observe.NewNopMetrics()
	}

	s.executor = NewExecutor(ExecutorConfig{
		Timeout:     config.CheckTimeout,
		MaxAttempts: config.MaxAttempts,
		Backoff:     config.Backoff,
	}, s.logger)

	return s
}

// CheckerNames returns the names of the registered checkers.
func (s *Service) CheckerNames() []string {
	names := make([]string, 0, len(s.checkers))
	for name := range s.checkers {
		names = append(names, name)
	}
	return names
}

// GetSystemHealth returns the current system report. Unless forceRefresh is
// set, a cached report within its TTL is returned without running any
// checker. Concurrent cache misses are collapsed into a single run.
//
// GetSystemHealth never fails: every internal failure mode degrades toward
// a (possibly critical) report rather than an error.
func (s *Service) GetSystemHealth(ctx context.Context, forceRefresh bool) *Report {
	if !forceRefresh {
		if report, ok := s.cachedReport(ctx); ok {
			s.cacheHits.Add(1)
			s.metrics.RecordCacheHit(ctx)
			return report
		}
	}
	s.cacheMisses.Add(1)
	s.metrics.RecordCacheMiss(ctx)

	v, _, _ := s.group.Do(ReportCacheKey, func() (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("orchestration run panicked", zap.Any("panic", r))
				result = s.panicReport(r)
			}
		}()
		return s.refresh(ctx), nil
	})
	return v.(*Report)
}

// GetCheck runs the named checker through the executor, bypassing the
// report cache. Returns ErrCheckerNotFound for an unknown name.
func (s *Service) GetCheck(ctx context.Context, name string) (Result, error) {
	checker, ok := s.checkers[name]
	if !ok {
		return Result{}, ErrCheckerNotFound
	}
	return s.executor.Run(ctx, name, checker), nil
}

// ServiceStats holds the orchestrator's rolling self-observability counters.
type ServiceStats struct {
	CacheHits   int64
	CacheMisses int64
	Runs        int64
	AvgRunMS    float64
}

// Stats returns the rolling counters. Advisory only.
func (s *Service) Stats() ServiceStats {
	stats := ServiceStats{
		CacheHits:   s.cacheHits.Load(),
		CacheMisses: s.cacheMisses.Load(),
		Runs:        s.runs.Load(),
	}
	if stats.Runs > 0 {
		stats.AvgRunMS = float64(s.runMicros.Load()) / float64(stats.Runs) / 1000.0
	}
	return stats
}

func (s *Service) cachedReport(ctx context.Context) (*Report, bool) {
	data, ok := s.cache.Get(ctx, ReportCacheKey)
	if !ok {
		return nil, false
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		// A corrupt entry is treated as a miss, not an error.
		s.logger.Warn("discarding corrupt cached report", zap.Error(err))
		_ = s.cache.Delete(ctx, ReportCacheKey)
		return nil, false
	}
	report.Cached = true
	return &report, true
}

func (s *Service) refresh(ctx context.Context) *Report {
	start := time.Now()
	report := s.runChecks(ctx)
	elapsed := time.Since(start)

	s.runs.Add(1)
	s.runMicros.Add(elapsed.Microseconds())
	s.metrics.RecordRun(ctx, report.OverallStatus.String(), elapsed)
	for name, result := range report.Checks {
		s.metrics.RecordCheck(ctx, name, result.Status.String())
	}

	s.storeReport(ctx, report)
	s.dispatch(ctx, report)

	s.logger.Info("health run completed",
		zap.String("overall", report.OverallStatus.String()),
		zap.Int("total", report.Summary.TotalChecks),
		zap.Int("failed", report.Summary.FailedChecks),
		zap.Duration("elapsed", elapsed),
	)
	return report
}

func (s *Service) runChecks(ctx context.Context) *Report {
	start := time.Now()

	workers := min(s.config.MaxWorkers, len(s.checkers))
	if workers == 0 {
		return NewReport(map[string]Result{}, time.Since(start))
	}

	sem := make(chan struct{}, workers)
	resultCh := make(chan namedResult, len(s.checkers))

	var wg sync.WaitGroup
	for name, checker := range s.checkers {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()
			// Contain failures of the scheduling layer itself, distinct
			// from the checker's own logic failing inside the executor.
			defer func() {
				if r := recover(); r != nil {
					resultCh <- namedResult{
						name: name,
						result: Critical(fmt.Sprintf("orchestration error: %v", r)).
							WithDetail("error", fmt.Sprint(r)).
							WithResponseTime(0),
					}
				}
			}()

			sem <- struct{}{}
			defer func() { <-sem }()

			resultCh <- namedResult{name: name, result: s.executor.Run(ctx, name, checker)}
		}(name, checker)
	}

	wg.Wait()
	close(resultCh)

	checks := make(map[string]Result, len(s.checkers))
	for nr := range resultCh {
		checks[nr.name] = nr.result
	}
	// The checks map must stay total even if a result was somehow lost.
	for name := range s.checkers {
		if _, ok := checks[name]; !ok {
			checks[name] = Critical("orchestration error: no result collected")
		}
	}

	return NewReport(checks, time.Since(start))
}

type namedResult struct {
	name   string
	result Result
}

func (s *Service) storeReport(ctx context.Context, report *Report) {
	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.Error("failed to encode report for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, ReportCacheKey, payload, s.ttlFor(report.OverallStatus)); err != nil {
		// A cache outage must not fail the caller; the report is still
		// returned, the next request just runs fresh.
		s.logger.Error("failed to cache report", zap.Error(err))
	}
}

func (s *Service) ttlFor(status Status) time.Duration {
	switch status {
	case StatusCritical:
		return s.config.TTLCritical
	case StatusWarning:
		return s.config.TTLWarning
	default:
		return s.config.TTLHealthy
	}
}

// dispatch hands the report to every sink on detached goroutines. Sink
// failures are logged and contained; they never reach the caller.
func (s *Service) dispatch(ctx context.Context, report *Report) {
	if len(s.sinks) == 0 {
		return
	}
	base := context.WithoutCancel(ctx)
	for _, sink := range s.sinks {
		go func(sink ReportSink) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("report sink panicked", zap.Any("panic", r))
				}
			}()
			sctx, cancel := context.WithTimeout(base, sinkTimeout)
			defer cancel()
			sink.Record(sctx, report)
		}(sink)
	}
}

func (s *Service) panicReport(cause any) *Report {
	checks := make(map[string]Result, len(s.checkers))
	for name := range s.checkers {
		checks[name] = Critical(fmt.Sprintf("orchestration error: %v", cause))
	}
	report := NewReport(checks, 0)
	report.OverallStatus = StatusCritical
	return report
}
