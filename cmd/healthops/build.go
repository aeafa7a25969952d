package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"

	"github.com/jonwraymond/healthops/alert"
	"github.com/jonwraymond/healthops/cache"
	"github.com/jonwraymond/healthops/checks"
	"github.com/jonwraymond/healthops/config"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/metric"
	"github.com/jonwraymond/healthops/observe"
)

// engine bundles the wired service with the handles the commands need.
type engine struct {
	service    *health.Service
	alertStore alert.Store
	closers    []func() error
}

// Close releases database and client handles.
func (e *engine) Close() {
	for _, fn := range e.closers {
		_ = fn()
	}
}

// buildEngine wires checkers, stores and sinks from the configuration.
func buildEngine(cfg config.Config, logger *zap.Logger, metrics *observe.Metrics) (*engine, error) {
	e := &engine{}

	var rdb redis.UniversalClient
	if cfg.Checks.Cache.Enabled || cfg.Checks.Worker.Enabled || cfg.Checks.APIUsage.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Checks.Cache.Addr,
			Password: cfg.Checks.Cache.Password,
			DB:       cfg.Checks.Cache.DB,
		})
		e.closers = append(e.closers, client.Close)
		rdb = client
	}

	checkers := map[string]health.Checker{}
	reportStore := cache.NewMemoryCache()

	if cfg.Checks.Database.Enabled {
		db, err := sql.Open(cfg.Checks.Database.Driver, cfg.Checks.Database.DSN)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("open database for checker: %w", err)
		}
		e.closers = append(e.closers, db.Close)
		checker := checks.NewDatabaseChecker(db, checks.DatabaseCheckerConfig{
			WarnLatency: cfg.Checks.Database.WarnLatency.Std(),
		})
		checkers[checker.Name()] = checker
	}
	if cfg.Checks.Cache.Enabled {
		checker := checks.NewCacheChecker(rdb, checks.CacheCheckerConfig{})
		checkers[checker.Name()] = checker
	}
	if cfg.Checks.Memory.Enabled {
		checker := checks.NewMemoryChecker(checks.MemoryCheckerConfig{
			WarningPercent:  cfg.Checks.Memory.WarningPercent,
			CriticalPercent: cfg.Checks.Memory.CriticalPercent,
		})
		checkers[checker.Name()] = checker
	}
	if cfg.Checks.Disk.Enabled {
		checker := checks.NewDiskChecker(checks.DiskCheckerConfig{
			Path:            cfg.Checks.Disk.Path,
			WarningPercent:  cfg.Checks.Disk.WarningPercent,
			CriticalPercent: cfg.Checks.Disk.CriticalPercent,
		})
		checkers[checker.Name()] = checker
	}
	if cfg.Checks.Load.Enabled {
		checker := checks.NewLoadChecker(checks.LoadCheckerConfig{
			WarningPerCore:  cfg.Checks.Load.WarningPerCore,
			CriticalPerCore: cfg.Checks.Load.CriticalPerCore,
		})
		checkers[checker.Name()] = checker
	}
	if cfg.Checks.Logs.Enabled {
		checker := checks.NewLogFileChecker(checks.LogFileCheckerConfig{
			Path:           cfg.Checks.Logs.Path,
			MaxSizeBytes:   cfg.Checks.Logs.MaxSizeBytes,
			WarningErrors:  cfg.Checks.Logs.WarningErrors,
			CriticalErrors: cfg.Checks.Logs.CriticalErrors,
		})
		checkers[checker.Name()] = checker
	}
	if cfg.Checks.APIUsage.Enabled {
		counterKey := cfg.Checks.APIUsage.CounterKey
		limit := cfg.Checks.APIUsage.Limit
		source := checks.UsageSourceFunc(func(ctx context.Context) (int64, int64, error) {
			used, err := rdb.Get(ctx, counterKey).Int64()
			if err != nil {
				return 0, 0, err
			}
			return used, limit, nil
		})
		checker := checks.NewAPIUsageChecker(source, checks.APIUsageCheckerConfig{})
		checkers[checker.Name()] = checker
	}
	if cfg.Checks.Worker.Enabled {
		source := checks.NewRedisWorkerSource(rdb,
			cfg.Checks.Worker.HeartbeatKey, cfg.Checks.Worker.QueueKey)
		checker := checks.NewWorkerChecker(source, checks.WorkerCheckerConfig{
			StaleAfter:     cfg.Checks.Worker.StaleAfter.Std(),
			WarnQueueDepth: cfg.Checks.Worker.WarnQueueDepth,
		})
		checkers[checker.Name()] = checker
	}
	if cfg.Checks.Store.Enabled {
		checker := checks.NewStoreChecker(reportStore)
		checkers[checker.Name()] = checker
	}

	alertStore, metricStore, err := openStores(cfg.Storage.Path, e)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.alertStore = alertStore

	e.service = health.NewService(checkers, health.ServiceConfig{
		MaxWorkers:   cfg.Service.MaxWorkers,
		CheckTimeout: cfg.Service.CheckTimeout.Std(),
		MaxAttempts:  cfg.Service.MaxAttempts,
		Backoff:      cfg.Service.Backoff.Std(),
		TTLHealthy:   cfg.Service.TTLHealthy.Std(),
		TTLWarning:   cfg.Service.TTLWarning.Std(),
		TTLCritical:  cfg.Service.TTLCritical.Std(),
	},
		health.WithCache(reportStore),
		health.WithLogger(logger),
		health.WithMetrics(metrics),
		health.WithSinks(
			alert.NewCoordinator(alertStore, logger),
			metric.NewRecorder(metricStore, metric.RecorderConfig{}, logger),
		),
	)
	return e, nil
}

// openStores opens the shared SQLite database backing both stores.
func openStores(path string, e *engine) (alert.Store, metric.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create storage directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	e.closers = append(e.closers, db.Close)

	alertStore, err := alert.OpenSQLiteStore(db)
	if err != nil {
		return nil, nil, err
	}
	metricStore, err := metric.OpenSQLiteStore(db)
	if err != nil {
		return nil, nil, err
	}
	return alertStore, metricStore, nil
}
