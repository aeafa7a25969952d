package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/healthops/health"
)

// WorkerSource reports the state of a background worker fleet.
type WorkerSource interface {
	// LastHeartbeat returns the most recent worker heartbeat.
	LastHeartbeat(ctx context.Context) (time.Time, error)

	// QueueDepth returns the number of pending jobs.
	QueueDepth(ctx context.Context) (int64, error)
}

// WorkerCheckerConfig configures the background worker checker.
type WorkerCheckerConfig struct {
	// StaleAfter marks the fleet critical when no heartbeat is newer.
	// Default: 2 minutes
	StaleAfter time.Duration

	// WarnQueueDepth triggers warning when pending jobs exceed it.
	// Default: 1000
	WarnQueueDepth int64
}

// WorkerChecker verifies the background worker fleet is alive (heartbeat
// freshness) and keeping up (queue depth).
type WorkerChecker struct {
	source WorkerSource
	config WorkerCheckerConfig
}

// NewWorkerChecker creates a worker checker over a worker source.
func NewWorkerChecker(source WorkerSource, config WorkerCheckerConfig) *WorkerChecker {
	if config.StaleAfter <= 0 {
		config.StaleAfter = 2 * time.Minute
	}
	if config.WarnQueueDepth <= 0 {
		config.WarnQueueDepth = 1000
	}
	return &WorkerChecker{source: source, config: config}
}

// Name returns the name of this checker.
func (c *WorkerChecker) Name() string {
	return "worker"
}

// Check performs the worker health check.
func (c *WorkerChecker) Check(ctx context.Context) health.Result {
	beat, err := c.source.LastHeartbeat(ctx)
	if err != nil {
		return health.Critical(fmt.Sprintf("worker heartbeat unavailable: %v", err)).
			WithDetail("error", err.Error())
	}

	age := time.Since(beat)
	details := map[string]any{
		"last_heartbeat": beat.Format(time.RFC3339),
		"heartbeat_age":  age.Round(time.Second).String(),
	}

	// Queue depth is a sub-metric; its failure degrades details only.
	depth, err := c.source.QueueDepth(ctx)
	if err != nil {
		details["queue_error"] = err.Error()
		depth = -1
	} else {
		details["queue_depth"] = depth
	}

	switch {
	case age > c.config.StaleAfter:
		return health.Critical(fmt.Sprintf("no worker heartbeat for %s", age.Round(time.Second))).
			WithDetails(details)
	case depth > c.config.WarnQueueDepth:
		return health.Warning(fmt.Sprintf("worker queue backlog: %d pending jobs", depth)).
			WithDetails(details)
	default:
		return health.Healthy("worker fleet OK").WithDetails(details)
	}
}

var _ health.Checker = (*WorkerChecker)(nil)

// RedisWorkerSource reads worker state from Redis: a heartbeat timestamp
// key written by the workers and a list used as the job queue.
type RedisWorkerSource struct {
	client       redis.UniversalClient
	heartbeatKey string
	queueKey     string
}

// NewRedisWorkerSource creates a Redis-backed worker source.
func NewRedisWorkerSource(client redis.UniversalClient, heartbeatKey, queueKey string) *RedisWorkerSource {
	if heartbeatKey == "" {
		heartbeatKey = "workers:heartbeat"
	}
	if queueKey == "" {
		queueKey = "workers:queue"
	}
	return &RedisWorkerSource{client: client, heartbeatKey: heartbeatKey, queueKey: queueKey}
}

// LastHeartbeat reads and parses the heartbeat key.
func (s *RedisWorkerSource) LastHeartbeat(ctx context.Context) (time.Time, error) {
	raw, err := s.client.Get(ctx, s.heartbeatKey).Result()
	if err != nil {
		return time.Time{}, fmt.Errorf("read heartbeat: %w", err)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse heartbeat %q: %w", raw, err)
	}
	return t, nil
}

// QueueDepth returns the length of the job queue list.
func (s *RedisWorkerSource) QueueDepth(ctx context.Context) (int64, error) {
	depth, err := s.client.LLen(ctx, s.queueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("read queue depth: %w", err)
	}
	return depth, nil
}

var _ WorkerSource = (*RedisWorkerSource)(nil)
