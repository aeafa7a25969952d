package health

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ExecutorConfig configures timeout and retry behavior for check execution.
type ExecutorConfig struct {
	// Timeout is the time budget for a single attempt.
	// Default: 15 seconds
	Timeout time.Duration

	// MaxAttempts is the maximum number of attempts (including the first).
	// Default: 3
	MaxAttempts int

	// Backoff is the base delay between attempts. The delay grows linearly:
	// Backoff * attemptNumber.
	// Default: 500ms
	Backoff time.Duration
}

// Executor runs a single checker with a per-attempt timeout and retries.
//
// Each attempt runs in its own goroutine with a deadline-bound context, so
// the executor works regardless of which goroutine invokes it. An attempt
// that exceeds its budget is abandoned, never retried in place; a
// deadline-aware checker observes the context and stops, one that ignores it
// keeps running until it finishes on its own.
//
// Run never returns an error: every failure mode terminates in a Result.
type Executor struct {
	config ExecutorConfig
	logger *zap.Logger
}

// NewExecutor creates a new executor.
func NewExecutor(config ExecutorConfig, logger *zap.Logger) *Executor {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.Backoff <= 0 {
		config.Backoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Executor{config: config, logger: logger}
}

// Config returns the executor configuration.
func (e *Executor) Config() ExecutorConfig {
	return e.config
}

// Run executes the checker, retrying timeouts and panics with linear backoff.
// If all attempts fail it synthesizes a critical result carrying the attempt
// count and last error.
func (e *Executor) Run(ctx context.Context, name string, checker Checker) Result {
	start := time.Now()
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= e.config.MaxAttempts; attempt++ {
		attempts = attempt
		result, err := e.attempt(ctx, checker)
		if err == nil {
			return result
		}
		lastErr = err

		e.logger.Warn("check attempt failed",
			zap.String("check", name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt >= e.config.MaxAttempts {
			break
		}

		// Linear backoff: base * attempt number.
		delay := e.config.Backoff * time.Duration(attempt)
		interrupted := false
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			interrupted = true
		case <-time.After(delay):
		}
		if interrupted {
			break
		}
	}

	return Critical(fmt.Sprintf("check failed after %d attempts: %v", attempts, lastErr)).
		WithDetails(map[string]any{
			"error":           lastErr.Error(),
			"attempts":        attempts,
			"timeout_seconds": e.config.Timeout.Seconds(),
		}).
		WithResponseTime(time.Since(start))
}

type attemptOutcome struct {
	result Result
	err    error
}

// attempt runs one invocation in its own goroutine, joined with a deadline.
func (e *Executor) attempt(ctx context.Context, checker Checker) (Result, error) {
	actx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	start := time.Now()
	done := make(chan attemptOutcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- attemptOutcome{err: fmt.Errorf("%w: %v", ErrCheckPanic, r)}
			}
		}()

		result := checker.Check(actx)
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		if result.ResponseTimeMS == nil {
			result = result.WithResponseTime(time.Since(start))
		}
		done <- attemptOutcome{result: result}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-actx.Done():
		// The goroutine is abandoned; the buffered channel lets it exit
		// whenever the checker returns.
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, ErrCheckTimeout
	}
}
