package checks

import (
	"context"
	"fmt"

	"github.com/jonwraymond/healthops/health"
)

// UsageSource reports consumption of a quota-bound external API.
type UsageSource interface {
	// Usage returns the used and allowed call counts for the current
	// accounting window.
	Usage(ctx context.Context) (used, limit int64, err error)
}

// UsageSourceFunc adapts an ordinary function to the UsageSource interface.
type UsageSourceFunc func(ctx context.Context) (used, limit int64, err error)

// Usage calls the function.
func (f UsageSourceFunc) Usage(ctx context.Context) (int64, int64, error) {
	return f(ctx)
}

// APIUsageCheckerConfig configures the API usage checker.
type APIUsageCheckerConfig struct {
	// Name distinguishes several usage checkers. Default: "api_usage"
	Name string

	// WarningPercent of quota consumed that triggers warning. Default: 80
	WarningPercent float64

	// CriticalPercent of quota consumed that triggers critical. Default: 95
	CriticalPercent float64
}

// APIUsageChecker classifies consumption of an external API quota.
type APIUsageChecker struct {
	source UsageSource
	config APIUsageCheckerConfig
}

// NewAPIUsageChecker creates an API usage checker over a usage source.
func NewAPIUsageChecker(source UsageSource, config APIUsageCheckerConfig) *APIUsageChecker {
	if config.Name == "" {
		config.Name = "api_usage"
	}
	if config.WarningPercent <= 0 {
		config.WarningPercent = 80
	}
	if config.CriticalPercent <= 0 {
		config.CriticalPercent = 95
	}
	if config.CriticalPercent < config.WarningPercent {
		config.CriticalPercent = config.WarningPercent
	}
	return &APIUsageChecker{source: source, config: config}
}

// Name returns the name of this checker.
func (c *APIUsageChecker) Name() string {
	return c.config.Name
}

// Check performs the API usage check.
func (c *APIUsageChecker) Check(ctx context.Context) health.Result {
	used, limit, err := c.source.Usage(ctx)
	if err != nil {
		return health.Warning(fmt.Sprintf("unable to read API usage: %v", err)).
			WithDetail("error", err.Error())
	}

	details := map[string]any{
		"used":  used,
		"limit": limit,
	}

	if limit <= 0 {
		return health.Healthy("API usage unlimited").WithDetails(details)
	}

	percent := float64(used) / float64(limit) * 100.0
	details["used_percent"] = percent

	msg := fmt.Sprintf("API usage %d/%d (%.1f%%)", used, limit, percent)
	switch {
	case percent >= c.config.CriticalPercent:
		return health.Critical(msg).WithDetails(details)
	case percent >= c.config.WarningPercent:
		return health.Warning(msg).WithDetails(details)
	default:
		return health.Healthy(msg).WithDetails(details)
	}
}

var _ health.Checker = (*APIUsageChecker)(nil)
