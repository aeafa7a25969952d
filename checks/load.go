package checks

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"

	"github.com/jonwraymond/healthops/health"
)

// LoadCheckerConfig configures the CPU load health checker.
type LoadCheckerConfig struct {
	// WarningPerCore is the 1-minute load average per core that triggers
	// warning. Default: 1.0
	WarningPerCore float64

	// CriticalPerCore is the 1-minute load average per core that triggers
	// critical. Default: 2.0
	CriticalPerCore float64
}

// LoadChecker classifies the system load average, normalized per CPU core.
// Platforms without a load average (Windows) report healthy with a note
// rather than failing.
type LoadChecker struct {
	config LoadCheckerConfig

	loadAvg  func(ctx context.Context) (*load.AvgStat, error)
	cpuCount func(ctx context.Context, logical bool) (int, error)
}

// NewLoadChecker creates a load checker.
func NewLoadChecker(config LoadCheckerConfig) *LoadChecker {
	if config.WarningPerCore <= 0 {
		config.WarningPerCore = 1.0
	}
	if config.CriticalPerCore <= 0 {
		config.CriticalPerCore = 2.0
	}
	if config.CriticalPerCore < config.WarningPerCore {
		config.CriticalPerCore = config.WarningPerCore
	}
	return &LoadChecker{
		config:   config,
		loadAvg:  load.AvgWithContext,
		cpuCount: cpu.CountsWithContext,
	}
}

// Name returns the name of this checker.
func (c *LoadChecker) Name() string {
	return "load"
}

// Check performs the load health check.
func (c *LoadChecker) Check(ctx context.Context) health.Result {
	avg, err := c.loadAvg(ctx)
	if err != nil {
		// Load average is unavailable on some hosts; degrade gracefully.
		return health.Healthy("load average unavailable on this platform").
			WithDetail("error", err.Error())
	}

	cores, err := c.cpuCount(ctx, true)
	details := map[string]any{
		"load_1":  avg.Load1,
		"load_5":  avg.Load5,
		"load_15": avg.Load15,
	}
	if err != nil || cores <= 0 {
		cores = 1
		if err != nil {
			details["cpu_count_error"] = err.Error()
		}
	}
	details["cores"] = cores

	perCore := avg.Load1 / float64(cores)
	details["load_per_core"] = perCore

	msg := fmt.Sprintf("load average %.2f (%.2f per core)", avg.Load1, perCore)
	switch {
	case perCore >= c.config.CriticalPerCore:
		return health.Critical(msg).WithDetails(details)
	case perCore >= c.config.WarningPerCore:
		return health.Warning(msg).WithDetails(details)
	default:
		return health.Healthy(msg).WithDetails(details)
	}
}

var _ health.Checker = (*LoadChecker)(nil)
