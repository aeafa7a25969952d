package checks

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/jonwraymond/healthops/health"
)

// MemoryCheckerConfig configures the memory health checker.
type MemoryCheckerConfig struct {
	// WarningPercent is the used-memory percentage that triggers warning.
	// Default: 80
	WarningPercent float64

	// CriticalPercent is the used-memory percentage that triggers critical.
	// Default: 90
	CriticalPercent float64
}

// MemoryChecker classifies host memory usage against fixed thresholds.
type MemoryChecker struct {
	config MemoryCheckerConfig

	// virtualMemory is swappable for tests.
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

// NewMemoryChecker creates a memory checker.
func NewMemoryChecker(config MemoryCheckerConfig) *MemoryChecker {
	if config.WarningPercent <= 0 {
		config.WarningPercent = 80
	}
	if config.CriticalPercent <= 0 {
		config.CriticalPercent = 90
	}
	if config.CriticalPercent < config.WarningPercent {
		config.CriticalPercent = config.WarningPercent
	}
	return &MemoryChecker{
		config:        config,
		virtualMemory: mem.VirtualMemoryWithContext,
	}
}

// Name returns the name of this checker.
func (c *MemoryChecker) Name() string {
	return "memory"
}

// Check performs the memory health check.
func (c *MemoryChecker) Check(ctx context.Context) health.Result {
	vm, err := c.virtualMemory(ctx)
	if err != nil {
		// No gauge is a degraded signal, not proof of exhaustion.
		return health.Warning("unable to read memory statistics").
			WithDetail("error", err.Error())
	}

	details := map[string]any{
		"total":        humanize.IBytes(vm.Total),
		"used":         humanize.IBytes(vm.Used),
		"available":    humanize.IBytes(vm.Available),
		"used_percent": vm.UsedPercent,
	}

	// Swap is a sub-metric; its absence must not fail the check.
	if swap, err := mem.SwapMemoryWithContext(ctx); err != nil {
		details["swap_error"] = err.Error()
	} else {
		details["swap_used_percent"] = swap.UsedPercent
	}

	msg := fmt.Sprintf("memory usage %.1f%%", vm.UsedPercent)
	switch {
	case vm.UsedPercent >= c.config.CriticalPercent:
		return health.Critical(msg).WithDetails(details)
	case vm.UsedPercent >= c.config.WarningPercent:
		return health.Warning(msg).WithDetails(details)
	default:
		return health.Healthy(msg).WithDetails(details)
	}
}

var _ health.Checker = (*MemoryChecker)(nil)
