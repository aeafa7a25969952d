package checks

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/jonwraymond/healthops/health"
)

// DiskCheckerConfig configures the disk health checker.
type DiskCheckerConfig struct {
	// Path is the mount point to measure. Default: "/"
	Path string

	// WarningPercent is the used-space percentage that triggers warning.
	// Default: 80
	WarningPercent float64

	// CriticalPercent is the used-space percentage that triggers critical.
	// Default: 90
	CriticalPercent float64
}

// DiskChecker classifies disk usage of one mount point against fixed
// thresholds.
type DiskChecker struct {
	config DiskCheckerConfig

	usage func(ctx context.Context, path string) (*disk.UsageStat, error)
}

// NewDiskChecker creates a disk checker.
func NewDiskChecker(config DiskCheckerConfig) *DiskChecker {
	if config.Path == "" {
		config.Path = "/"
	}
	if config.WarningPercent <= 0 {
		config.WarningPercent = 80
	}
	if config.CriticalPercent <= 0 {
		config.CriticalPercent = 90
	}
	if config.CriticalPercent < config.WarningPercent {
		config.CriticalPercent = config.WarningPercent
	}
	return &DiskChecker{
		config: config,
		usage:  disk.UsageWithContext,
	}
}

// Name returns the name of this checker.
func (c *DiskChecker) Name() string {
	return "disk"
}

// Check performs the disk health check.
func (c *DiskChecker) Check(ctx context.Context) health.Result {
	stat, err := c.usage(ctx, c.config.Path)
	if err != nil {
		return health.Warning(fmt.Sprintf("unable to read disk usage for %s", c.config.Path)).
			WithDetail("error", err.Error())
	}

	details := map[string]any{
		"path":         stat.Path,
		"total":        humanize.IBytes(stat.Total),
		"used":         humanize.IBytes(stat.Used),
		"free":         humanize.IBytes(stat.Free),
		"used_percent": stat.UsedPercent,
	}

	msg := fmt.Sprintf("disk usage %.1f%% on %s", stat.UsedPercent, c.config.Path)
	switch {
	case stat.UsedPercent >= c.config.CriticalPercent:
		return health.Critical(msg).WithDetails(details)
	case stat.UsedPercent >= c.config.WarningPercent:
		return health.Warning(msg).WithDetails(details)
	default:
		return health.Healthy(msg).WithDetails(details)
	}
}

var _ health.Checker = (*DiskChecker)(nil)
