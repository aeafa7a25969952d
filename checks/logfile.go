package checks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jonwraymond/healthops/health"
)

// LogFileCheckerConfig configures the log file health checker.
type LogFileCheckerConfig struct {
	// Path is the log file to inspect.
	Path string

	// MaxSizeBytes triggers warning when the file grows past it.
	// Default: 512 MiB
	MaxSizeBytes int64

	// ErrorMarker is the substring counted as an error line in the tail.
	// Default: "ERROR"
	ErrorMarker string

	// WarningErrors and CriticalErrors are thresholds on the number of
	// marker occurrences found in the tail window.
	// Defaults: 10 / 100
	WarningErrors  int
	CriticalErrors int

	// TailBytes is how much of the file tail is scanned.
	// Default: 64 KiB
	TailBytes int64
}

// LogFileChecker inspects an application log file: a missing or oversized
// file is a warning, and a burst of error lines in the tail escalates.
type LogFileChecker struct {
	config LogFileCheckerConfig
}

// NewLogFileChecker creates a log file checker.
func NewLogFileChecker(config LogFileCheckerConfig) *LogFileChecker {
	if config.MaxSizeBytes <= 0 {
		config.MaxSizeBytes = 512 << 20
	}
	if config.ErrorMarker == "" {
		config.ErrorMarker = "ERROR"
	}
	if config.WarningErrors <= 0 {
		config.WarningErrors = 10
	}
	if config.CriticalErrors <= 0 {
		config.CriticalErrors = 100
	}
	if config.TailBytes <= 0 {
		config.TailBytes = 64 << 10
	}
	return &LogFileChecker{config: config}
}

// Name returns the name of this checker.
func (c *LogFileChecker) Name() string {
	return "logs"
}

// Check performs the log file health check.
func (c *LogFileChecker) Check(_ context.Context) health.Result {
	info, err := os.Stat(c.config.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return health.Warning(fmt.Sprintf("log file %s does not exist", c.config.Path)).
				WithDetail("path", c.config.Path)
		}
		return health.Warning(fmt.Sprintf("unable to stat log file: %v", err)).
			WithDetail("error", err.Error())
	}

	details := map[string]any{
		"path":     c.config.Path,
		"size":     humanize.IBytes(uint64(info.Size())),
		"modified": info.ModTime().Format(time.RFC3339),
	}

	errorCount, err := c.countTailErrors()
	if err != nil {
		// Tail scanning is a sub-metric; report what we have.
		details["scan_error"] = err.Error()
	} else {
		details["recent_errors"] = errorCount
	}

	switch {
	case errorCount >= c.config.CriticalErrors:
		return health.Critical(fmt.Sprintf("%d recent error lines in %s", errorCount, c.config.Path)).
			WithDetails(details)
	case errorCount >= c.config.WarningErrors:
		return health.Warning(fmt.Sprintf("%d recent error lines in %s", errorCount, c.config.Path)).
			WithDetails(details)
	case info.Size() > c.config.MaxSizeBytes:
		return health.Warning(fmt.Sprintf("log file %s exceeds %s", c.config.Path,
			humanize.IBytes(uint64(c.config.MaxSizeBytes)))).
			WithDetails(details)
	default:
		return health.Healthy("log file OK").WithDetails(details)
	}
}

// countTailErrors counts marker occurrences in the last TailBytes of the file.
func (c *LogFileChecker) countTailErrors() (int, error) {
	f, err := os.Open(c.config.Path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	offset := info.Size() - c.config.TailBytes
	if offset < 0 {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}

	tail, err := io.ReadAll(io.LimitReader(f, c.config.TailBytes))
	if err != nil {
		return 0, err
	}
	return bytes.Count(tail, []byte(c.config.ErrorMarker)), nil
}

var _ health.Checker = (*LogFileChecker)(nil)
