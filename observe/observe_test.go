package observe

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug logger does not log at debug level")
	}

	logger, err = NewLogger("")
	if err != nil {
		t.Fatalf("NewLogger with empty level: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("default logger should not log at debug level")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("default logger should log at info level")
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger("chatty"); err == nil {
		t.Error("NewLogger should reject an unknown level")
	}
}

func TestNopMetricsRecordsWithoutError(t *testing.T) {
	ctx := context.Background()
	m := NewNopMetrics()

	m.RecordRun(ctx, "healthy", 120*time.Millisecond)
	m.RecordCheck(ctx, "database", "critical")
	m.RecordCacheHit(ctx)
	m.RecordCacheMiss(ctx)
}
