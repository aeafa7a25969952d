package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonwraymond/healthops/health"
)

// Coordinator turns critical check results into deduplicated alerts. It
// consumes completed reports as a health.ReportSink.
type Coordinator struct {
	store  Store
	logger *zap.Logger
}

// NewCoordinator creates an alert coordinator over the given store.
func NewCoordinator(store Store, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{store: store, logger: logger}
}

// Record raises one alert per critical check that has no unresolved alert
// yet. An existing unresolved alert suppresses creation entirely: it is
// neither duplicated nor refreshed. Store failures are logged per check so
// one failing source cannot block alerting for the others.
func (c *Coordinator) Record(ctx context.Context, report *health.Report) {
	for name, result := range report.Checks {
		if result.Status != health.StatusCritical {
			continue
		}

		// Advisory read; the store's Create closes the race atomically.
		existing, err := c.store.FindUnresolved(ctx, name)
		if err != nil {
			c.logger.Error("alert lookup failed",
				zap.String("source", name), zap.Error(err))
			continue
		}
		if existing != nil {
			continue
		}

		a := &Alert{
			ID:           uuid.NewString(),
			SourceMetric: name,
			Severity:     SeverityCritical,
			Title:        fmt.Sprintf("Health check critical: %s", name),
			Message:      result.Message,
			Metadata:     result.Details,
			CreatedAt:    time.Now().UTC(),
		}

		created, err := c.store.Create(ctx, a)
		if err != nil {
			c.logger.Error("alert creation failed",
				zap.String("source", name), zap.Error(err))
			continue
		}
		if !created {
			// A concurrent run won the insert; dedup held.
			continue
		}

		c.logger.Warn("alert raised",
			zap.String("source", name),
			zap.String("alert_id", a.ID),
			zap.String("message", a.Message),
		)
	}
}

var _ health.ReportSink = (*Coordinator)(nil)
