// internal/scheduler/snapshot_reporter.go
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"bot-dispatch/internal/config"
	"bot-dispatch/internal/domain"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SnapshotReporter periodically logs a summary of the queues and the bot pool.
type SnapshotReporter struct {
	cron       *cron.Cron
	dispatcher domain.Dispatcher
	schedule   string
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewSnapshotReporter creates a reporter firing on schedule, a cron expression
// such as "@every 30s".
func NewSnapshotReporter(dispatcher domain.Dispatcher, schedule string, logger *slog.Logger) (*SnapshotReporter, error) {
	r := &SnapshotReporter{
		cron:       cron.New(cron.WithParser(config.CronParser)),
		dispatcher: dispatcher,
		schedule:   schedule,
		logger:     logger.With("component", "snapshot-reporter"),
		tracer:     otel.Tracer("bot-dispatch-scheduler"),
	}

	if _, err := r.cron.AddJob(schedule, r); err != nil {
		return nil, fmt.Errorf("invalid snapshot schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Start runs the reporter until ctx is done.
func (r *SnapshotReporter) Start(ctx context.Context) error {
	r.logger.Info("snapshot reporter started", "schedule", r.schedule)
	r.cron.Start()
	<-ctx.Done()
	r.logger.Info("snapshot reporter stopping...")
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	r.logger.Info("snapshot reporter stopped")
	return ctx.Err()
}

// Run is called by the cron library on every tick.
func (r *SnapshotReporter) Run() {
	_, span := r.tracer.Start(context.Background(), "scheduler.Snapshot")
	defer span.End()

	snap := r.dispatcher.Snapshot()
	var idle, busy int
	for _, w := range snap.Workers {
		if w.IsIdle() {
			idle++
		} else {
			busy++
		}
	}

	var pendingHigh int
	for _, j := range snap.Pending {
		if j.IsHigh() {
			pendingHigh++
		}
	}

	span.SetAttributes(
		attribute.Int("orders.pending", len(snap.Pending)),
		attribute.Int("orders.processing", len(snap.Processing)),
		attribute.Int("orders.completed", len(snap.Completed)),
		attribute.Int("bots.idle", idle),
		attribute.Int("bots.busy", busy),
	)
	r.logger.Info("dispatch snapshot",
		"pending", len(snap.Pending),
		"pending_high", pendingHigh,
		"processing", len(snap.Processing),
		"completed", len(snap.Completed),
		"bots_idle", idle,
		"bots_busy", busy,
	)
}
