package usecase

import (
	"context"
	"log/slog"
	"time"

	"bot-dispatch/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// completionSaveTimeout bounds a single audit log write triggered by a completion.
const completionSaveTimeout = 5 * time.Second

// DispatchService exposes the dispatch engine to the API layers.
type DispatchService struct {
	dispatcher  domain.Dispatcher
	completions domain.CompletionRepository
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewDispatchService creates a new DispatchService and subscribes it to the
// engine's completions so each one lands in the audit log.
func NewDispatchService(dispatcher domain.Dispatcher, completions domain.CompletionRepository, logger *slog.Logger) *DispatchService {
	s := &DispatchService{
		dispatcher:  dispatcher,
		completions: completions,
		logger:      logger.With("component", "dispatch-service"),
		tracer:      otel.Tracer("bot-dispatch-usecase"),
	}
	dispatcher.OnComplete(s.recordCompletion)
	return s
}

// SubmitOrder queues a new order of the given priority.
func (s *DispatchService) SubmitOrder(ctx context.Context, priority domain.Priority) (domain.Job, error) {
	_, span := s.tracer.Start(ctx, "service.SubmitOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.priority", string(priority)))

	id, err := s.dispatcher.SubmitJob(priority)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit order")
		return domain.Job{}, err
	}
	span.SetAttributes(attribute.String("order.id", string(id)))

	job, err := s.dispatcher.Job(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submitted order not found")
	}
	return job, err
}

// AddBot adds an idle bot to the pool.
func (s *DispatchService) AddBot(ctx context.Context) domain.Worker {
	_, span := s.tracer.Start(ctx, "service.AddBot")
	defer span.End()

	id := s.dispatcher.AddWorker()
	span.SetAttributes(attribute.Int64("bot.id", int64(id)))

	for _, w := range s.dispatcher.ListWorkers() {
		if w.ID == id {
			return w
		}
	}
	// Already removed by a concurrent caller.
	return domain.Worker{ID: id, Status: domain.WorkerStatusIdle}
}

// RemoveBot removes the newest bot. ok is false when the pool was empty.
func (s *DispatchService) RemoveBot(ctx context.Context) (domain.WorkerID, bool) {
	_, span := s.tracer.Start(ctx, "service.RemoveBot")
	defer span.End()

	id, ok := s.dispatcher.RemoveWorker()
	span.SetAttributes(attribute.Bool("bot.removed", ok))
	if ok {
		span.SetAttributes(attribute.Int64("bot.id", int64(id)))
	}
	return id, ok
}

// ListBots returns the pool in insertion order.
func (s *DispatchService) ListBots(ctx context.Context) []domain.Worker {
	_, span := s.tracer.Start(ctx, "service.ListBots")
	defer span.End()

	bots := s.dispatcher.ListWorkers()
	span.SetAttributes(attribute.Int("bots_returned", len(bots)))
	return bots
}

// Snapshot returns a consistent view of the queues and the pool.
func (s *DispatchService) Snapshot(ctx context.Context) domain.Snapshot {
	_, span := s.tracer.Start(ctx, "service.Snapshot")
	defer span.End()

	snap := s.dispatcher.Snapshot()
	span.SetAttributes(
		attribute.Int("orders.pending", len(snap.Pending)),
		attribute.Int("orders.processing", len(snap.Processing)),
		attribute.Int("orders.completed", len(snap.Completed)),
		attribute.Int("bots", len(snap.Workers)),
	)
	return snap
}

// GetOrder returns a single order by id.
func (s *DispatchService) GetOrder(ctx context.Context, id domain.JobID) (domain.Job, error) {
	_, span := s.tracer.Start(ctx, "service.GetOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", string(id)))

	job, err := s.dispatcher.Job(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get order")
	}
	return job, err
}

// GetCompletion returns the audit record written when the order completed.
func (s *DispatchService) GetCompletion(ctx context.Context, id domain.JobID) (*domain.CompletionRecord, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetCompletion")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", string(id)))

	record, err := s.completions.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get completion record from repository")
	}
	return record, err
}

// ListHistory lists completion records newest first.
func (s *DispatchService) ListHistory(ctx context.Context, page, pageSize int) ([]*domain.CompletionRecord, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListHistory")
	defer span.End()
	span.SetAttributes(
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)

	records, err := s.completions.List(ctx, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list completion history from repository")
	}
	return records, err
}

// recordCompletion runs on the clock's goroutine after the engine released its lock.
func (s *DispatchService) recordCompletion(job domain.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), completionSaveTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "service.RecordCompletion")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", string(job.ID)),
		attribute.Int64("bot.id", int64(job.WorkerID)),
	)

	record := domain.NewCompletionRecord(uuid.New().String(), job)
	if err := s.completions.Save(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save completion record")
		s.logger.Error("failed to save completion record", "order_id", job.ID, "bot_id", job.WorkerID, "error", err)
	}
}
