// internal/infra/etcd/etcd_completion_repository.go
package etcd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"

	"bot-dispatch/internal/domain"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	CompletionLogDir = "/dispatch/completions/"
)

type etcdCompletionRepository struct {
	client *clientv3.Client
	logger *slog.Logger
	tracer trace.Tracer
}

// NewEtcdCompletionRepository creates a completion log backed by etcd.
func NewEtcdCompletionRepository(client *clientv3.Client, logger *slog.Logger) domain.CompletionRepository {
	return &etcdCompletionRepository{
		client: client,
		logger: logger.With("component", "etcd-completion-log"),
		tracer: otel.Tracer("bot-dispatch-etcd-completion-repo"),
	}
}

// Save persists a completion record under /dispatch/completions/{orderID}.
func (r *etcdCompletionRepository) Save(ctx context.Context, record *domain.CompletionRecord) error {
	ctx, span := r.tracer.Start(ctx, "repo.etcd.SaveCompletion")
	defer span.End()

	if err := record.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid completion record")
		return err
	}

	recordJSON, err := json.Marshal(record)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal completion record")
		return fmt.Errorf("failed to marshal completion record %s to JSON: %w", record.ID, err)
	}

	key := path.Join(CompletionLogDir, string(record.OrderID))
	span.SetAttributes(
		attribute.String("completion.id", record.ID),
		attribute.String("order.id", string(record.OrderID)),
		attribute.String("etcd.key", key),
	)

	if _, err := r.client.Put(ctx, key, string(recordJSON)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to put completion record to etcd")
		return fmt.Errorf("failed to save completion record for order %s to etcd: %w", record.OrderID, err)
	}
	return nil
}

// Get retrieves the completion record of an order.
func (r *etcdCompletionRepository) Get(ctx context.Context, orderID domain.JobID) (*domain.CompletionRecord, error) {
	ctx, span := r.tracer.Start(ctx, "repo.etcd.GetCompletion")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", string(orderID)))

	key := path.Join(CompletionLogDir, string(orderID))
	resp, err := r.client.Get(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get completion record from etcd")
		return nil, fmt.Errorf("failed to get completion record for order %s from etcd: %w", orderID, err)
	}

	if len(resp.Kvs) == 0 {
		return nil, fmt.Errorf("%w: no completion record for %s", domain.ErrJobNotFound, orderID)
	}

	var record domain.CompletionRecord
	if err := json.Unmarshal(resp.Kvs[0].Value, &record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal completion record")
		return nil, fmt.Errorf("failed to unmarshal completion record for order %s: %w", orderID, err)
	}
	return &record, nil
}

// List retrieves completion records newest first, with pagination.
func (r *etcdCompletionRepository) List(ctx context.Context, page, pageSize int) ([]*domain.CompletionRecord, error) {
	ctx, span := r.tracer.Start(ctx, "repo.etcd.ListCompletions")
	defer span.End()
	span.SetAttributes(
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)

	resp, err := r.client.Get(ctx, CompletionLogDir,
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByCreateRevision, clientv3.SortDescend),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list completion records from etcd")
		return nil, fmt.Errorf("failed to list completion records from etcd: %w", err)
	}

	records := make([]*domain.CompletionRecord, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var record domain.CompletionRecord
		if err := json.Unmarshal(kv.Value, &record); err != nil {
			r.logger.Warn("failed to unmarshal completion record from etcd", "key", string(kv.Key), "error", err)
			continue
		}
		records = append(records, &record)
	}
	// Create revision order is save order; completion time decides.
	domain.SortCompletionsNewestFirst(records)

	startIdx, endIdx := pageBounds(page, pageSize)
	if startIdx > len(records) {
		startIdx = len(records)
	}
	if endIdx > len(records) {
		endIdx = len(records)
	}
	records = records[startIdx:endIdx]

	span.SetAttributes(attribute.Int("records_returned", len(records)))
	return records, nil
}

func pageBounds(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return 0, 0
	}
	start := (page - 1) * pageSize
	return start, start + pageSize
}
