// Package memory holds in-process implementations of the domain repositories,
// used when no etcd cluster is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"bot-dispatch/internal/domain"
)

type completionRepository struct {
	mu      sync.RWMutex
	records []*domain.CompletionRecord // oldest first
	byOrder map[domain.JobID]*domain.CompletionRecord
}

// NewCompletionRepository creates an in-memory completion log.
func NewCompletionRepository() domain.CompletionRepository {
	return &completionRepository{
		byOrder: make(map[domain.JobID]*domain.CompletionRecord),
	}
}

func (r *completionRepository) Save(_ context.Context, record *domain.CompletionRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *record
	if _, ok := r.byOrder[record.OrderID]; ok {
		for i, existing := range r.records {
			if existing.OrderID == record.OrderID {
				r.records = append(r.records[:i], r.records[i+1:]...)
				break
			}
		}
	}
	r.records = append(r.records, &stored)
	r.byOrder[record.OrderID] = &stored
	return nil
}

func (r *completionRepository) Get(_ context.Context, orderID domain.JobID) (*domain.CompletionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byOrder[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: no completion record for %s", domain.ErrJobNotFound, orderID)
	}
	out := *record
	return &out, nil
}

func (r *completionRepository) List(_ context.Context, page, pageSize int) ([]*domain.CompletionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return []*domain.CompletionRecord{}, nil
	}

	// Newest saved first, so equal completion times keep save order.
	sorted := make([]*domain.CompletionRecord, 0, len(r.records))
	for i := len(r.records) - 1; i >= 0; i-- {
		sorted = append(sorted, r.records[i])
	}
	domain.SortCompletionsNewestFirst(sorted)

	start := (page - 1) * pageSize
	out := make([]*domain.CompletionRecord, 0, pageSize)
	for i := start; i < len(sorted) && len(out) < pageSize; i++ {
		record := *sorted[i]
		out = append(out, &record)
	}
	return out, nil
}
