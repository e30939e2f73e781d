// internal/domain/completion.go
package domain

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// CompletionRecord is the audit entry written when an order completes.
type CompletionRecord struct {
	ID          string    `json:"id"`           // Unique ID for this record
	OrderID     JobID     `json:"order_id"`     // Order that completed
	Priority    Priority  `json:"priority"`     // Class the order was dispatched in
	BotID       WorkerID  `json:"bot_id"`       // Bot that completed the order
	SubmittedAt time.Time `json:"submitted_at"` // When the order was submitted
	AssignedAt  time.Time `json:"assigned_at"`  // Start of the successful attempt
	CompletedAt time.Time `json:"completed_at"` // When the order completed
}

// NewCompletionRecord builds the audit entry for a completed order.
func NewCompletionRecord(id string, job Job) *CompletionRecord {
	return &CompletionRecord{
		ID:          id,
		OrderID:     job.ID,
		Priority:    job.Priority,
		BotID:       job.WorkerID,
		SubmittedAt: job.SubmittedAt,
		AssignedAt:  job.AssignedAt,
		CompletedAt: job.CompletedAt,
	}
}

// Validate checks if the completion record is valid.
func (r *CompletionRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("completion record ID cannot be empty")
	}
	if r.OrderID == "" {
		return fmt.Errorf("completion record order id cannot be empty")
	}
	if r.BotID == 0 {
		return fmt.Errorf("completion record bot id cannot be empty")
	}
	if r.CompletedAt.IsZero() {
		return fmt.Errorf("completion record completion time cannot be zero")
	}
	return nil
}

// SortCompletionsNewestFirst orders records by completion time, latest first.
// Completion hooks may save records out of order, so repositories sort on read.
// The sort is stable.
func SortCompletionsNewestFirst(records []*CompletionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CompletedAt.After(records[j].CompletedAt)
	})
}

// CompletionRepository defines the interface for persisting and retrieving completion records.
type CompletionRepository interface {
	// Save persists a single completion record.
	Save(ctx context.Context, record *CompletionRecord) error
	// Get retrieves the completion record of an order.
	Get(ctx context.Context, orderID JobID) (*CompletionRecord, error)
	// List retrieves completion records by completion time, newest first, with pagination.
	List(ctx context.Context, page, pageSize int) ([]*CompletionRecord, error)
}
