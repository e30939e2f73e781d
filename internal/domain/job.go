package domain

import (
	"fmt"
	"time"
)

// Priority defines the dispatch class of an order.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Validate checks that p is one of the known priority classes.
func (p Priority) Validate() error {
	switch p {
	case PriorityNormal, PriorityHigh:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPriority, string(p))
	}
}

// JobStatus defines the lifecycle state of an order.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusAssigned  JobStatus = "assigned"
	JobStatusCompleted JobStatus = "completed"
)

// JobID identifies an order for its entire lifetime, e.g. "O-3" or "VIP-1".
type JobID string

// Job is a single order tracked by the dispatcher.
type Job struct {
	ID          JobID     `json:"id"`
	Priority    Priority  `json:"priority"`
	Status      JobStatus `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
	WorkerID    WorkerID  `json:"bot_id,omitempty"`      // Set while assigned, kept once completed
	AssignedAt  time.Time `json:"assigned_at,omitzero"` // Start of the current attempt
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// IsHigh reports whether the order belongs to the VIP class.
func (j *Job) IsHigh() bool {
	return j.Priority == PriorityHigh
}

// Validate checks the status/bot invariant of the order.
func (j *Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("order id cannot be empty")
	}
	if err := j.Priority.Validate(); err != nil {
		return err
	}
	switch j.Status {
	case JobStatusPending:
		if j.WorkerID != 0 {
			return fmt.Errorf("pending order %s must not reference bot %d", j.ID, j.WorkerID)
		}
	case JobStatusAssigned, JobStatusCompleted:
		if j.WorkerID == 0 {
			return fmt.Errorf("%s order %s must reference a bot", j.Status, j.ID)
		}
		if j.Status == JobStatusCompleted && j.CompletedAt.IsZero() {
			return fmt.Errorf("completed order %s has no completion time", j.ID)
		}
	default:
		return fmt.Errorf("invalid order status: %s", j.Status)
	}
	return nil
}
