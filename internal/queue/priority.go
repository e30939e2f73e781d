// Package queue implements the insertion policy of the pending order queue.
//
// High priority orders are kept FIFO at the front of the queue, normal
// orders FIFO behind them. The functions never reorder existing entries, so
// two orders submitted in the same instant keep their submission order.
package queue

import "bot-dispatch/internal/domain"

// Insert returns a new queue with job placed according to its priority:
// normal orders are appended, high orders go right after the last pending
// high order (or to the front if there is none). Entries that are no longer
// pending are skipped when locating the last high order. pending is not modified.
func Insert(pending []*domain.Job, job *domain.Job) []*domain.Job {
	out := make([]*domain.Job, 0, len(pending)+1)
	if !job.IsHigh() {
		out = append(out, pending...)
		return append(out, job)
	}

	pos := 0
	for i, j := range pending {
		if j.Status == domain.JobStatusPending && j.IsHigh() {
			pos = i + 1
		}
	}

	out = append(out, pending[:pos]...)
	out = append(out, job)
	return append(out, pending[pos:]...)
}

// Position returns the index of id in the queue, or -1.
func Position(pending []*domain.Job, id domain.JobID) int {
	for i, j := range pending {
		if j.ID == id {
			return i
		}
	}
	return -1
}
