// internal/master/pool.go
package master

import "bot-dispatch/internal/domain"

// AddWorker adds an idle bot to the pool and dispatches pending orders to it.
func (d *Dispatcher) AddWorker() domain.WorkerID {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lastWorkerID++
	w := &domain.Worker{ID: d.lastWorkerID, Status: domain.WorkerStatusIdle}
	d.workers = append(d.workers, w)
	d.logger.Info("bot added", "bot_id", w.ID, "pool_size", len(d.workers))

	d.runAssignmentLocked()
	return w.ID
}

// RemoveWorker removes the most recently added bot. If the bot is busy its
// order goes back to the pending queue by priority; the completion already
// scheduled for it is cancelled and would be discarded if it fired anyway.
// Removing from an empty pool is a no-op and reports ok=false.
func (d *Dispatcher) RemoveWorker() (domain.WorkerID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.workers)
	if n == 0 {
		d.logger.Info("no bot to remove")
		return 0, false
	}

	w := d.workers[n-1]
	if w.Status == domain.WorkerStatusBusy {
		if job, ok := d.index[w.CurrentJobID]; ok && job.Status == domain.JobStatusAssigned && job.WorkerID == w.ID {
			d.requeueLocked(job)
		}
	}
	d.workers[n-1] = nil
	d.workers = d.workers[:n-1]
	d.logger.Info("bot removed", "bot_id", w.ID, "was", w.Status, "pool_size", len(d.workers))

	d.runAssignmentLocked()
	return w.ID, true
}

// ListWorkers returns the bots in the order they were added.
func (d *Dispatcher) ListWorkers() []domain.Worker {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.workersLocked()
}

func (d *Dispatcher) workersLocked() []domain.Worker {
	out := make([]domain.Worker, len(d.workers))
	for i, w := range d.workers {
		out[i] = *w
	}
	return out
}

func (d *Dispatcher) workerLocked(id domain.WorkerID) *domain.Worker {
	for _, w := range d.workers {
		if w.ID == id {
			return w
		}
	}
	return nil
}

// idleWorkersLocked returns the idle bots by ascending id. Bots are only
// ever appended with a fresh, larger id, so pool order is id order.
func (d *Dispatcher) idleWorkersLocked() []*domain.Worker {
	var idle []*domain.Worker
	for _, w := range d.workers {
		if w.IsIdle() {
			idle = append(idle, w)
		}
	}
	return idle
}
