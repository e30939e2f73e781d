// internal/master/dispatcher.go
package master

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"bot-dispatch/internal/domain"
	"bot-dispatch/internal/metrics"
	"bot-dispatch/internal/queue"
)

// DefaultProcessingDuration is how long a bot takes to complete an order.
const DefaultProcessingDuration = 10 * time.Second

var _ domain.Dispatcher = (*Dispatcher)(nil)

// Dispatcher assigns pending orders to idle bots and owns the bot pool.
//
// Every operation, including completion callbacks delivered by the clock,
// runs under mu, so the state below is only ever observed between steps.
type Dispatcher struct {
	mu       sync.Mutex
	clock    domain.Clock
	duration time.Duration
	logger   *slog.Logger

	jobs      []*domain.Job // every order ever submitted, in submission order
	index     map[domain.JobID]*domain.Job
	pending   []*domain.Job // priority ordered, see queue.Insert
	completed []*domain.Job // completion order
	workers   []*domain.Worker
	timers    map[domain.JobID]domain.Timer

	lastWorkerID domain.WorkerID
	seq          map[domain.Priority]int

	hooks []domain.CompletionHook
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithProcessingDuration sets the fixed time a bot spends on an order.
func WithProcessingDuration(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.duration = d
		}
	}
}

// NewDispatcher creates a dispatch engine driven by clock.
func NewDispatcher(clock domain.Clock, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		clock:    clock,
		duration: DefaultProcessingDuration,
		logger:   logger.With("component", "dispatcher"),
		index:    make(map[domain.JobID]*domain.Job),
		timers:   make(map[domain.JobID]domain.Timer),
		seq:      make(map[domain.Priority]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ProcessingDuration returns the fixed time a bot spends on an order.
func (d *Dispatcher) ProcessingDuration() time.Duration {
	return d.duration
}

// OnComplete registers a hook called after each order completes.
// Hooks run outside the dispatcher lock, on the goroutine that delivered the completion.
func (d *Dispatcher) OnComplete(hook domain.CompletionHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = append(d.hooks, hook)
}

// SubmitJob queues a new order and dispatches it if a bot is idle.
func (d *Dispatcher) SubmitJob(priority domain.Priority) (domain.JobID, error) {
	if err := priority.Validate(); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq[priority]++
	job := &domain.Job{
		ID:          newJobID(priority, d.seq[priority]),
		Priority:    priority,
		Status:      domain.JobStatusPending,
		SubmittedAt: d.clock.Now(),
	}
	d.jobs = append(d.jobs, job)
	d.index[job.ID] = job
	d.pending = queue.Insert(d.pending, job)

	metrics.OrdersSubmitted.WithLabelValues(string(priority)).Inc()
	d.logger.Info("order submitted",
		"order_id", job.ID,
		"priority", priority,
		"queue_position", queue.Position(d.pending, job.ID),
	)

	d.runAssignmentLocked()
	return job.ID, nil
}

func newJobID(priority domain.Priority, n int) domain.JobID {
	if priority == domain.PriorityHigh {
		return domain.JobID("VIP-" + strconv.Itoa(n))
	}
	return domain.JobID("O-" + strconv.Itoa(n))
}

// runAssignmentLocked pairs the head of the pending queue with the idle bot
// of lowest id until one side runs out. It is a no-op when no pair exists.
func (d *Dispatcher) runAssignmentLocked() {
	idle := d.idleWorkersLocked()
	for len(d.pending) > 0 && len(idle) > 0 {
		job := d.pending[0]
		d.pending = d.pending[1:]
		if job.Status != domain.JobStatusPending {
			continue
		}

		worker := idle[0]
		idle = idle[1:]
		d.assignLocked(job, worker)
	}
	d.observeLocked()
}

func (d *Dispatcher) assignLocked(job *domain.Job, worker *domain.Worker) {
	job.Status = domain.JobStatusAssigned
	job.WorkerID = worker.ID
	job.AssignedAt = d.clock.Now()
	worker.Status = domain.WorkerStatusBusy
	worker.CurrentJobID = job.ID

	jobID, workerID := job.ID, worker.ID
	d.timers[jobID] = d.clock.AfterFunc(d.duration, func() {
		d.complete(jobID, workerID)
	})

	d.logger.Info("order assigned", "order_id", jobID, "bot_id", workerID)
}

// complete is the completion callback scheduled for a (job, bot) pair.
// It only acts if the bot still owns the order; anything else means the
// assignment was invalidated in the meantime and the callback is dropped.
func (d *Dispatcher) complete(jobID domain.JobID, workerID domain.WorkerID) {
	d.mu.Lock()

	job, ok := d.index[jobID]
	worker := d.workerLocked(workerID)
	if !ok || job.Status != domain.JobStatusAssigned || job.WorkerID != workerID ||
		worker == nil || worker.CurrentJobID != jobID {
		d.mu.Unlock()
		metrics.StaleCompletions.Inc()
		d.logger.Debug("discarding stale completion", "order_id", jobID, "bot_id", workerID)
		return
	}

	delete(d.timers, jobID)
	job.Status = domain.JobStatusCompleted
	job.CompletedAt = d.clock.Now()
	worker.Status = domain.WorkerStatusIdle
	worker.CurrentJobID = ""
	d.completed = append(d.completed, job)

	metrics.OrdersCompleted.WithLabelValues(string(job.Priority)).Inc()
	d.logger.Info("order completed",
		"order_id", jobID,
		"bot_id", workerID,
		"wait", job.AssignedAt.Sub(job.SubmittedAt),
	)

	d.runAssignmentLocked()

	done := *job
	hooks := make([]domain.CompletionHook, len(d.hooks))
	copy(hooks, d.hooks)
	d.mu.Unlock()

	for _, hook := range hooks {
		hook(done)
	}
}

// requeueLocked reverts an assigned order to pending and reinserts it by priority.
func (d *Dispatcher) requeueLocked(job *domain.Job) {
	if t, ok := d.timers[job.ID]; ok {
		t.Stop()
		delete(d.timers, job.ID)
	}

	prev := job.WorkerID
	job.Status = domain.JobStatusPending
	job.WorkerID = 0
	job.AssignedAt = time.Time{}
	d.pending = queue.Insert(d.pending, job)

	metrics.OrdersRequeued.WithLabelValues(string(job.Priority)).Inc()
	d.logger.Warn("order requeued",
		"order_id", job.ID,
		"previous_bot_id", prev,
		"queue_position", queue.Position(d.pending, job.ID),
	)
}

func (d *Dispatcher) observeLocked() {
	var idle, busy int
	for _, w := range d.workers {
		if w.IsIdle() {
			idle++
		} else {
			busy++
		}
	}
	metrics.PendingOrders.Set(float64(len(d.pending)))
	metrics.Bots.WithLabelValues(string(domain.WorkerStatusIdle)).Set(float64(idle))
	metrics.Bots.WithLabelValues(string(domain.WorkerStatusBusy)).Set(float64(busy))
}

// ListPending returns the pending orders in dispatch order.
func (d *Dispatcher) ListPending() []domain.Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyJobs(d.pending)
}

// ListProcessing returns the orders currently held by a bot, in submission order.
func (d *Dispatcher) ListProcessing() []domain.Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.processingLocked()
}

// ListCompleted returns the completed orders in completion order.
func (d *Dispatcher) ListCompleted() []domain.Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyJobs(d.completed)
}

// Snapshot returns a consistent copy of all queues and the bot pool.
func (d *Dispatcher) Snapshot() domain.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return domain.Snapshot{
		Pending:    copyJobs(d.pending),
		Processing: d.processingLocked(),
		Completed:  copyJobs(d.completed),
		Workers:    d.workersLocked(),
	}
}

// Job returns a copy of the order identified by id.
func (d *Dispatcher) Job(id domain.JobID) (domain.Job, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	job, ok := d.index[id]
	if !ok {
		return domain.Job{}, fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	return *job, nil
}

func (d *Dispatcher) processingLocked() []domain.Job {
	out := make([]domain.Job, 0)
	for _, j := range d.jobs {
		if j.Status == domain.JobStatusAssigned {
			out = append(out, *j)
		}
	}
	return out
}

func copyJobs(src []*domain.Job) []domain.Job {
	out := make([]domain.Job, len(src))
	for i, j := range src {
		out[i] = *j
	}
	return out
}
