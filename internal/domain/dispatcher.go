// internal/domain/dispatcher.go
package domain

// Snapshot is a consistent, caller-owned copy of the dispatcher state.
type Snapshot struct {
	Pending    []Job    `json:"pending"`
	Processing []Job    `json:"processing"`
	Completed  []Job    `json:"completed"`
	Workers    []Worker `json:"bots"`
}

// CompletionHook is invoked once per order, after it has been completed.
type CompletionHook func(job Job)

// Dispatcher defines the command/query surface of the dispatch engine.
type Dispatcher interface {
	SubmitJob(priority Priority) (JobID, error)
	AddWorker() WorkerID
	// RemoveWorker removes the most recently added bot. ok is false when the pool is empty.
	RemoveWorker() (id WorkerID, ok bool)

	ListPending() []Job
	ListProcessing() []Job
	ListCompleted() []Job
	ListWorkers() []Worker
	Snapshot() Snapshot
	Job(id JobID) (Job, error)

	OnComplete(hook CompletionHook)
}
