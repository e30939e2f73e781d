package domain

import "strconv"

// WorkerStatus defines the availability of a bot.
type WorkerStatus string

const (
	WorkerStatusIdle WorkerStatus = "idle"
	WorkerStatusBusy WorkerStatus = "busy"
)

// WorkerID is a monotonically increasing bot identifier. Zero means "no bot".
type WorkerID int64

func (id WorkerID) String() string {
	return "bot-" + strconv.FormatInt(int64(id), 10)
}

// Worker is a processing bot that handles at most one order at a time.
type Worker struct {
	ID           WorkerID     `json:"id"`
	Status       WorkerStatus `json:"status"`
	CurrentJobID JobID        `json:"current_order_id,omitempty"`
}

// IsIdle reports whether the bot can take a new order.
func (w *Worker) IsIdle() bool {
	return w.Status == WorkerStatusIdle
}
