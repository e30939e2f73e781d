package http

import "bot-dispatch/internal/domain"

// SubmitOrderRequest is the Data Transfer Object for submitting an order.
type SubmitOrderRequest struct {
	Priority string `json:"priority" validate:"required,oneof=normal high"`
}

// ToPriority converts the request to a domain.Priority.
func (r *SubmitOrderRequest) ToPriority() domain.Priority {
	return domain.Priority(r.Priority)
}

// OrdersResponse groups orders by state for GET /orders.
type OrdersResponse struct {
	Pending    []domain.Job `json:"pending"`
	Processing []domain.Job `json:"processing"`
	Completed  []domain.Job `json:"completed"`
}

// RemoveBotResponse is returned by DELETE /bots when a bot was removed.
type RemoveBotResponse struct {
	RemovedBotID domain.WorkerID `json:"removed_bot_id"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
