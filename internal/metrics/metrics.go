// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HttpRequestsTotal counts HTTP requests by path, method and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of http requests handled by the service.",
		},
		[]string{"path", "method", "code"},
	)

	// OrdersSubmitted counts accepted orders by priority class.
	OrdersSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_orders_submitted_total",
			Help: "Total number of orders submitted to the dispatcher.",
		},
		[]string{"priority"},
	)

	// OrdersCompleted counts completed orders by priority class.
	OrdersCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_orders_completed_total",
			Help: "Total number of orders completed by bots.",
		},
		[]string{"priority"},
	)

	// OrdersRequeued counts orders returned to the queue because their bot was removed.
	OrdersRequeued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_orders_requeued_total",
			Help: "Total number of orders requeued after their bot was removed.",
		},
		[]string{"priority"},
	)

	// StaleCompletions counts completion callbacks discarded by the ownership check.
	StaleCompletions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_stale_completions_total",
			Help: "Total number of completion callbacks discarded as stale.",
		},
	)

	// PendingOrders is the current length of the pending queue.
	PendingOrders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_pending_orders",
			Help: "Number of orders waiting for a bot.",
		},
	)

	// Bots is the current number of bots by status (idle/busy).
	Bots = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dispatch_bots",
			Help: "Number of bots in the pool by status.",
		},
		[]string{"status"},
	)
)
