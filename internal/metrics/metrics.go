package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every storefront metric, including the fiber request metrics
const Namespace = "storefront"

var (
	// OrdersCreated counts orders placed, by payment method
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "orders_created_total",
		Help:      "Orders created",
	}, []string{"payment_method"})

	// OrderNumbersAllocated counts order numbers handed out
	OrderNumbersAllocated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "order_numbers_allocated_total",
		Help:      "Order numbers allocated from the store settings counter",
	})

	// OrderNumberConflicts counts compare-and-swap retries on the order counter
	OrderNumberConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "order_number_conflicts_total",
		Help:      "Lost races while allocating order numbers",
	})

	// StockDecrements counts decrement attempts by result (ok, insufficient, invalid, not_found)
	StockDecrements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "stock_decrements_total",
		Help:      "Variant stock decrement attempts",
	}, []string{"result"})

	// BlobCleanups counts blob deletion outcomes (deleted, failed, missing)
	BlobCleanups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "blob_cleanups_total",
		Help:      "Blob deletion attempts from file removal and the cleanup sweep",
	}, []string{"result"})

	// BlobCleanupPending is the size of the cleanup queue after the last sweep
	BlobCleanupPending = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "blob_cleanup_pending",
		Help:      "Blobs waiting for deletion",
	})

	// DownloadsRedeemed counts download link redemptions by result
	DownloadsRedeemed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "downloads_redeemed_total",
		Help:      "Download link redemptions",
	}, []string{"result"})

	// JobRuns counts scheduled job executions by job and result
	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "job_runs_total",
		Help:      "Scheduled job executions",
	}, []string{"job", "result"})
)
