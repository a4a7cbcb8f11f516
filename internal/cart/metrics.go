package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Restore outcomes.
const (
	restoreEmpty     = "empty"
	restoreLoaded    = "loaded"
	restoreRecovered = "recovered"
)

// Mutation outcomes.
const (
	outcomeOK          = "ok"
	outcomeWriteFailed = "write_failed"
	outcomeRejected    = "rejected"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_mutations_total",
			Help: "Total number of cart mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	restoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_restores_total",
			Help: "Total number of cart restores by outcome",
		},
		[]string{"outcome"},
	)

	storageWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cart_storage_write_duration_seconds",
			Help:    "Duration of write-through persistence in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	lineItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cart_line_items",
			Help: "Number of distinct line items currently in the cart",
		},
	)

	units = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cart_units",
			Help: "Total quantity across all line items currently in the cart",
		},
	)
)
