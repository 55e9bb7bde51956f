package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fraud_messages_consumed_total",
		Help: "Total number of messages received from the source.",
	})

	MessagesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fraud_messages_processed_total",
		Help: "Total number of messages that completed the pipeline successfully.",
	})

	MessagesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraud_messages_dropped_total",
		Help: "Total number of messages dropped, labelled by reason.",
	}, []string{"reason"})

	ViolationsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraud_violations_total",
		Help: "Total number of rule violations detected, labelled by rule.",
	}, []string{"rule"})

	TransactionsFlagged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fraud_transactions_flagged_total",
		Help: "Total number of transactions appended to the fraud store.",
	})

	ProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fraud_processing_duration_ms",
		Help:    "Per-message pipeline latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	RetriesScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fraud_retries_scheduled_total",
		Help: "Total number of retry attempts scheduled for transient failures.",
	})

	RetryPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fraud_retry_pending",
		Help: "Number of retry tasks currently waiting on their backoff timer.",
	})

	CacheHitRatio = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fraud_activity_cache_hit_ratio",
		Help: "Activity window cache hit ratio (0-1).",
	})
)

// Drop reasons used with MessagesDropped.
const (
	ReasonMalformed      = "malformed"
	ReasonValidation     = "validation"
	ReasonRetryExhausted = "retry_exhausted"
)
