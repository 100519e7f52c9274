package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"platingreport/internal/domain"
)

const namespace = "platingreport"

const (
	AttemptSuccess    = "success"
	AttemptOverloaded = "overloaded"
	AttemptFailed     = "failed"
)

var (
	recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records classified, partitioned by sheet and status.",
		},
		[]string{"sheet", "status"},
	)

	droppedRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_records_total",
			Help:      "Records removed because a validated attribute was not numeric.",
		},
		[]string{"sheet"},
	)

	summaryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_attempts_total",
			Help:      "Remote summary attempts, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	summaryBackoffSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_backoff_seconds",
			Help:      "Backoff slept before retrying an overloaded summary request.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32},
		},
	)
)

// Register attaches collectors to reg. Registering twice is not an error.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		recordsTotal,
		droppedRecordsTotal,
		summaryAttemptsTotal,
		summaryBackoffSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

func ObserveClassified(sheet string, status domain.Classification, n int) {
	recordsTotal.WithLabelValues(sheet, string(status)).Add(float64(n))
}

func ObserveDropped(sheet string, n int) {
	droppedRecordsTotal.WithLabelValues(sheet).Add(float64(n))
}

func ObserveAttempt(outcome string) {
	switch outcome {
	case AttemptSuccess, AttemptOverloaded:
	default:
		outcome = AttemptFailed
	}
	summaryAttemptsTotal.WithLabelValues(outcome).Inc()
}

func ObserveBackoff(d time.Duration) {
	summaryBackoffSeconds.Observe(max(d, 0).Seconds())
}
