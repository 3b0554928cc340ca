// Package metrics exposes Prometheus collectors for queries and imports.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Query outcomes used as the "outcome" label.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	registerOnce sync.Once

	queriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recq",
		Name:      "queries_total",
		Help:      "Total number of queries by collection, search mode and outcome",
	}, []string{"collection", "mode", "outcome"})
	queryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recq",
		Name:      "query_duration_seconds",
		Help:      "Histogram of query durations in seconds by collection",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms up to ~1s
	}, []string{"collection"})
	queryMatches = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recq",
		Name:      "query_matches",
		Help:      "Histogram of matching records per query before pagination",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"collection"})

	recordsImported = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recq",
		Name:      "records_imported_total",
		Help:      "Total number of records offered for import by collection and status",
	}, []string{"collection", "status"})

	collectionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "recq",
		Name:      "collections",
		Help:      "Current number of collections served",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(queriesTotal, queryDuration, queryMatches, recordsImported, collectionsGauge)
	})
}

// ObserveQuery records one query. matches is ignored unless outcome is OutcomeOK.
func ObserveQuery(collection, mode, outcome string, d time.Duration, matches int) {
	if mode == "" {
		mode = "none"
	}
	queriesTotal.WithLabelValues(collection, mode, outcome).Inc()
	queryDuration.WithLabelValues(collection).Observe(d.Seconds())
	if outcome == OutcomeOK {
		queryMatches.WithLabelValues(collection).Observe(float64(matches))
	}
}

// AddImported counts the records of one import batch.
func AddImported(collection string, inserted, skipped int) {
	recordsImported.WithLabelValues(collection, "inserted").Add(float64(inserted))
	recordsImported.WithLabelValues(collection, "skipped").Add(float64(skipped))
}

func SetCollections(n int) { collectionsGauge.Set(float64(n)) }
