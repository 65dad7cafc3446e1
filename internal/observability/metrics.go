// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Upstream metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	RateLimitWait    *prometheus.HistogramVec

	// Acquisition metrics
	TrendingTokens   prometheus.Gauge
	TrendingDropped  *prometheus.CounterVec
	BatchesProcessed *prometheus.CounterVec
	PairsRejected    *prometheus.CounterVec
	TokensAccepted   prometheus.Counter

	// Classification metrics
	TokensClassified *prometheus.CounterVec

	// Scan metrics
	ScansTotal   *prometheus.CounterVec
	ScanDuration prometheus.Histogram

	// Side-effect metrics
	StoreErrors    *prometheus.CounterVec
	PublishResults *prometheus.CounterVec

	// Health metrics
	LastSuccessfulScan prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg registers with the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "token_scanner"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Upstream metrics
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of upstream requests by source and status",
		}, []string{"source", "status"}),
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Upstream request latency by source",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		RateLimitWait: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting for a rate limiter slot",
			Buckets:   []float64{0, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"limiter"}),

		// Acquisition metrics
		TrendingTokens: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "acquisition",
			Name:      "trending_tokens",
			Help:      "Number of trending tokens returned by the last fetch",
		}),
		TrendingDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acquisition",
			Name:      "trending_dropped_total",
			Help:      "Trending entries dropped before batching by reason",
		}, []string{"reason"}),
		BatchesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acquisition",
			Name:      "batches_total",
			Help:      "Pair batches processed by outcome",
		}, []string{"outcome"}),
		PairsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acquisition",
			Name:      "pairs_rejected_total",
			Help:      "Pairs rejected during aggregation by reason",
		}, []string{"reason"}),
		TokensAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acquisition",
			Name:      "tokens_accepted_total",
			Help:      "Canonical tokens produced by aggregation",
		}),

		// Classification metrics
		TokensClassified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classification",
			Name:      "tokens_total",
			Help:      "Tokens surfaced by classifier and category",
		}, []string{"classifier", "category"}),

		// Scan metrics
		ScansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "runs_total",
			Help:      "Total number of scans by status",
		}, []string{"status"}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Scan duration",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),

		// Side-effect metrics
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Store operation errors by store and operation",
		}, []string{"store", "operation"}),
		PublishResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "messages_total",
			Help:      "Published scan results by sink and status",
		}, []string{"sink", "status"}),

		// Health metrics
		LastSuccessfulScan: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_scan_timestamp",
			Help:      "Unix timestamp of last successful scan",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordUpstreamRequest records one upstream request.
func RecordUpstreamRequest(source, status string, seconds float64) {
	DefaultMetrics.UpstreamRequests.WithLabelValues(source, status).Inc()
	DefaultMetrics.UpstreamLatency.WithLabelValues(source).Observe(seconds)
}

// RecordRateLimitWait records time spent waiting for a limiter slot.
func RecordRateLimitWait(limiter string, seconds float64) {
	DefaultMetrics.RateLimitWait.WithLabelValues(limiter).Observe(seconds)
}

// RecordTrendingFetched sets the trending token gauge.
func RecordTrendingFetched(n int) {
	DefaultMetrics.TrendingTokens.Set(float64(n))
}

// RecordTrendingDropped counts a trending entry dropped before batching.
func RecordTrendingDropped(reason string) {
	DefaultMetrics.TrendingDropped.WithLabelValues(reason).Inc()
}

// RecordBatch counts a processed batch ("ok" or "empty").
func RecordBatch(outcome string) {
	DefaultMetrics.BatchesProcessed.WithLabelValues(outcome).Inc()
}

// RecordPairRejected counts a rejected pair.
func RecordPairRejected(reason string) {
	DefaultMetrics.PairsRejected.WithLabelValues(reason).Inc()
}

// RecordTokensAccepted counts canonical tokens produced by a scan.
func RecordTokensAccepted(n int) {
	DefaultMetrics.TokensAccepted.Add(float64(n))
}

// RecordClassified counts tokens surfaced in a category.
func RecordClassified(classifier, category string, n int) {
	DefaultMetrics.TokensClassified.WithLabelValues(classifier, category).Add(float64(n))
}

// RecordScan records a scan run.
func RecordScan(status string, durationSeconds float64) {
	DefaultMetrics.ScansTotal.WithLabelValues(status).Inc()
	DefaultMetrics.ScanDuration.Observe(durationSeconds)
	if status == "success" {
		DefaultMetrics.LastSuccessfulScan.Set(float64(time.Now().Unix()))
	}
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(store, operation string) {
	DefaultMetrics.StoreErrors.WithLabelValues(store, operation).Inc()
}

// RecordPublish records a publish attempt.
func RecordPublish(sink string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.PublishResults.WithLabelValues(sink, status).Inc()
}
