// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysisCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syncscout_analysis_cache_hits_total",
			Help: "Total number of analysis cache hits",
		},
	)

	AnalysisCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syncscout_analysis_cache_misses_total",
			Help: "Total number of analysis cache misses, including stale entries",
		},
	)

	AnalysisCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syncscout_analysis_cache_evictions_total",
			Help: "Total number of analysis cache entries evicted",
		},
	)

	AnalysisCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncscout_analysis_cache_entries",
			Help: "Current number of cached analyses",
		},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "syncscout_analysis_duration_seconds",
			Help:    "Time spent scoring a feature profile",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	MatchesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "syncscout_matches_returned",
			Help:    "Number of matches returned per FindMatches call",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncscout_submissions_total",
			Help: "Total number of submission attempts by outcome",
		},
		[]string{"outcome"},
	)

	CatalogOpportunities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "syncscout_catalog_opportunities",
			Help: "Opportunities currently in the catalog by status",
		},
		[]string{"status"},
	)

	FeedBriefsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncscout_feed_briefs_imported_total",
			Help: "Total number of briefs imported from external feeds",
		},
		[]string{"feed"},
	)

	RefreshTaskRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncscout_refresh_task_runs_total",
			Help: "Total number of scheduler task runs",
		},
		[]string{"task"},
	)

	RefreshTaskFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncscout_refresh_task_failures_total",
			Help: "Total number of failed scheduler task runs",
		},
		[]string{"task"},
	)

	RefreshTaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syncscout_refresh_task_duration_seconds",
			Help:    "Duration of scheduler task runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncscout_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syncscout_api_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordTaskRun records one scheduler task execution.
func RecordTaskRun(task string, duration time.Duration, err error) {
	RefreshTaskRuns.WithLabelValues(task).Inc()
	RefreshTaskDuration.WithLabelValues(task).Observe(duration.Seconds())
	if err != nil {
		RefreshTaskFailures.WithLabelValues(task).Inc()
	}
}

func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSubmission counts a submission attempt.
func RecordSubmission(ok bool) {
	if ok {
		SubmissionsTotal.WithLabelValues("submitted").Inc()
		return
	}
	SubmissionsTotal.WithLabelValues("failed").Inc()
}
