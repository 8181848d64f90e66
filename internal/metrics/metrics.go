// Package metrics defines Prometheus metrics for discogs-alert.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "discogs_alert"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPPanicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_panics_recovered_total",
		Help:      "Handler panics recovered by the HTTP server.",
	})
)

// Health metrics.
var (
	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "Whether the last /healthz probe succeeded (1) or failed (0).",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "Whether the last /readyz probe succeeded (1) or failed (0).",
	})
)

// Cycle metrics.
var (
	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Duration of poll cycles in seconds.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
	})

	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycles_total",
		Help:      "Total number of poll cycles by outcome.",
	}, []string{"outcome"})

	CycleLastSuccessTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cycle_last_success_timestamp",
		Help:      "Unix timestamp of the last cycle that completed without aborting.",
	})

	ReleasesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "releases_skipped_total",
		Help:      "Total number of releases skipped because their listings could not be fetched.",
	})

	SchedulerNextCycleTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scheduler_next_cycle_timestamp",
		Help:      "Unix timestamp of the next scheduled cycle.",
	})
)

// Listing metrics.
var (
	ListingsEvaluatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_evaluated_total",
		Help:      "Total number of marketplace listings evaluated.",
	})

	ListingsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_rejected_total",
		Help:      "Total number of listings rejected, by reason.",
	}, []string{"reason"})

	ListingParseErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listing_parse_errors_total",
		Help:      "Total number of marketplace rows that could not be parsed.",
	})
)

// Notification metrics.
var (
	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of notifications delivered, by backend.",
	}, []string{"backend"})

	NotificationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures, by backend.",
	}, []string{"backend"})

	NotificationDuplicatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_duplicates_total",
		Help:      "Total number of matches suppressed because they were already notified.",
	})

	NotificationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of notification sends in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Upstream metrics.
var (
	DiscogsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discogs_requests_total",
		Help:      "Total number of requests made to Discogs, by kind and status.",
	}, []string{"kind", "status"})

	RateLimitWaitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_waits_total",
		Help:      "Total number of times a client paused for an upstream rate limit.",
	}, []string{"upstream"})

	RateCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_cache_total",
		Help:      "Exchange rate cache lookups, by result (hit or miss).",
	}, []string{"result"})
)

// ObserveRateCache records an exchange rate cache lookup.
func ObserveRateCache(hit bool) {
	if hit {
		RateCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	RateCacheTotal.WithLabelValues("miss").Inc()
}
