package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cargomarket",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cargomarket",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	offerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cargomarket",
		Name:      "offer_transitions_total",
		Help:      "Offer status transitions by target status.",
	}, []string{"status"})

	newsFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cargomarket",
		Name:      "news_fallback_total",
		Help:      "External news requests served from local fallback.",
	})

	workerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cargomarket",
		Name:      "worker_affected_rows_total",
		Help:      "Rows changed by background workers.",
	}, []string{"worker", "operation"})
)

func ObserveHTTP(route, method string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func OfferTransition(status string) {
	offerTransitions.WithLabelValues(status).Inc()
}

func NewsFallback() {
	newsFallbacks.Inc()
}

func WorkerAffected(worker, operation string, n int64) {
	if n > 0 {
		workerRuns.WithLabelValues(worker, operation).Add(float64(n))
	}
}
