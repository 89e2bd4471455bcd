// Package metrics provides Prometheus instrumentation for the gateway.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codguard",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "codguard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// EvaluationsTotal counts risk evaluations by resulting tier.
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codguard",
			Name:      "risk_evaluations_total",
			Help:      "Total risk evaluations by decision tier.",
		},
		[]string{"tier"},
	)

	// UpstreamCallsTotal counts calls to the risk backend by outcome.
	// Outcomes: ok, transport_error, bad_status, bad_json.
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codguard",
			Name:      "risk_upstream_calls_total",
			Help:      "Total upstream risk API calls by outcome.",
		},
		[]string{"outcome"},
	)

	// CacheHitsTotal counts decision cache hits.
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "codguard",
		Name:      "decision_cache_hits_total",
		Help:      "Total decision cache hits.",
	})

	// CacheMissesTotal counts decision cache misses.
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "codguard",
		Name:      "decision_cache_misses_total",
		Help:      "Total decision cache misses.",
	})

	// WebhookVerifyFailuresTotal counts inbound webhooks rejected at the
	// signature gate.
	WebhookVerifyFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "codguard",
		Name:      "webhook_verify_failures_total",
		Help:      "Total inbound webhooks rejected for bad or missing signatures.",
	})

	// WebhookReceivedTotal counts accepted inbound webhooks by status value.
	WebhookReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codguard",
			Name:      "webhook_received_total",
			Help:      "Total accepted inbound webhooks by reported status.",
		},
		[]string{"status"},
	)

	// NotifyTotal counts outbound lifecycle notifications by result.
	NotifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codguard",
			Name:      "notify_deliveries_total",
			Help:      "Total outbound lifecycle notifications by result.",
		},
		[]string{"event", "result"},
	)

	// OrdersCancelledTotal counts orders auto-cancelled from fraud webhooks.
	OrdersCancelledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "codguard",
		Name:      "orders_cancelled_total",
		Help:      "Total orders cancelled by the fraud webhook.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		EvaluationsTotal,
		UpstreamCallsTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		WebhookVerifyFailuresTotal,
		WebhookReceivedTotal,
		NotifyTotal,
		OrdersCancelledTotal,
	)
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // route pattern, not raw path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics handler for the /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
