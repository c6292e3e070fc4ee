package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts inbound requests by route and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lacura_http_requests_total",
		Help: "Inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	// HTTPDuration tracks handler latency per route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lacura_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// ChatWorkflows counts chat turns by the workflow the classifier picked.
	ChatWorkflows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lacura_chat_workflows_total",
		Help: "Chat turns by detected workflow.",
	}, []string{"workflow"})

	// UpstreamFailures counts failed calls to external services.
	UpstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lacura_upstream_failures_total",
		Help: "Failed calls to external services, including timeouts.",
	}, []string{"service", "reason"})
)
