// Package metrics exposes Prometheus instruments for upstream traffic and aggregation outcomes.
package metrics

import (
	"net/http"

	"github.com/anisan-cli/anifeed/constant"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: constant.App,
		Subsystem: "transport",
		Name:      "requests_total",
		Help:      "Upstream requests by host and outcome.",
	}, []string{"host", "outcome"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: constant.App,
		Subsystem: "transport",
		Name:      "request_duration_seconds",
		Help:      "Upstream request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"host"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: constant.App,
		Subsystem: "transport",
		Name:      "cache_hits_total",
		Help:      "Responses served from the on-disk cache.",
	})

	Aggregations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: constant.App,
		Subsystem: "aggregator",
		Name:      "requests_total",
		Help:      "Aggregation requests by operation and terminal state.",
	}, []string{"operation", "state"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: constant.App,
		Subsystem: "server",
		Name:      "requests_total",
		Help:      "Served HTTP requests by route and status code.",
	}, []string{"route", "code"})
)

// Outcome labels for Requests.
const (
	OutcomeOK       = "ok"
	OutcomeStatus   = "status"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
