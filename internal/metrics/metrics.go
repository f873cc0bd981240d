// Package metrics holds the Prometheus collectors shared by the server and
// the application layer.
package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts served HTTP requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "passkeep",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "passkeep",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// CredentialOpsTotal counts credential store operations by outcome.
	CredentialOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "passkeep",
			Name:      "credential_operations_total",
			Help:      "Total number of credential store operations",
		},
		[]string{"op", "result"},
	)
)

// ObserveCredentialOp records one credential operation. A nil err counts as
// "ok"; context cancellation is reported separately from other failures.
func ObserveCredentialOp(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		result = "canceled"
	default:
		result = "error"
	}
	CredentialOpsTotal.WithLabelValues(op, result).Inc()
}

// ObserveHTTPRequest records one served request. route is the matched mux
// pattern, not the raw path, to keep label cardinality bounded.
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
