// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ns = "devicetrack"

	LabelMethod = "method"
	LabelRoute  = "route"
	LabelStatus = "status"
	LabelResult = "result"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	TokenCacheLookups *prometheus.CounterVec
	DeviceInits       prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "requests_total", Namespace: ns, Subsystem: "http",
			Help: "The number of HTTP requests served, by route pattern and status code.",
		}, []string{LabelMethod, LabelRoute, LabelStatus}),
		// Status is left out to keep bucket cardinality down.
		HTTPRequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name: "request_duration_seconds", Namespace: ns, Subsystem: "http",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			Help:    "The time taken to serve HTTP requests.",
		}, []string{LabelMethod, LabelRoute}),

		TokenCacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "lookups_total", Namespace: ns, Subsystem: "token_cache",
			Help: "Token cache lookups by result (hit, miss, error).",
		}, []string{LabelResult}),
		DeviceInits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "inits_total", Namespace: ns, Subsystem: "device",
			Help: "The number of successful device init calls.",
		}),
	}
}

// NewNop returns collectors bound to a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
