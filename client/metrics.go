package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the client's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	LoginsTotal     *prometheus.CounterVec
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the client metrics with reg. It panics
// if they are already registered there, so call it once per registry and
// pass the result to every client through Config.Metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LoginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pve_client_logins_total",
			Help: "Session setups by authentication method and outcome.",
		}, []string{"method", "outcome"}),

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pve_client_requests_total",
			Help: "API requests by HTTP method and status code (0 = no response).",
		}, []string{"method", "code"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pve_client_request_duration_seconds",
			Help:    "API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// ObserveRequest implements pveapi.RequestObserver.
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) observeLogin(method, outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(method, outcome).Inc()
}
