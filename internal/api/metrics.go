package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RequestMetrics holds the Prometheus collectors for backend requests.
type RequestMetrics struct {
	Requests *prometheus.CounterVec   // Requests by path and status code
	Latency  *prometheus.HistogramVec // Request latency by path
}

// NewRequestMetrics registers the request collectors with registerer.
func NewRequestMetrics(registerer prometheus.Registerer) *RequestMetrics {
	factory := promauto.With(registerer)
	return &RequestMetrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fin_api_requests_total",
			Help: "Total number of requests sent to the backend",
		}, []string{"path", "code"}),
		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fin_api_request_duration_seconds",
			Help:    "Backend request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
	}
}

func (m *RequestMetrics) observe(path, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(path, code).Inc()
	m.Latency.WithLabelValues(path).Observe(elapsed.Seconds())
}
