package apiclient

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is an Observer recording Prometheus request metrics.
//
// Metrics:
//   - gosim_client_requests_total{op,status} - completed calls; status is the
//     HTTP code or "transport_error"
//   - gosim_client_request_duration_seconds{op} - call latency
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the client metrics on reg. Use a dedicated registry
// per client in tests to avoid duplicate registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosim_client_requests_total",
				Help: "Total number of backend API calls issued by the client",
			},
			[]string{"op", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gosim_client_request_duration_seconds",
				Help:    "Duration of backend API calls in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"op"},
		),
	}
}

func (m *Metrics) Observe(_ context.Context, call Call) {
	status := "transport_error"
	if call.StatusCode != 0 {
		status = strconv.Itoa(call.StatusCode)
	}
	m.RequestsTotal.WithLabelValues(call.Op, status).Inc()
	m.RequestDuration.WithLabelValues(call.Op).Observe(call.Duration.Seconds())
}
