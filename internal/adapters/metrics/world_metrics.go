package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WorldMetricsCollector handles world bridge request metrics
type WorldMetricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimitWait   prometheus.Histogram
}

// NewWorldMetricsCollector creates a new world bridge metrics collector
func NewWorldMetricsCollector() *WorldMetricsCollector {
	return &WorldMetricsCollector{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "world",
				Name:      "requests_total",
				Help:      "Total number of world bridge requests by method and outcome",
			},
			[]string{"method", "outcome"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "world",
				Name:      "request_duration_seconds",
				Help:      "World bridge round trip distribution",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"method"},
		),

		rateLimitWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "world",
				Name:      "rate_limit_wait_seconds",
				Help:      "Time spent waiting for the request rate limiter",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.0},
			},
		),
	}
}

// Register registers the world metrics with the Prometheus registry
func (c *WorldMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}

	for _, metric := range []prometheus.Collector{c.requestsTotal, c.requestDuration, c.rateLimitWait} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RecordRequest records one request/response round trip
func (c *WorldMetricsCollector) RecordRequest(method, outcome string, duration float64) {
	c.requestsTotal.WithLabelValues(method, outcome).Inc()
	c.requestDuration.WithLabelValues(method).Observe(duration)
}

// RecordRateLimitWait records time spent waiting for the limiter
func (c *WorldMetricsCollector) RecordRateLimitWait(duration float64) {
	c.rateLimitWait.Observe(duration)
}
