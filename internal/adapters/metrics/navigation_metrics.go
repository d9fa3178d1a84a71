package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NavigationMetricsCollector handles navigation goal metrics
type NavigationMetricsCollector struct {
	goalsTotal   *prometheus.CounterVec
	goalDuration *prometheus.HistogramVec
	detours      *prometheus.CounterVec
}

// NewNavigationMetricsCollector creates a new navigation metrics collector
func NewNavigationMetricsCollector() *NavigationMetricsCollector {
	return &NavigationMetricsCollector{
		goalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "navigation",
				Name:      "goals_total",
				Help:      "Total number of navigation goals by outcome",
			},
			[]string{"agent", "outcome"},
		),

		goalDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "navigation",
				Name:      "goal_duration_seconds",
				Help:      "Navigation goal duration distribution",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"agent", "outcome"},
		),

		detours: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "navigation",
				Name:      "detours_total",
				Help:      "Obstacle and hazard avoidance bursts issued",
			},
			[]string{"agent"},
		),
	}
}

// Register registers all navigation metrics with the Prometheus registry
func (c *NavigationMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	for _, metric := range []prometheus.Collector{c.goalsTotal, c.goalDuration, c.detours} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RecordGoal records a finished navigation goal
func (c *NavigationMetricsCollector) RecordGoal(agent, outcome string, duration float64, detours int) {
	c.goalsTotal.WithLabelValues(agent, outcome).Inc()
	c.goalDuration.WithLabelValues(agent, outcome).Observe(duration)
	if detours > 0 {
		c.detours.WithLabelValues(agent).Add(float64(detours))
	}
}
