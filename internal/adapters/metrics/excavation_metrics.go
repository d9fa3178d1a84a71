package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ExcavationMetricsCollector handles cell and run metrics
type ExcavationMetricsCollector struct {
	cellsMined     *prometheus.CounterVec
	cellsSkipped   *prometheus.CounterVec
	runsTotal      *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	throughput     *prometheus.GaugeVec
	queueRemaining *prometheus.GaugeVec
}

// NewExcavationMetricsCollector creates a new excavation metrics collector
func NewExcavationMetricsCollector() *ExcavationMetricsCollector {
	return &ExcavationMetricsCollector{
		cellsMined: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "excavation",
				Name:      "cells_mined_total",
				Help:      "Total number of cells removed",
			},
			[]string{"agent"},
		),

		cellsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "excavation",
				Name:      "cells_skipped_total",
				Help:      "Total number of queued cells skipped, by reason",
			},
			[]string{"agent", "reason"},
		),

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "excavation",
				Name:      "runs_total",
				Help:      "Total number of excavation runs by terminal state",
			},
			[]string{"agent", "state"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "excavation",
				Name:      "run_duration_seconds",
				Help:      "Excavation run duration distribution",
				Buckets:   []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600},
			},
			[]string{"agent", "state"},
		),

		throughput: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "excavation",
				Name:      "throughput_blocks_per_second",
				Help:      "Configured removal pacing",
			},
			[]string{"agent"},
		),

		queueRemaining: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "excavation",
				Name:      "queue_remaining",
				Help:      "Cells left in the active mining queue",
			},
			[]string{"agent"},
		),
	}
}

// Register registers all excavation metrics with the Prometheus registry
func (c *ExcavationMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.cellsMined,
		c.cellsSkipped,
		c.runsTotal,
		c.runDuration,
		c.throughput,
		c.queueRemaining,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordCellMined increments the mined counter
func (c *ExcavationMetricsCollector) RecordCellMined(agent string) {
	c.cellsMined.WithLabelValues(agent).Inc()
}

// RecordCellSkipped increments the skipped counter
func (c *ExcavationMetricsCollector) RecordCellSkipped(agent, reason string) {
	c.cellsSkipped.WithLabelValues(agent, reason).Inc()
}

// RecordRunFinished records a run's terminal state and duration
func (c *ExcavationMetricsCollector) RecordRunFinished(agent, state string, duration float64) {
	c.runsTotal.WithLabelValues(agent, state).Inc()
	c.runDuration.WithLabelValues(agent, state).Observe(duration)
}

// SetThroughput publishes the current pacing rate
func (c *ExcavationMetricsCollector) SetThroughput(agent string, blocksPerSecond float64) {
	c.throughput.WithLabelValues(agent).Set(blocksPerSecond)
}

// SetQueueRemaining publishes the remaining queue length
func (c *ExcavationMetricsCollector) SetQueueRemaining(agent string, remaining int) {
	c.queueRemaining.WithLabelValues(agent).Set(float64(remaining))
}
