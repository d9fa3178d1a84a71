package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HazardMetricsCollector handles hazard scan metrics
type HazardMetricsCollector struct {
	scansTotal       *prometheus.CounterVec
	lavaCells        prometheus.Counter
	hostilesSeen     prometheus.Counter
	mitigationsTotal *prometheus.CounterVec
}

// NewHazardMetricsCollector creates a new hazard metrics collector
func NewHazardMetricsCollector() *HazardMetricsCollector {
	return &HazardMetricsCollector{
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "hazard",
				Name:      "scans_total",
				Help:      "Total number of volume scans by verdict",
			},
			[]string{"safe"},
		),
		lavaCells: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hazard",
			Name:      "lava_cells_total",
			Help:      "Hazardous liquid cells found by scans",
		}),
		hostilesSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hazard",
			Name:      "hostiles_total",
			Help:      "Hostile entities found by scans",
		}),
		mitigationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "hazard",
				Name:      "mitigations_total",
				Help:      "Emergency relocations by result",
			},
			[]string{"success"},
		),
	}
}

// Register registers all hazard metrics with the Prometheus registry
func (c *HazardMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	for _, metric := range []prometheus.Collector{c.scansTotal, c.lavaCells, c.hostilesSeen, c.mitigationsTotal} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RecordScan records one volume scan
func (c *HazardMetricsCollector) RecordScan(safe bool, lava, hostiles int) {
	c.scansTotal.WithLabelValues(strconv.FormatBool(safe)).Inc()
	c.lavaCells.Add(float64(lava))
	c.hostilesSeen.Add(float64(hostiles))
}

// RecordMitigation records one mitigation attempt
func (c *HazardMetricsCollector) RecordMitigation(success bool) {
	c.mitigationsTotal.WithLabelValues(strconv.FormatBool(success)).Inc()
}
