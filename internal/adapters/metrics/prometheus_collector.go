package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "excavator"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalExcavationCollector is set by SetGlobalExcavationCollector() when metrics are enabled
	globalExcavationCollector ExcavationMetricsRecorder

	// globalNavigationCollector is set by SetGlobalNavigationCollector() when metrics are enabled
	globalNavigationCollector NavigationMetricsRecorder

	// globalHazardCollector is set by SetGlobalHazardCollector() when metrics are enabled
	globalHazardCollector HazardMetricsRecorder

	// globalWorldCollector is set by SetGlobalWorldCollector() when metrics are enabled
	globalWorldCollector WorldMetricsRecorder

	// controlAPICollector backs the hertz middleware; nil when metrics are disabled
	controlAPICollector *ControlAPIMetricsCollector
)

// ExcavationMetricsRecorder records per-cell and per-run excavation events
type ExcavationMetricsRecorder interface {
	RecordCellMined(agent string)
	RecordCellSkipped(agent, reason string)
	RecordRunFinished(agent, state string, duration float64)
	SetThroughput(agent string, blocksPerSecond float64)
	SetQueueRemaining(agent string, remaining int)
}

// NavigationMetricsRecorder records navigation goal outcomes
type NavigationMetricsRecorder interface {
	RecordGoal(agent, outcome string, duration float64, detours int)
}

// HazardMetricsRecorder records hazard scans and mitigations
type HazardMetricsRecorder interface {
	RecordScan(safe bool, lava, hostiles int)
	RecordMitigation(success bool)
}

// WorldMetricsRecorder records world bridge round trips
type WorldMetricsRecorder interface {
	RecordRequest(method, outcome string, duration float64)
	RecordRateLimitWait(duration float64)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// Setup creates, registers and installs every collector
func Setup() error {
	if Registry == nil {
		InitRegistry()
	}

	excavation := NewExcavationMetricsCollector()
	if err := excavation.Register(); err != nil {
		return err
	}
	navigation := NewNavigationMetricsCollector()
	if err := navigation.Register(); err != nil {
		return err
	}
	hazard := NewHazardMetricsCollector()
	if err := hazard.Register(); err != nil {
		return err
	}

	world := NewWorldMetricsCollector()
	if err := world.Register(); err != nil {
		return err
	}
	api := NewControlAPIMetricsCollector()
	if err := api.Register(); err != nil {
		return err
	}

	SetGlobalExcavationCollector(excavation)
	SetGlobalNavigationCollector(navigation)
	SetGlobalHazardCollector(hazard)
	SetGlobalWorldCollector(world)
	controlAPICollector = api
	return nil
}

// ControlAPICollector returns the control API collector, or nil when
// metrics are disabled
func ControlAPICollector() *ControlAPIMetricsCollector {
	return controlAPICollector
}

// SetGlobalWorldCollector sets the global world bridge collector
func SetGlobalWorldCollector(c WorldMetricsRecorder) {
	globalWorldCollector = c
}

// SetGlobalExcavationCollector sets the global excavation collector
func SetGlobalExcavationCollector(c ExcavationMetricsRecorder) {
	globalExcavationCollector = c
}

// SetGlobalNavigationCollector sets the global navigation collector
func SetGlobalNavigationCollector(c NavigationMetricsRecorder) {
	globalNavigationCollector = c
}

// SetGlobalHazardCollector sets the global hazard collector
func SetGlobalHazardCollector(c HazardMetricsRecorder) {
	globalHazardCollector = c
}

// RecordCellMined records a removed cell globally
func RecordCellMined(agent string) {
	if globalExcavationCollector != nil {
		globalExcavationCollector.RecordCellMined(agent)
	}
}

// RecordCellSkipped records a skipped cell globally
func RecordCellSkipped(agent, reason string) {
	if globalExcavationCollector != nil {
		globalExcavationCollector.RecordCellSkipped(agent, reason)
	}
}

// RecordRunFinished records a terminal excavation state globally
func RecordRunFinished(agent, state string, duration float64) {
	if globalExcavationCollector != nil {
		globalExcavationCollector.RecordRunFinished(agent, state, duration)
	}
}

// SetThroughput publishes the effective throughput globally
func SetThroughput(agent string, blocksPerSecond float64) {
	if globalExcavationCollector != nil {
		globalExcavationCollector.SetThroughput(agent, blocksPerSecond)
	}
}

// SetQueueRemaining publishes the remaining queue length globally
func SetQueueRemaining(agent string, remaining int) {
	if globalExcavationCollector != nil {
		globalExcavationCollector.SetQueueRemaining(agent, remaining)
	}
}

// RecordGoal records a navigation goal globally
func RecordGoal(agent, outcome string, duration float64, detours int) {
	if globalNavigationCollector != nil {
		globalNavigationCollector.RecordGoal(agent, outcome, duration, detours)
	}
}

// RecordScan records a hazard scan globally
func RecordScan(safe bool, lava, hostiles int) {
	if globalHazardCollector != nil {
		globalHazardCollector.RecordScan(safe, lava, hostiles)
	}
}

// RecordMitigation records a mitigation attempt globally
func RecordMitigation(success bool) {
	if globalHazardCollector != nil {
		globalHazardCollector.RecordMitigation(success)
	}
}

// RecordWorldRequest records a world bridge round trip globally
func RecordWorldRequest(method, outcome string, duration float64) {
	if globalWorldCollector != nil {
		globalWorldCollector.RecordRequest(method, outcome, duration)
	}
}

// RecordWorldRateLimitWait records limiter wait time globally
func RecordWorldRateLimitWait(duration float64) {
	if globalWorldCollector != nil {
		globalWorldCollector.RecordRateLimitWait(duration)
	}
}
