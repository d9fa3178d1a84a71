package common

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for spans emitted by the core
const TracerName = "github.com/andrescamacho/excavator-go"

// Tracer returns the tracer used by application services. Without an SDK
// registered it is a no-op.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
