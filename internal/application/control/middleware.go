package control

import (
	"context"
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/andrescamacho/excavator-go/internal/application/common"
	"github.com/andrescamacho/excavator-go/internal/application/mediator"
)

// LoggerProvider returns the operation logger for an agent
type LoggerProvider func(agent string) common.OperationLogger

// AgentLoggerMiddleware injects the logger of the agent named by the
// request's Agent field. Requests without one pass through unchanged.
func AgentLoggerMiddleware(loggers LoggerProvider) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if agent := extractAgent(request); agent != "" {
			ctx = common.WithLogger(ctx, loggers(agent))
		}
		return next(ctx, request)
	}
}

// TracingMiddleware wraps each request in a span named after its type
func TracingMiddleware() mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		ctx, span := common.Tracer().Start(ctx, "control."+requestName(request))
		defer span.End()
		if agent := extractAgent(request); agent != "" {
			span.SetAttributes(attribute.String("agent", agent))
		}

		resp, err := next(ctx, request)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return resp, err
	}
}

// extractAgent reads a string Agent field from a struct or struct pointer
func extractAgent(request mediator.Request) string {
	v := reflect.ValueOf(request)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return ""
	}
	f := v.FieldByName("Agent")
	if !f.IsValid() || f.Kind() != reflect.String {
		return ""
	}
	return f.String()
}

func requestName(request mediator.Request) string {
	t := reflect.TypeOf(request)
	if t == nil {
		return "nil"
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return fmt.Sprint(t)
	}
	return t.Name()
}
