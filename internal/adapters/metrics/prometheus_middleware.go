package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HertzMiddleware records duration and status of every control API request.
//
// Requests are labelled with the matched route pattern rather than the raw
// path, so "/api/agents/:agent/status" stays one series for every agent.
func HertzMiddleware(collector *ControlAPIMetricsCollector) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if collector == nil {
			ctx.Next(c)
			return
		}

		start := time.Now()
		ctx.Next(c)

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.RecordRequest(string(ctx.Method()), route, ctx.Response.StatusCode(), time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format
func Handler() app.HandlerFunc {
	if Registry == nil {
		return func(c context.Context, ctx *app.RequestContext) {
			ctx.String(http.StatusNotFound, "metrics disabled")
		}
	}
	return adaptor.HertzHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
