// Package httpadapter exposes the excavation controllers over a hertz
// control API.
package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/andrescamacho/excavator-go/internal/adapters/metrics"
	"github.com/andrescamacho/excavator-go/internal/application/control"
	appExcavation "github.com/andrescamacho/excavator-go/internal/application/excavation"
	"github.com/andrescamacho/excavator-go/internal/application/mediator"
	"github.com/andrescamacho/excavator-go/internal/domain/excavation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

// Handler serves the control API. Controller operations are dispatched
// through the mediator; run history is read from Runs when persistence is on.
type Handler struct {
	Mediator mediator.Mediator
	Runs     excavation.RunRepository
}

// NewHandler creates a handler over a control mediator
func NewHandler(m mediator.Mediator, runs excavation.RunRepository) Handler {
	return Handler{Mediator: m, Runs: runs}
}

func (h Handler) RegisterRoutes(s *server.Hertz, metricsPath string) {
	s.Use(metrics.HertzMiddleware(metrics.ControlAPICollector()))

	s.GET("/healthz", h.health)
	if metricsPath != "" {
		s.GET(metricsPath, metrics.Handler())
	}

	api := s.Group("/api")
	api.GET("/agents", h.listAgents)
	api.GET("/runs", h.listRuns)
	api.GET("/runs/:operation_id", h.getRun)

	agent := api.Group("/agents/:agent")
	agent.GET("/status", h.status)
	agent.POST("/excavations", h.start)
	agent.POST("/pause", h.pause)
	agent.POST("/resume", h.resume)
	agent.POST("/stop", h.stop)
	agent.PUT("/throughput", h.throughput)
}

type startRequest struct {
	Min           *shared.Coordinate `json:"min"`
	Max           *shared.Coordinate `json:"max"`
	Throughput    float64            `json:"throughput,omitempty"`
	ProgressEvery int                `json:"progress_every,omitempty"`
	HazardRadius  int                `json:"hazard_radius,omitempty"`
}

type startResponse struct {
	OperationID string                     `json:"operation_id"`
	State       excavation.ControllerState `json:"state"`
}

type throughputRequest struct {
	BlocksPerSecond float64 `json:"blocks_per_second"`
}

type runResponse struct {
	OperationID string                     `json:"operation_id"`
	Agent       string                     `json:"agent"`
	Min         shared.Coordinate          `json:"min"`
	Max         shared.Coordinate          `json:"max"`
	State       excavation.ControllerState `json:"state"`
	Total       int                        `json:"total"`
	Mined       int                        `json:"mined"`
	Skipped     int                        `json:"skipped"`
	Throughput  float64                    `json:"throughput"`
	StartedAt   string                     `json:"started_at"`
	FinishedAt  string                     `json:"finished_at,omitempty"`
}

func (h Handler) health(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

func (h Handler) listAgents(c context.Context, ctx *app.RequestContext) {
	resp, err := h.Mediator.Send(c, &control.ListAgentsQuery{})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"agents": resp.(*control.ListAgentsResponse).Agents})
}

func (h Handler) status(c context.Context, ctx *app.RequestContext) {
	h.send(c, ctx, consts.StatusOK, &control.GetStatusQuery{Agent: ctx.Param("agent")})
}

func (h Handler) start(c context.Context, ctx *app.RequestContext) {
	var body startRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.Min == nil || body.Max == nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_request", "min and max are required")
		return
	}

	resp, err := h.Mediator.Send(c, &control.StartExcavationCommand{
		Agent: ctx.Param("agent"),
		Min:   *body.Min,
		Max:   *body.Max,
		Options: appExcavation.Options{
			Throughput:    body.Throughput,
			ProgressEvery: body.ProgressEvery,
			HazardRadius:  body.HazardRadius,
		},
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	started := resp.(*control.StartExcavationResponse)
	ctx.JSON(consts.StatusAccepted, startResponse{
		OperationID: started.OperationID,
		State:       started.State,
	})
}

func (h Handler) pause(c context.Context, ctx *app.RequestContext) {
	h.send(c, ctx, consts.StatusOK, &control.PauseExcavationCommand{Agent: ctx.Param("agent")})
}

func (h Handler) resume(c context.Context, ctx *app.RequestContext) {
	h.send(c, ctx, consts.StatusOK, &control.ResumeExcavationCommand{Agent: ctx.Param("agent")})
}

func (h Handler) stop(c context.Context, ctx *app.RequestContext) {
	h.send(c, ctx, consts.StatusOK, &control.StopExcavationCommand{Agent: ctx.Param("agent")})
}

func (h Handler) throughput(c context.Context, ctx *app.RequestContext) {
	var body throughputRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	h.send(c, ctx, consts.StatusOK, &control.SetThroughputCommand{
		Agent:           ctx.Param("agent"),
		BlocksPerSecond: body.BlocksPerSecond,
	})
}

// send dispatches request and writes the response, or the mapped error
func (h Handler) send(c context.Context, ctx *app.RequestContext, status int, request mediator.Request) {
	resp, err := h.Mediator.Send(c, request)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(status, resp)
}

func (h Handler) listRuns(c context.Context, ctx *app.RequestContext) {
	if h.Runs == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "persistence_disabled", "run history is not persisted")
		return
	}

	limit := 20
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeErrorBody(ctx, consts.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.Runs.ListRuns(c, ctx.Query("agent"), limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	out := make([]runResponse, len(runs))
	for i, r := range runs {
		out[i] = toRunResponse(r)
	}
	ctx.JSON(consts.StatusOK, map[string]any{"runs": out})
}

func (h Handler) getRun(c context.Context, ctx *app.RequestContext) {
	if h.Runs == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "persistence_disabled", "run history is not persisted")
		return
	}
	run, err := h.Runs.FindRun(c, ctx.Param("operation_id"))
	if err != nil {
		writeErrorBody(ctx, consts.StatusNotFound, "run_not_found", err.Error())
		return
	}
	ctx.JSON(consts.StatusOK, toRunResponse(run))
}

func toRunResponse(r *excavation.RunRecord) runResponse {
	out := runResponse{
		OperationID: r.OperationID,
		Agent:       r.Agent,
		Min:         r.Min,
		Max:         r.Max,
		State:       r.State,
		Total:       r.Total,
		Mined:       r.Mined,
		Skipped:     r.Skipped,
		Throughput:  r.Throughput,
		StartedAt:   r.StartedAt.UTC().Format(timeLayout),
	}
	if r.FinishedAt != nil {
		out.FinishedAt = r.FinishedAt.UTC().Format(timeLayout)
	}
	return out
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	var validation *shared.ValidationError
	var decomposition *shared.DecompositionError
	switch {
	case errors.Is(err, control.ErrUnknownAgent):
		writeErrorBody(ctx, consts.StatusNotFound, "unknown_agent", err.Error())
	case errors.As(err, &validation):
		ctx.JSON(consts.StatusBadRequest, map[string]any{
			"error": map[string]string{
				"code":    "invalid_parameter",
				"field":   validation.Field,
				"message": err.Error(),
			},
		})
	case errors.Is(err, shared.ErrBusy):
		writeErrorBody(ctx, consts.StatusConflict, "controller_busy", err.Error())
	case errors.Is(err, control.ErrNotApplicable):
		writeErrorBody(ctx, consts.StatusConflict, "not_applicable", err.Error())
	case errors.As(err, &decomposition):
		writeErrorBody(ctx, consts.StatusBadGateway, "decomposition_failed", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
