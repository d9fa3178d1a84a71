// Package fleet runs several excavation controllers side by side, one per
// agent, each over its own disjoint box.
package fleet

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/excavator-go/internal/application/common"
	"github.com/andrescamacho/excavator-go/internal/application/excavation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

// Controller is the part of an excavation controller the runner drives
type Controller interface {
	Agent() string
	Start(ctx context.Context, min, max shared.Coordinate, opts excavation.Options) (*excavation.Handle, error)
	Stop()
}

// Assignment binds a controller to the box it excavates
type Assignment struct {
	Controller Controller
	Min        shared.Coordinate
	Max        shared.Coordinate
	Options    excavation.Options
}

// Result is the outcome of one assignment
type Result struct {
	Agent   string
	Summary excavation.Summary
}

// Runner starts every assignment and waits for all of them to finish
type Runner struct {
	assignments []Assignment
}

// NewRunner rejects duplicate agents and overlapping boxes. Two agents
// breaking the same cells would race each other.
func NewRunner(assignments ...Assignment) (*Runner, error) {
	seen := make(map[string]struct{}, len(assignments))
	for i, a := range assignments {
		agent := a.Controller.Agent()
		if _, dup := seen[agent]; dup {
			return nil, shared.NewValidationError("agents", fmt.Sprintf("agent %s assigned twice", agent))
		}
		seen[agent] = struct{}{}

		for _, b := range assignments[:i] {
			if boxesOverlap(a.Min, a.Max, b.Min, b.Max) {
				return nil, shared.NewValidationError("agents",
					fmt.Sprintf("boxes of %s and %s overlap", agent, b.Controller.Agent()))
			}
		}
	}
	return &Runner{assignments: assignments}, nil
}

// Run starts every controller and blocks until all runs finish. Cancelling
// ctx stops every controller; Run still waits for their final summaries.
// A start failure stops the controllers already started.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	logger := common.LoggerFromContext(ctx)
	results := make([]Result, len(r.assignments))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range r.assignments {
		i, a := i, a
		g.Go(func() error {
			handle, err := a.Controller.Start(gctx, a.Min, a.Max, a.Options)
			if err != nil {
				return fmt.Errorf("agent %s: %w", a.Controller.Agent(), err)
			}

			stopped := make(chan struct{})
			go func() {
				select {
				case <-gctx.Done():
					a.Controller.Stop()
				case <-stopped:
				}
			}()

			<-handle.Done()
			close(stopped)

			summary := handle.Summary()
			results[i] = Result{Agent: a.Controller.Agent(), Summary: summary}
			logger.Log(common.LevelInfo, "Fleet member finished", map[string]interface{}{
				"agent":        a.Controller.Agent(),
				"operation_id": summary.OperationID,
				"state":        string(summary.State),
				"mined":        summary.Mined,
				"skipped":      summary.Skipped,
			})
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

func boxesOverlap(aMin, aMax, bMin, bMax shared.Coordinate) bool {
	aMin, aMax = shared.NormalizeBox(aMin, aMax)
	bMin, bMax = shared.NormalizeBox(bMin, bMax)
	return aMin.X <= bMax.X && bMin.X <= aMax.X &&
		aMin.Y <= bMax.Y && bMin.Y <= aMax.Y &&
		aMin.Z <= bMax.Z && bMin.Z <= aMax.Z
}
