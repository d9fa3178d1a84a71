package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/excavator-go/internal/application/common"
	"github.com/andrescamacho/excavator-go/internal/application/excavation"
	"github.com/andrescamacho/excavator-go/internal/application/fleet"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

// NewFleetCommand excavates every agent's configured box concurrently
func NewFleetCommand() *cobra.Command {
	var useSim bool

	cmd := &cobra.Command{
		Use:   "fleet",
		Short: "Run every configured agent over its own box",
		Long: `Start every agent listed under "agents" in the configuration, each
excavating its own box. Boxes must not overlap. Ctrl-C stops every agent.

Example config:
  agents:
    - name: north
      min: [0, 40, 0]
      max: [15, 60, 15]
    - name: south
      min: [0, 40, 20]
      max: [15, 60, 35]`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(cfg.Agents) == 0 {
				return fmt.Errorf("no agents configured")
			}
			rt, err := NewRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			bots, release, err := startBots(ctx, rt, useSim)
			if err != nil {
				return err
			}
			defer release()

			assignments := make([]fleet.Assignment, len(bots))
			for i, b := range bots {
				a := cfg.Agents[i]
				assignments[i] = fleet.Assignment{
					Controller: &loggedController{Controller: b.Controller, logger: b.Logger},
					Min:        shared.NewCoordinate(a.Min[0], a.Min[1], a.Min[2]),
					Max:        shared.NewCoordinate(a.Max[0], a.Max[1], a.Max[2]),
				}
			}

			runner, err := fleet.NewRunner(assignments...)
			if err != nil {
				return err
			}

			results, err := runner.Run(bots[0].Context(ctx))
			for _, r := range results {
				if r.Agent == "" {
					continue
				}
				fmt.Printf("\nAgent: %s", r.Agent)
				printSummary(r.Summary)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&useSim, "sim", false, "Run every agent against its own simulated world")
	return cmd
}

// loggedController attaches the bot's logger to every run it starts
type loggedController struct {
	*excavation.Controller
	logger common.OperationLogger
}

func (c *loggedController) Start(ctx context.Context, min, max shared.Coordinate, opts excavation.Options) (*excavation.Handle, error) {
	return c.Controller.Start(common.WithLogger(ctx, c.logger), min, max, opts)
}
