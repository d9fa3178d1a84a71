package cli

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/spf13/cobra"

	httpadapter "github.com/andrescamacho/excavator-go/internal/adapters/http"
	"github.com/andrescamacho/excavator-go/internal/application/common"
	"github.com/andrescamacho/excavator-go/internal/application/control"
	"github.com/andrescamacho/excavator-go/internal/application/mediator"
	"github.com/andrescamacho/excavator-go/internal/infrastructure/pidfile"
)

// NewServeCommand runs the control API over one bot per configured agent
func NewServeCommand() *cobra.Command {
	var useSim bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP control API",
		Long: `Start one bot per configured agent (or world.agent when no agents are
listed) and expose them over HTTP:

  GET  /api/agents
  GET  /api/agents/:agent/status
  POST /api/agents/:agent/excavations   {"min":{...},"max":{...},"throughput":2}
  POST /api/agents/:agent/pause|resume|stop
  PUT  /api/agents/:agent/throughput    {"blocks_per_second":4}
  GET  /api/runs, /api/runs/:operation_id
  GET  /metrics (when metrics are enabled)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rt, err := NewRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			bots, release, err := startBots(context.Background(), rt, useSim)
			if err != nil {
				return err
			}
			defer release()

			m, err := newControlMediator(bots)
			if err != nil {
				return err
			}

			metricsPath := ""
			if cfg.Metrics.Enabled {
				metricsPath = cfg.Metrics.Path
			}

			h := server.Default(server.WithHostPorts(cfg.HTTP.Address()))
			httpadapter.NewHandler(m, rt.Runs).RegisterRoutes(h, metricsPath)

			fmt.Printf("Control API listening on %s (%d agents)\n", cfg.HTTP.Address(), len(bots))
			h.Spin()
			return nil
		},
	}

	cmd.Flags().BoolVar(&useSim, "sim", false, "Run every agent against its own simulated world")
	return cmd
}

// startBots locks and wires a bot for every configured agent. The returned
// func stops the bots and releases the locks.
func startBots(ctx context.Context, rt *Runtime, useSim bool) ([]*Bot, func(), error) {
	type member struct{ name, url string }

	cfg := rt.Config
	members := []member{{name: cfg.World.Agent, url: cfg.World.URL}}
	if len(cfg.Agents) > 0 {
		members = members[:0]
		for _, a := range cfg.Agents {
			members = append(members, member{name: a.Name, url: a.URL})
		}
	}

	var (
		bots  []*Bot
		locks []*pidfile.PIDFile
	)
	release := func() {
		for _, b := range bots {
			_ = b.Close()
		}
		for _, l := range locks {
			_ = l.Release()
		}
	}

	for _, m := range members {
		lock := pidfile.ForAgent(cfg.World.LockDir, m.name)
		if err := lock.Acquire(); err != nil {
			release()
			return nil, nil, err
		}
		locks = append(locks, lock)

		if useSim {
			bot, _ := rt.NewSimBot(m.name)
			bots = append(bots, bot)
			continue
		}
		bot, err := rt.NewRemoteBot(ctx, m.name, m.url)
		if err != nil {
			release()
			return nil, nil, err
		}
		bots = append(bots, bot)
	}
	return bots, release, nil
}

// newControlMediator dispatches control commands to the bots' controllers,
// carrying each bot's logger into the runs it starts
func newControlMediator(bots []*Bot) (mediator.Mediator, error) {
	controllers := make([]control.Controller, len(bots))
	loggers := make(map[string]common.OperationLogger, len(bots))
	for i, b := range bots {
		controllers[i] = b.Controller
		loggers[b.Agent] = b.Logger
	}
	registry, err := control.NewRegistry(controllers...)
	if err != nil {
		return nil, err
	}
	return control.NewMediator(registry, func(agent string) common.OperationLogger {
		return loggers[agent]
	})
}
