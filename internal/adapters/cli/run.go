package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/excavator-go/internal/application/excavation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
	"github.com/andrescamacho/excavator-go/internal/infrastructure/pidfile"
)

// NewRunCommand excavates one box in the foreground
func NewRunCommand() *cobra.Command {
	var (
		minFlag       string
		maxFlag       string
		throughput    float64
		progressEvery int
		hazardRadius  int
		useSim        bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Excavate a box and wait for it to finish",
		Long: `Excavate every cell in the closed box between --min and --max.

The run ends when the box is cleared or on Ctrl-C, which stops the agent
and releases every movement control.

Examples:
  excavator run --sim --min -2,60,-2 --max 2,63,2
  excavator run --min 100,40,100 --max 110,50,110 --throughput 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			min, err := parseCoordinate(minFlag)
			if err != nil {
				return fmt.Errorf("--min: %w", err)
			}
			max, err := parseCoordinate(maxFlag)
			if err != nil {
				return fmt.Errorf("--max: %w", err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rt, err := NewRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			agent := cfg.World.Agent
			lock := pidfile.ForAgent(cfg.World.LockDir, agent)
			if err := lock.Acquire(); err != nil {
				return err
			}
			defer lock.Release()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var bot *Bot
			if useSim {
				bot, _ = rt.NewSimBot(agent)
			} else {
				bot, err = rt.NewRemoteBot(ctx, agent, "")
				if err != nil {
					return err
				}
			}
			defer bot.Close()

			ctx = bot.Context(ctx)
			handle, err := bot.Controller.Start(ctx, min, max, excavation.Options{
				Throughput:    throughput,
				ProgressEvery: progressEvery,
				HazardRadius:  hazardRadius,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Excavation %s started for %s\n", handle.OperationID, agent)

			select {
			case <-handle.Done():
			case <-ctx.Done():
				fmt.Println("Interrupted, stopping...")
				bot.Controller.Stop()
				<-handle.Done()
			}

			printSummary(handle.Summary())
			return nil
		},
	}

	cmd.Flags().StringVar(&minFlag, "min", "", "First corner as x,y,z (required)")
	cmd.Flags().StringVar(&maxFlag, "max", "", "Opposite corner as x,y,z (required)")
	cmd.Flags().Float64Var(&throughput, "throughput", 0, "Removals per second (default from config)")
	cmd.Flags().IntVar(&progressEvery, "progress-every", 0, "Cells between progress reports (default from config)")
	cmd.Flags().IntVar(&hazardRadius, "hazard-radius", 0, "Hazard scan radius 0-3 (default from config)")
	cmd.Flags().BoolVar(&useSim, "sim", false, "Run against the built-in simulated world")
	_ = cmd.MarkFlagRequired("min")
	_ = cmd.MarkFlagRequired("max")

	return cmd
}

// parseCoordinate parses "x,y,z"
func parseCoordinate(s string) (shared.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return shared.Coordinate{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return shared.Coordinate{}, fmt.Errorf("invalid component %q: %w", p, err)
		}
		v[i] = n
	}
	return shared.NewCoordinate(v[0], v[1], v[2]), nil
}

func printSummary(s excavation.Summary) {
	fmt.Printf("\nOperation: %s\n", s.OperationID)
	fmt.Println("══════════════════════════════════════════════")
	fmt.Printf("  State:    %s\n", s.State)
	fmt.Printf("  Cells:    %d\n", s.Total)
	fmt.Printf("  Mined:    %d\n", s.Mined)
	fmt.Printf("  Skipped:  %d\n", s.Skipped)
	if !s.FinishedAt.IsZero() && !s.StartedAt.IsZero() {
		fmt.Printf("  Duration: %s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
	}
}
