package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/excavator-go/internal/adapters/persistence"
	"github.com/andrescamacho/excavator-go/internal/infrastructure/database"
)

// NewRunsCommand inspects persisted run records, goals and logs
func NewRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect excavation history",
		Long:  `Read run records, operation logs and navigation goals from the database.`,
	}

	cmd.AddCommand(newRunsListCommand())
	cmd.AddCommand(newRunsLogsCommand())
	cmd.AddCommand(newRunsGoalsCommand())
	return cmd
}

func openRepositories() (*persistence.GormRunRepository, *persistence.GormOperationLogRepository, *persistence.GormGoalRepository, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, nil, nil, nil, err
	}
	closer := func() { _ = database.Close(db) }
	return persistence.NewGormRunRepository(db),
		persistence.NewGormOperationLogRepository(db, nil),
		persistence.NewGormGoalRepository(db),
		closer, nil
}

func newRunsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, _, _, closeDB, err := openRepositories()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			records, err := runs.ListRuns(ctx, agentName, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No runs found")
				return nil
			}

			fmt.Printf("%-36s %-12s %-11s %-7s %-7s %-7s %s\n",
				"OPERATION", "AGENT", "STATE", "TOTAL", "MINED", "SKIPPED", "STARTED")
			fmt.Println("─────────────────────────────────────────────────────────────────────────────────────────────")
			for _, r := range records {
				fmt.Printf("%-36s %-12s %-11s %-7d %-7d %-7d %s\n",
					truncate(r.OperationID, 36), truncate(r.Agent, 12), r.State,
					r.Total, r.Mined, r.Skipped, r.StartedAt.Local().Format(time.DateTime))
			}
			fmt.Printf("\nTotal: %d runs\n", len(records))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to show")
	return cmd
}

func newRunsLogsCommand() *cobra.Command {
	var (
		limit int
		level string
	)

	cmd := &cobra.Command{
		Use:   "logs <operation-id>",
		Short: "Show the log of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logs, _, closeDB, err := openRepositories()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			var levelPtr *string
			if level != "" {
				levelPtr = &level
			}
			entries, err := logs.GetLogs(ctx, args[0], limit, levelPtr)
			if err != nil {
				return err
			}
			// oldest first reads naturally
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				fmt.Printf("%s %-7s %s", e.Timestamp.Local().Format("15:04:05.000"), e.Level, e.Message)
				if cell, ok := e.Metadata["cell"]; ok {
					fmt.Printf(" cell=%v", cell)
				}
				if reason, ok := e.Metadata["reason"]; ok {
					fmt.Printf(" reason=%v", reason)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 200, "Maximum entries to show")
	cmd.Flags().StringVar(&level, "level", "", "Filter by level (DEBUG, INFO, WARNING, ERROR)")
	return cmd
}

func newRunsGoalsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Show the agent's navigation goal history",
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := requireAgent()
			if err != nil {
				return err
			}
			_, _, goals, closeDB, err := openRepositories()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			records, err := goals.ListGoals(ctx, agent, limit)
			if err != nil {
				return err
			}
			fmt.Printf("%-18s %-10s %-10s %-8s %s\n", "TARGET", "OUTCOME", "DURATION", "DETOURS", "ISSUED")
			for _, g := range records {
				fmt.Printf("%-18s %-10s %-10s %-8d %s\n",
					g.Goal.Target.String(), g.Outcome, g.Duration().Round(time.Millisecond),
					g.Detours, g.Goal.IssuedAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum goals to show")
	return cmd
}
