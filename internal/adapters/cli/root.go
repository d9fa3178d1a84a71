package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/andrescamacho/excavator-go/internal/infrastructure/config"
)

var (
	// Global flags
	configPath string
	agentName  string
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "excavator",
		Short: "Excavator - clear rectangular volumes of a block world",
		Long: `Excavator drives an agent through a block world and removes every
excavatable cell inside a box, checking for liquids and hostiles before
each removal and steering around obstacles on the way.

Examples:
  excavator run --sim --min -2,60,-2 --max 2,63,2
  excavator run --min 100,40,100 --max 110,50,110 --throughput 4
  excavator serve
  excavator fleet
  excavator status
  excavator runs list --agent digger
  excavator policy show`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			klog.Flush()
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search ./config.yaml, ./configs, /etc/excavator)")
	rootCmd.PersistentFlags().StringVar(&agentName, "agent", "",
		"Agent name (overrides world.agent)")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewFleetCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewRunsCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewPolicyCommand())

	return rootCmd
}

// loadConfig loads configuration and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if agentName != "" {
		cfg.World.Agent = agentName
	}
	return cfg, nil
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		klog.Flush()
		os.Exit(1)
	}
}
