package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/excavator-go/internal/domain/excavation"
	"github.com/andrescamacho/excavator-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect excavator configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (EXC_* prefix, DATABASE_URL)
2. Config file (config.yaml in ., ./configs or /etc/excavator)
3. Default values

Examples:
  excavator config show
  excavator config show --config ./configs/dev.yaml`,
	}

	cmd.AddCommand(newConfigShowCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault(configPath)
			}
			printConfig(cfg)
			return nil
		},
	}
}

func printConfig(cfg *config.Config) {
	fmt.Println("Excavator Configuration")
	fmt.Println("=======================")

	fmt.Println("World:")
	fmt.Printf("  Agent:            %s\n", cfg.World.Agent)
	if cfg.World.URL != "" {
		fmt.Printf("  Bridge URL:       %s\n", cfg.World.URL)
	} else {
		fmt.Printf("  Bridge URL:       (not set, simulator only)\n")
	}
	fmt.Printf("  Request Timeout:  %s\n", cfg.World.RequestTimeout)
	fmt.Printf("  Rate Limit:       %d req/s (burst: %d)\n",
		cfg.World.RateLimit.Requests, cfg.World.RateLimit.Burst)

	fmt.Println("\nExcavation:")
	fmt.Printf("  Throughput:       %.2f blocks/s\n", cfg.Excavation.Throughput)
	fmt.Printf("  Progress Every:   %d\n", cfg.Excavation.ProgressEvery)
	fmt.Printf("  Reach:            %.2f\n", cfg.Excavation.Reach)
	fmt.Printf("  Hazard Radius:    %d\n", cfg.Excavation.HazardRadius)
	fmt.Printf("  Max Volume:       %d cells\n", cfg.Excavation.MaxVolumeCells)
	if cfg.Excavation.PolicyFile != "" {
		fmt.Printf("  Policy File:      %s\n", cfg.Excavation.PolicyFile)
	} else {
		fmt.Printf("  Policy File:      (built-in)\n")
	}

	fmt.Println("\nNavigation:")
	fmt.Printf("  Tolerance:        %.2f\n", cfg.Navigation.Tolerance)
	fmt.Printf("  Timeout:          %s\n", cfg.Navigation.Timeout)
	fmt.Printf("  Step Interval:    %s\n", cfg.Navigation.StepInterval)
	fmt.Printf("  Check Obstacles:  %t\n", cfg.Navigation.CheckObstacles)
	fmt.Printf("  Avoid Lava:       %t\n", cfg.Navigation.AvoidLava)
	fmt.Printf("  Avoid Water:      %t\n", cfg.Navigation.AvoidWater)

	fmt.Println("\nHazard:")
	fmt.Printf("  Escape:           up %d, sideways %d within %s\n",
		cfg.Hazard.EscapeUp, cfg.Hazard.EscapeHorizontal, cfg.Hazard.EscapeTimeout)

	fmt.Println("\nDatabase:")
	fmt.Printf("  Type:             %s\n", cfg.Database.Type)
	switch {
	case !cfg.Database.Enabled():
	case cfg.Database.URL != "":
		fmt.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
	case cfg.Database.Type == "sqlite":
		fmt.Printf("  Path:             %s\n", cfg.Database.Path)
	default:
		fmt.Printf("  Host:             %s\n", cfg.Database.Host)
		fmt.Printf("  Port:             %d\n", cfg.Database.Port)
		fmt.Printf("  Database:         %s\n", cfg.Database.Name)
		fmt.Printf("  User:             %s\n", cfg.Database.User)
	}

	fmt.Println("\nControl API:")
	fmt.Printf("  Address:          %s\n", cfg.HTTP.Address())
	if cfg.Metrics.Enabled {
		fmt.Printf("  Metrics:          %s\n", cfg.Metrics.Path)
	}

	fmt.Println("\nLogging:")
	fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
	fmt.Printf("  Output:           %s\n", cfg.Logging.Output)
	fmt.Printf("  Persist:          %t\n", cfg.Logging.Persist)

	if len(cfg.Agents) > 0 {
		fmt.Println("\nFleet:")
		for _, a := range cfg.Agents {
			fmt.Printf("  %-16s %v .. %v\n", a.Name, a.Min, a.Max)
		}
	}
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

// NewPolicyCommand shows the material policy in effect
func NewPolicyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the material policy",
	}

	var asYAML bool
	show := &cobra.Command{
		Use:   "show",
		Short: "List material rules in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			policy, err := config.LoadMaterialPolicy(cfg.Excavation.PolicyFile)
			if err != nil {
				return err
			}
			if asYAML {
				return writePolicyYAML(policy)
			}
			printPolicy(policy)
			return nil
		},
	}
	show.Flags().BoolVar(&asYAML, "yaml", false, "Print in policy file format")

	check := &cobra.Command{
		Use:   "check <policy-file>",
		Short: "Validate a policy file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := config.LoadMaterialPolicy(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s: %d rules\n", args[0], len(policy.Rules()))
			return nil
		},
	}

	cmd.AddCommand(show, check)
	return cmd
}

func printPolicy(policy *excavation.MaterialPolicy) {
	fmt.Printf("%-4s %-24s %-8s %-8s %s\n", "#", "PATTERN", "IGNORE", "TOOL", "TIER")
	fmt.Println("──────────────────────────────────────────────────────────")
	for i, r := range policy.Rules() {
		tool := string(r.ToolFamily)
		if tool == "" {
			tool = "-"
		}
		fmt.Printf("%-4d %-24s %-8t %-8s %s\n", i+1, r.Pattern, r.Ignore, tool, r.RequiredTier)
	}
}

type policyFileRule struct {
	Pattern string `yaml:"pattern"`
	Ignore  bool   `yaml:"ignore,omitempty"`
	Tool    string `yaml:"tool,omitempty"`
	Tier    string `yaml:"tier,omitempty"`
}

func writePolicyYAML(policy *excavation.MaterialPolicy) error {
	var doc struct {
		Rules []policyFileRule `yaml:"rules"`
	}
	for _, r := range policy.Rules() {
		rule := policyFileRule{Pattern: r.Pattern, Ignore: r.Ignore, Tool: string(r.ToolFamily)}
		if r.RequiredTier != excavation.TierNone {
			rule.Tier = r.RequiredTier.String()
		}
		doc.Rules = append(doc.Rules, rule)
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(doc)
}
