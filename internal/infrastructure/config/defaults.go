package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// registerBoolDefaults seeds the booleans whose default is true. Zero-value
// detection cannot tell an explicit false from an unset field, so these go
// through viper instead of SetDefaults.
func registerBoolDefaults(v *viper.Viper) {
	v.SetDefault("navigation.check_obstacles", true)
	v.SetDefault("navigation.avoid_lava", true)
	v.SetDefault("navigation.avoid_water", false)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("logging.persist", true)
}

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// World defaults
	if cfg.World.Agent == "" {
		cfg.World.Agent = "excavator"
	}
	if cfg.World.RequestTimeout == 0 {
		cfg.World.RequestTimeout = 5 * time.Second
	}
	if cfg.World.RateLimit.Requests == 0 {
		cfg.World.RateLimit.Requests = 50
	}
	if cfg.World.RateLimit.Burst == 0 {
		cfg.World.RateLimit.Burst = 20
	}
	if cfg.World.LockDir == "" {
		cfg.World.LockDir = os.TempDir()
	}

	// Excavation defaults
	if cfg.Excavation.Throughput == 0 {
		cfg.Excavation.Throughput = 2.0
	}
	if cfg.Excavation.ProgressEvery == 0 {
		cfg.Excavation.ProgressEvery = 10
	}
	if cfg.Excavation.Reach == 0 {
		cfg.Excavation.Reach = 4.5
	}
	if cfg.Excavation.HazardRadius == 0 {
		cfg.Excavation.HazardRadius = 1
	}
	if cfg.Excavation.MaxVolumeCells == 0 {
		cfg.Excavation.MaxVolumeCells = 32768
	}

	// Navigation defaults
	if cfg.Navigation.Tolerance == 0 {
		cfg.Navigation.Tolerance = 1.5
	}
	if cfg.Navigation.Timeout == 0 {
		cfg.Navigation.Timeout = 30 * time.Second
	}
	if cfg.Navigation.StepInterval == 0 {
		cfg.Navigation.StepInterval = 50 * time.Millisecond
	}
	if cfg.Navigation.BurstDuration == 0 {
		cfg.Navigation.BurstDuration = 250 * time.Millisecond
	}
	if cfg.Navigation.JumpPulse == 0 {
		cfg.Navigation.JumpPulse = 100 * time.Millisecond
	}

	// Hazard defaults
	if cfg.Hazard.EscapeUp == 0 {
		cfg.Hazard.EscapeUp = 2
	}
	if cfg.Hazard.EscapeHorizontal == 0 {
		cfg.Hazard.EscapeHorizontal = 3
	}
	if cfg.Hazard.EscapeTimeout == 0 {
		cfg.Hazard.EscapeTimeout = 5 * time.Second
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "excavator.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "excavator"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "excavator"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// HTTP defaults
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "localhost"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}

	for i := range cfg.Agents {
		if cfg.Agents[i].URL == "" {
			cfg.Agents[i].URL = cfg.World.URL
		}
	}
}
