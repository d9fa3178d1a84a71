package config

import "time"

// ExcavationConfig holds the defaults applied to every excavation request
type ExcavationConfig struct {
	// Removal actions per second, in (0.1, 10]
	Throughput float64 `mapstructure:"throughput" validate:"gt=0.1,lte=10"`

	// Cells between progress events
	ProgressEvery int `mapstructure:"progress_every" validate:"min=1"`

	// Distance within which a cell can be broken without moving
	Reach float64 `mapstructure:"reach" validate:"gt=0"`

	// Radius of the per-cell hazard scan; the scan is cubic in this value
	HazardRadius int `mapstructure:"hazard_radius" validate:"min=0,max=3"`

	// Largest box accepted by a single request
	MaxVolumeCells int64 `mapstructure:"max_volume_cells" validate:"min=1"`

	// Optional YAML material policy; the built-in policy is used when empty
	PolicyFile string `mapstructure:"policy_file"`
}

// NavigationConfig holds Navigator timing and default goal options
type NavigationConfig struct {
	Tolerance      float64       `mapstructure:"tolerance" validate:"gt=0"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"required"`
	StepInterval   time.Duration `mapstructure:"step_interval" validate:"required"`
	BurstDuration  time.Duration `mapstructure:"burst_duration" validate:"required"`
	JumpPulse      time.Duration `mapstructure:"jump_pulse" validate:"required"`
	CheckObstacles bool          `mapstructure:"check_obstacles"`
	AvoidLava      bool          `mapstructure:"avoid_lava"`
	AvoidWater     bool          `mapstructure:"avoid_water"`
}

// HazardConfig holds the escape vector used by hazard mitigation
type HazardConfig struct {
	EscapeUp         int           `mapstructure:"escape_up" validate:"min=0"`
	EscapeHorizontal int           `mapstructure:"escape_horizontal" validate:"min=0"`
	EscapeTimeout    time.Duration `mapstructure:"escape_timeout" validate:"required"`
}
