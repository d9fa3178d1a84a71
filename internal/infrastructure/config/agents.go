package config

// AgentConfig describes one agent of a fleet. Each agent gets its own world
// connection and controller; volumes must be disjoint.
type AgentConfig struct {
	Name string `mapstructure:"name" validate:"required,agentname"`

	// World endpoint for this agent; falls back to world.url
	URL string `mapstructure:"url" validate:"omitempty,url"`

	// Box to excavate, as [x, y, z] corners
	Min []int `mapstructure:"min" validate:"len=3"`
	Max []int `mapstructure:"max" validate:"len=3"`
}
