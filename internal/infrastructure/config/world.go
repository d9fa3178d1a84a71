package config

import "time"

// WorldConfig holds the world collaborator connection settings
type WorldConfig struct {
	// WebSocket endpoint of the world bridge, e.g. ws://localhost:8765/agent
	URL string `mapstructure:"url" validate:"omitempty,url"`

	// Agent name announced to the bridge
	Agent string `mapstructure:"agent" validate:"required,agentname"`

	// Timeout for a single request/response round trip
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"required"`

	// Rate limiting of outgoing requests
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Directory holding the per-agent PID locks
	LockDir string `mapstructure:"lock_dir"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Maximum requests per second
	Requests int `mapstructure:"requests" validate:"min=1"`

	// Burst size for token bucket
	Burst int `mapstructure:"burst" validate:"min=1"`
}
