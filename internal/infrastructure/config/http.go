package config

// HTTPConfig holds the control API server configuration
type HTTPConfig struct {
	// Host to bind (default: localhost)
	Host string `mapstructure:"host"`

	// Port for the control API
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// Address returns host:port
func (c HTTPConfig) Address() string {
	return joinHostPort(c.Host, c.Port)
}
