package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "world:\n  agent: digger\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "digger", cfg.World.Agent)
	assert.Equal(t, 2.0, cfg.Excavation.Throughput)
	assert.Equal(t, 10, cfg.Excavation.ProgressEvery)
	assert.Equal(t, 1, cfg.Excavation.HazardRadius)
	assert.Equal(t, 1.5, cfg.Navigation.Tolerance)
	assert.Equal(t, 30*time.Second, cfg.Navigation.Timeout)
	assert.True(t, cfg.Navigation.CheckObstacles)
	assert.True(t, cfg.Navigation.AvoidLava)
	assert.False(t, cfg.Navigation.AvoidWater)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "excavator.db", cfg.Database.Path)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "localhost:8080", cfg.HTTP.Address())
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
excavation:
  throughput: 5
  progress_every: 3
navigation:
  avoid_lava: false
  timeout: 10s
database:
  type: none
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5.0, cfg.Excavation.Throughput)
	assert.Equal(t, 3, cfg.Excavation.ProgressEvery)
	assert.False(t, cfg.Navigation.AvoidLava)
	assert.Equal(t, 10*time.Second, cfg.Navigation.Timeout)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadConfig_EnvironmentWins(t *testing.T) {
	path := writeFile(t, "config.yaml", "excavation:\n  throughput: 5\n")
	t.Setenv("EXC_EXCAVATION_THROUGHPUT", "7.5")
	t.Setenv("DATABASE_URL", "postgresql://u:p@db:5432/exc")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7.5, cfg.Excavation.Throughput)
	assert.Equal(t, "postgresql://u:p@db:5432/exc", cfg.Database.URL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"throughput above ceiling", "excavation:\n  throughput: 11\n"},
		{"throughput at floor", "excavation:\n  throughput: 0.1\n"},
		{"hazard radius too large", "excavation:\n  hazard_radius: 4\n"},
		{"unknown database type", "database:\n  type: mysql\n"},
		{"file output without path", "logging:\n  output: file\n"},
		{"agent box malformed", "agents:\n  - name: a\n    min: [0, 0]\n    max: [1, 1, 1]\n"},
		{"agent name with spaces", "world:\n  agent: my digger\n"},
		{"duplicate agents", "agents:\n  - name: a\n    min: [0, 0, 0]\n    max: [1, 1, 1]\n  - name: a\n    min: [5, 0, 0]\n    max: [6, 1, 1]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "config.yaml", tt.body))
			assert.Error(t, err)
		})
	}
}

func TestSetDefaults_AgentURLFallsBackToWorld(t *testing.T) {
	cfg := &Config{
		World:  WorldConfig{URL: "ws://bridge:8765/agent"},
		Agents: []AgentConfig{{Name: "a"}, {Name: "b", URL: "ws://other:1/agent"}},
	}

	SetDefaults(cfg)

	assert.Equal(t, "ws://bridge:8765/agent", cfg.Agents[0].URL)
	assert.Equal(t, "ws://other:1/agent", cfg.Agents[1].URL)
}

func TestDefaultConfig_IsValid(t *testing.T) {
	require.NoError(t, ValidateConfig(DefaultConfig()))
}

func TestValidateConfig_NamesFieldPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Excavation.Throughput = 20

	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "excavation.Throughput failed lte=10")
}
