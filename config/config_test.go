package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsUnusableSettings(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*NavConfig)
		field string
	}{
		{"zero cell size", func(c *NavConfig) { c.Graph.CellSize = 0 }, "graph.cell_size"},
		{"negative cell size", func(c *NavConfig) { c.Graph.CellSize = -2 }, "graph.cell_size"},
		{"zero spacing", func(c *NavConfig) { c.Graph.NodeSpacing = 0 }, "graph.node_spacing"},
		{"dense without spacing", func(c *NavConfig) { c.Graph.DenseNodes = true; c.Graph.DenseNodeSpacing = 0 }, "graph.dense_node_spacing"},
		{"no gravity", func(c *NavConfig) { c.Jump.GravityScale = 0 }, "jump.gravity"},
		{"cheap jumps", func(c *NavConfig) { c.Jump.CostMultiplier = 0.5 }, "jump.cost_multiplier"},
		{"zero time step", func(c *NavConfig) { c.Jump.TrajectoryTimeStep = 0 }, "jump.trajectory_time_step"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mut(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestSpacingHonoursDenseMode(t *testing.T) {
	g := Default().Graph
	assert.Equal(t, g.NodeSpacing, g.Spacing())

	g.DenseNodes = true
	assert.Equal(t, g.DenseNodeSpacing, g.Spacing())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.yaml")
	yml := `
graph:
  node_spacing: 2
  dense_nodes: true
jump:
  max_horizontal_distance: 8
pathfinder:
  request_interval: 250ms
  allow_partial_path: true
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Graph.NodeSpacing)
	assert.True(t, cfg.Graph.DenseNodes)
	assert.Equal(t, 8.0, cfg.Jump.MaxHorizontalDistance)
	assert.Equal(t, 250*time.Millisecond, cfg.Pathfinder.RequestInterval)
	assert.True(t, cfg.Pathfinder.AllowPartialPath)

	// untouched fields keep their defaults
	assert.Equal(t, Default().Graph.EdgeInset, cfg.Graph.EdgeInset)
	assert.Equal(t, Default().Jump.Gravity, cfg.Jump.Gravity)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.yaml")
	require.NoError(t, os.WriteFile(path, []byte("graph:\n  cell_size: 0\n"), 0o644))

	_, err := Load(path)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "graph.cell_size", cfgErr.Field)
}

func TestFingerprintTracksGraphSettingsOnly(t *testing.T) {
	base := Default()

	other := Default()
	other.Pathfinder.PathMaxAge = time.Minute
	assert.Equal(t, base.Fingerprint(), other.Fingerprint(), "pathfinder tuning does not change the graph")

	other.Jump.MaxJumpHeight = 5
	assert.NotEqual(t, base.Fingerprint(), other.Fingerprint())
}
