package config

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// GeometryConfig controls how top surfaces are extracted from collision shapes.
type GeometryConfig struct {
	TopNormalThreshold       float64 `yaml:"top_normal_threshold"`       // Edge normal Y above this is a top face
	AmbiguousNormalThreshold float64 `yaml:"ambiguous_normal_threshold"` // Normal Y in (this, TopNormalThreshold] is decided by probe
	ProbeHeight              float64 `yaml:"probe_height"`               // Height above an edge the downward probe starts from
	MinSurfaceWidth          float64 `yaml:"min_surface_width"`          // Spans narrower than this are discarded as noise
	MergeTolerance           float64 `yaml:"merge_tolerance"`            // Height/gap tolerance for merging coplanar spans
	MergeCoplanar            bool    `yaml:"merge_coplanar"`             // Merge touching spans of equal height across shapes
}

// PlatformGraphConfig controls node placement and walk links.
type PlatformGraphConfig struct {
	NodeSpacing      float64 `yaml:"node_spacing"`       // Distance between surface nodes
	EdgeInset        float64 `yaml:"edge_inset"`         // Edge nodes sit this far inside the surface ends
	MinPlatformWidth float64 `yaml:"min_platform_width"` // Narrower surfaces only get edge nodes
	DenseNodes       bool    `yaml:"dense_nodes"`        // Use DenseNodeSpacing instead of NodeSpacing
	DenseNodeSpacing float64 `yaml:"dense_node_spacing"`
	CellSize         float64 `yaml:"cell_size"`       // Spatial grid cell size
	DedupTolerance   float64 `yaml:"dedup_tolerance"` // Nodes closer than this on one surface are reused
	WalkSpeed        float64 `yaml:"walk_speed"`      // Units per second, used for walk durations
}

// JumpLinkConfig contains the physics limits used to solve jump, fall and drop links.
type JumpLinkConfig struct {
	MaxLaunchVelocity     float64 `yaml:"max_launch_velocity"`     // Cap on |vx| and vy at launch
	MaxHorizontalDistance float64 `yaml:"max_horizontal_distance"` // Candidate pairs further apart in X are skipped
	MaxJumpHeight         float64 `yaml:"max_jump_height"`         // Highest apex above the origin
	MaxFallHeight         float64 `yaml:"max_fall_height"`         // Deepest drop considered
	Gravity               float64 `yaml:"gravity"`                 // Units per second squared
	GravityScale          float64 `yaml:"gravity_scale"`
	VerticalFallTolerance float64 `yaml:"vertical_fall_tolerance"` // Max |dx| for falls that start from surface nodes
	ApexMargin            float64 `yaml:"apex_margin"`             // Extra apex height above the higher endpoint
	ApexStep              float64 `yaml:"apex_step"`               // Apex increment when a lower arc is blocked or too fast
	TrajectoryTimeStep    float64 `yaml:"trajectory_time_step"`    // Seconds between trajectory samples
	ClearanceSkin         float64 `yaml:"clearance_skin"`          // Allowed penetration into origin/destination shapes
	CostMultiplier        float64 `yaml:"cost_multiplier"`         // Airborne link cost penalty, must be >= 1
}

// PathfinderConfig contains path request and lifecycle tuning.
type PathfinderConfig struct {
	RequestInterval           time.Duration `yaml:"request_interval"` // Minimum time between replans of one path
	PathMaxAge                time.Duration `yaml:"path_max_age"`
	ArrivalTolerance          float64       `yaml:"arrival_tolerance"`
	TargetMoveThreshold       float64       `yaml:"target_move_threshold"`
	DeviationThreshold        float64       `yaml:"deviation_threshold"`
	SamePlatformMaxHeightDiff float64       `yaml:"same_platform_max_height_diff"`
	MaxSnapDistance           float64       `yaml:"max_snap_distance"` // Query points further than this from any node fail
	AllowPartialPath          bool          `yaml:"allow_partial_path"`
}

// NavConfig aggregates every navigation setting.
type NavConfig struct {
	Geometry   GeometryConfig      `yaml:"geometry"`
	Graph      PlatformGraphConfig `yaml:"graph"`
	Jump       JumpLinkConfig      `yaml:"jump"`
	Pathfinder PathfinderConfig    `yaml:"pathfinder"`
}

// Nav holds the default navigation configuration.
var Nav NavConfig

func init() {
	Nav = NavConfig{
		Geometry: GeometryConfig{
			TopNormalThreshold:       0.7,
			AmbiguousNormalThreshold: 0.3,
			ProbeHeight:              0.5,
			MinSurfaceWidth:          0.05,
			MergeTolerance:           0.01,
			MergeCoplanar:            true,
		},
		Graph: PlatformGraphConfig{
			NodeSpacing:      1.0,
			EdgeInset:        0.3,
			MinPlatformWidth: 1.0,
			DenseNodes:       false,
			DenseNodeSpacing: 0.5,
			CellSize:         2.0,
			DedupTolerance:   0.01,
			WalkSpeed:        4.0,
		},
		Jump: JumpLinkConfig{
			MaxLaunchVelocity:     12.0,
			MaxHorizontalDistance: 6.0,
			MaxJumpHeight:         3.5,
			MaxFallHeight:         10.0,
			Gravity:               20.0,
			GravityScale:          1.0,
			VerticalFallTolerance: 1.0,
			ApexMargin:            0.5,
			ApexStep:              0.25,
			TrajectoryTimeStep:    0.02,
			ClearanceSkin:         0.1,
			CostMultiplier:        1.5,
		},
		Pathfinder: PathfinderConfig{
			RequestInterval:           500 * time.Millisecond,
			PathMaxAge:                5 * time.Second,
			ArrivalTolerance:          0.2,
			TargetMoveThreshold:       1.5,
			DeviationThreshold:        1.0,
			SamePlatformMaxHeightDiff: 0.25,
			MaxSnapDistance:           3.0,
			AllowPartialPath:          false,
		},
	}
}

// Default returns a copy of the default configuration.
func Default() NavConfig {
	return Nav
}

// Spacing returns the surface node spacing in effect.
func (c PlatformGraphConfig) Spacing() float64 {
	if c.DenseNodes {
		return c.DenseNodeSpacing
	}
	return c.NodeSpacing
}

// EffectiveGravity returns the gravity magnitude after scaling.
func (c JumpLinkConfig) EffectiveGravity() float64 {
	return c.Gravity * c.GravityScale
}

// Validate reports the first setting that would make the graph unusable.
func (c NavConfig) Validate() error {
	checks := []struct {
		field string
		ok    bool
		why   string
	}{
		{"graph.cell_size", c.Graph.CellSize > 0, "must be positive"},
		{"graph.node_spacing", c.Graph.NodeSpacing > 0, "must be positive"},
		{"graph.dense_node_spacing", !c.Graph.DenseNodes || c.Graph.DenseNodeSpacing > 0, "must be positive in dense mode"},
		{"graph.edge_inset", c.Graph.EdgeInset >= 0, "must not be negative"},
		{"graph.dedup_tolerance", c.Graph.DedupTolerance >= 0, "must not be negative"},
		{"graph.walk_speed", c.Graph.WalkSpeed > 0, "must be positive"},
		{"jump.gravity", c.Jump.EffectiveGravity() > 0, "gravity * gravity_scale must be positive"},
		{"jump.max_launch_velocity", c.Jump.MaxLaunchVelocity > 0, "must be positive"},
		{"jump.max_horizontal_distance", c.Jump.MaxHorizontalDistance > 0, "must be positive"},
		{"jump.max_jump_height", c.Jump.MaxJumpHeight >= 0, "must not be negative"},
		{"jump.max_fall_height", c.Jump.MaxFallHeight >= 0, "must not be negative"},
		{"jump.apex_step", c.Jump.ApexStep > 0, "must be positive"},
		{"jump.trajectory_time_step", c.Jump.TrajectoryTimeStep > 0, "must be positive"},
		{"jump.cost_multiplier", c.Jump.CostMultiplier >= 1, "must be at least 1 to keep the heuristic admissible"},
		{"geometry.probe_height", c.Geometry.ProbeHeight > 0, "must be positive"},
		{"pathfinder.max_snap_distance", c.Pathfinder.MaxSnapDistance > 0, "must be positive"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return &ConfigurationError{Field: chk.field, Reason: chk.why}
		}
	}
	return nil
}

// Fingerprint hashes every setting that affects graph construction.
func (c NavConfig) Fingerprint() uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%+v|%+v|%+v", c.Geometry, c.Graph, c.Jump))
}

// ConfigurationError is returned when a setting makes graph construction impossible.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}
