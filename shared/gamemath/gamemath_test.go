package gamemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchForApexLandsOnTarget(t *testing.T) {
	const g = 20.0
	tests := []struct {
		name   string
		dx, dy float64
		apex   float64
	}{
		{"flat gap", 2.6, 0, 0.5},
		{"step up", 3, 2, 2.5},
		{"step down", -4, -3, 0.5},
		{"straight up", 0, 1, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vx, vy, dur, ok := LaunchForApex(tt.dx, tt.dy, tt.apex, g)
			require.True(t, ok)

			land := ProjectilePosition(V(0, 0), vx, vy, g, dur)
			assert.InDelta(t, tt.dx, land.X, 1e-9)
			assert.InDelta(t, tt.dy, land.Y, 1e-9)
			assert.InDelta(t, tt.apex, ApexHeight(vy, g), 1e-9)
		})
	}
}

func TestLaunchForApexRejectsLowApex(t *testing.T) {
	_, _, _, ok := LaunchForApex(1, 3, 2, 20)
	assert.False(t, ok)

	_, _, _, ok = LaunchForApex(1, 0, 1, 0)
	assert.False(t, ok)
}

func TestFallTime(t *testing.T) {
	assert.InDelta(t, math.Sqrt(0.3), FallTime(3, 20), 1e-12)
	assert.Zero(t, FallTime(0, 20))
	assert.Zero(t, FallTime(-1, 20))
}

func TestSampleTrajectoryEndpoints(t *testing.T) {
	vx, vy, dur, ok := LaunchForApex(3, 0, 1, 20)
	require.True(t, ok)

	pts := SampleTrajectory(V(1, 1), vx, vy, 20, dur, 0.05, nil)
	require.GreaterOrEqual(t, len(pts), 3)
	assert.Equal(t, V(1, 1), pts[0])
	assert.InDelta(t, 4.0, pts[len(pts)-1].X, 1e-9)
	assert.InDelta(t, 1.0, pts[len(pts)-1].Y, 1e-9)

	for i := 1; i < len(pts); i++ {
		assert.Greater(t, pts[i].X, pts[i-1].X, "x advances monotonically")
	}
}

func TestSignedAreaWinding(t *testing.T) {
	ccw := []Vec2{V(0, 0), V(2, 0), V(2, 1), V(0, 1)}
	assert.InDelta(t, 2.0, SignedArea(ccw), 1e-12)

	cw := []Vec2{V(0, 1), V(2, 1), V(2, 0), V(0, 0)}
	assert.InDelta(t, -2.0, SignedArea(cw), 1e-12)
}

func TestSegmentsIntersect(t *testing.T) {
	assert.True(t, SegmentsIntersect(V(0, 0), V(2, 2), V(0, 2), V(2, 0)))
	assert.False(t, SegmentsIntersect(V(0, 0), V(1, 0), V(0, 1), V(1, 1)))
	assert.True(t, SegmentsIntersect(V(0, 0), V(2, 0), V(1, 0), V(1, 1)), "touching counts")
	assert.True(t, SegmentsIntersect(V(0, 0), V(2, 0), V(1, 0), V(3, 0)), "collinear overlap")
}

func TestVerticalRayHit(t *testing.T) {
	y, ok := VerticalRayHit(V(0, 0), V(4, 2), 2)
	require.True(t, ok)
	assert.InDelta(t, 1.0, y, 1e-12)

	_, ok = VerticalRayHit(V(0, 0), V(4, 2), 5)
	assert.False(t, ok)

	_, ok = VerticalRayHit(V(1, 0), V(1, 2), 1)
	assert.False(t, ok)
}

func TestDistanceToPolyline(t *testing.T) {
	line := []Vec2{V(0, 0), V(4, 0), V(4, 4)}
	assert.InDelta(t, 1.0, DistanceToPolyline(V(2, 1), line), 1e-12)
	assert.InDelta(t, 1.0, DistanceToPolyline(V(5, 2), line), 1e-12)
	assert.InDelta(t, math.Sqrt2, DistanceToPolyline(V(-1, -1), line), 1e-12)
	assert.True(t, math.IsInf(DistanceToPolyline(V(0, 0), nil), 1))
}

func TestPointInPolygon(t *testing.T) {
	// L shape
	l := []Vec2{V(0, 0), V(3, 0), V(3, 1), V(1, 1), V(1, 3), V(0, 3)}
	assert.True(t, PointInPolygon(l, V(0.5, 2)))
	assert.True(t, PointInPolygon(l, V(2, 0.5)))
	assert.False(t, PointInPolygon(l, V(2, 2)))
	assert.False(t, PointInPolygon(l, V(-1, 0.5)))
}
