package pathfinding

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automoto/doomerang-nav/config"
	"github.com/automoto/doomerang-nav/navgraph"
	"github.com/automoto/doomerang-nav/shared/gamemath"
)

func TestValidatePath(t *testing.T) {
	start, end := gamemath.V(1, 0), gamemath.V(6, 0)

	tests := []struct {
		name   string
		cur    gamemath.Vec2
		target gamemath.Vec2
		wait   time.Duration
		status Status
		reason StaleReason
	}{
		{"fresh", start, end, 0, StatusValid, ReasonNone},
		{"on course", gamemath.V(2, 0.3), end, time.Second, StatusValid, ReasonNone},
		{"expired", start, end, 6 * time.Second, StatusStale, ReasonExpired},
		{"target nudged", start, gamemath.V(7, 0), 0, StatusValid, ReasonNone},
		{"target moved", start, gamemath.V(8, 0), 0, StatusStale, ReasonTargetMoved},
		{"deviated", gamemath.V(1.5, 2), end, 0, StatusStale, ReasonDeviated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf, clock := newTestPathfinder(t, gapLevel())
			p := pf.RequestPath(start, end)
			require.Equal(t, StatusValid, p.Status)

			clock.Advance(tt.wait)
			status, reason := pf.ValidatePath(p, tt.cur, tt.target)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.reason, reason)
			assert.Equal(t, StatusValid, p.Status, "validation never changes the path")
		})
	}
}

func TestValidatePathFollowsTrajectory(t *testing.T) {
	pf, _ := newTestPathfinder(t, gapLevel())
	p := pf.RequestPath(gamemath.V(1, 0), gamemath.V(6, 0))
	require.True(t, p.AdvanceToNext())

	jump, ok := p.CurrentCommand()
	require.True(t, ok)
	require.Equal(t, navgraph.LinkJump, jump.Kind)

	mid := jump.Trajectory[len(jump.Trajectory)/2]
	status, _ := pf.ValidatePath(p, mid, gamemath.V(6, 0))
	assert.Equal(t, StatusValid, status)

	status, reason := pf.ValidatePath(p, gamemath.V(4, -3), gamemath.V(6, 0))
	assert.Equal(t, StatusStale, status)
	assert.Equal(t, ReasonDeviated, reason)
}

func TestValidatePathGraphChanged(t *testing.T) {
	pf, _ := newTestPathfinder(t, gapLevel())
	p := pf.RequestPath(gamemath.V(1, 0), gamemath.V(6, 0))

	_, err := pf.BuildGraph(gapLevel(), config.Default())
	require.NoError(t, err)

	status, reason := pf.ValidatePath(p, gamemath.V(1, 0), gamemath.V(6, 0))
	assert.Equal(t, StatusStale, status)
	assert.Equal(t, ReasonGraphChanged, reason)
}

func TestValidatePathTerminalStatuses(t *testing.T) {
	pf, _ := newTestPathfinder(t, islandLevel())
	p := pf.RequestPath(gamemath.V(1, 0), gamemath.V(21, 0))
	require.Equal(t, StatusNotFound, p.Status)

	status, _ := pf.ValidatePath(p, gamemath.V(1, 0), gamemath.V(21, 0))
	assert.Equal(t, StatusNotFound, status)
	assert.False(t, pf.TryAutoRevalidate(p, gamemath.V(1, 0), gamemath.V(2, 0)))

	status, _ = pf.ValidatePath(nil, gamemath.V(0, 0), gamemath.V(0, 0))
	assert.Equal(t, StatusError, status)
}

func TestTryAutoRevalidateThrottles(t *testing.T) {
	pf, clock := newTestPathfinder(t, gapLevel())
	p := pf.RequestPath(gamemath.V(1, 0), gamemath.V(6, 0))

	assert.False(t, pf.TryAutoRevalidate(p, gamemath.V(1, 0), gamemath.V(6, 0)), "valid paths are left alone")

	moved := gamemath.V(8, 0)
	assert.False(t, pf.TryAutoRevalidate(p, gamemath.V(1, 0), moved))
	assert.Equal(t, StatusStale, p.Status)
	assert.Equal(t, ReasonTargetMoved, p.StaleReason)
	assert.ErrorIs(t, p.Err(), ErrStaleRoute)
	assert.Equal(t, 1.0, testutil.ToFloat64(pf.Metrics().RevalidationsThrottled))
	assert.Zero(t, testutil.ToFloat64(pf.Metrics().Revalidations))
	require.True(t, p.AdvanceToNext())

	clock.Advance(600 * time.Millisecond)
	require.True(t, pf.TryAutoRevalidate(p, gamemath.V(1, 0), moved))
	assert.Equal(t, StatusValid, p.Status)
	assert.Equal(t, ReasonNone, p.StaleReason)
	assert.NoError(t, p.Err())
	assert.Equal(t, 0, p.Cursor())
	assert.Equal(t, moved, p.End)
	assert.Equal(t, clock.Now(), p.CreatedAt)
	assert.Equal(t, moved, p.Commands[len(p.Commands)-1].Target)
	assert.Equal(t, 1.0, testutil.ToFloat64(pf.Metrics().Revalidations))

	assert.False(t, pf.TryAutoRevalidate(p, gamemath.V(1, 0), moved))
	assert.Equal(t, 1.0, testutil.ToFloat64(pf.Metrics().RevalidationsThrottled))
}

func TestTryAutoRevalidateFailureStaysStale(t *testing.T) {
	pf, clock := newTestPathfinder(t, islandLevel())
	p := pf.RequestPath(gamemath.V(1, 0), gamemath.V(2, 0))
	require.Equal(t, StatusValid, p.Status)

	clock.Advance(time.Second)
	assert.False(t, pf.TryAutoRevalidate(p, gamemath.V(1, 0), gamemath.V(21, 0)))
	assert.Equal(t, StatusStale, p.Status)
	assert.Empty(t, p.Commands)
	assert.ErrorIs(t, p.Err(), ErrStaleRoute)
	_, ok := p.CurrentCommand()
	assert.False(t, ok)

	// still stale, so the next allowed attempt replans again
	clock.Advance(time.Second)
	assert.False(t, pf.TryAutoRevalidate(p, gamemath.V(1, 0), gamemath.V(21, 0)))
	assert.Equal(t, 2.0, testutil.ToFloat64(pf.Metrics().Revalidations))

	clock.Advance(time.Second)
	require.True(t, pf.TryAutoRevalidate(p, gamemath.V(1, 0), gamemath.V(2.5, 0)))
	assert.Equal(t, StatusValid, p.Status)
}

func TestTryAutoRevalidateAfterRebuild(t *testing.T) {
	pf, clock := newTestPathfinder(t, gapLevel())
	p := pf.RequestPath(gamemath.V(1, 0), gamemath.V(6, 0))

	g, err := pf.BuildGraph(gapLevel(), config.Default())
	require.NoError(t, err)

	clock.Advance(time.Second)
	require.True(t, pf.TryAutoRevalidate(p, gamemath.V(1, 0), gamemath.V(6, 0)))
	assert.Equal(t, g.Generation, p.Generation)
	assert.Len(t, p.Commands, 3)
}
