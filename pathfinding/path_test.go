package pathfinding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automoto/doomerang-nav/navgraph"
	"github.com/automoto/doomerang-nav/shared/gamemath"
)

func TestStatusTransitions(t *testing.T) {
	p := newPath(gamemath.V(0, 0), gamemath.V(1, 0), time.Now())
	assert.Equal(t, StatusPending, p.Status)

	assert.False(t, p.setStatus(StatusStale))
	require.True(t, p.setStatus(StatusValid))
	assert.False(t, p.setStatus(StatusNotFound), "NotFound is only reachable from Pending")
	require.True(t, p.setStatus(StatusStale))
	require.True(t, p.setStatus(StatusValid))
	require.True(t, p.setStatus(StatusError))
	assert.False(t, p.setStatus(StatusValid), "Error is terminal")
}

func TestCursor(t *testing.T) {
	pf, _ := newTestPathfinder(t, gapLevel())
	p := pf.RequestPath(gamemath.V(1, 0), gamemath.V(6, 0))
	require.Len(t, p.Commands, 3)

	kinds := []navgraph.LinkKind{navgraph.LinkWalk, navgraph.LinkJump, navgraph.LinkWalk}
	for i, want := range kinds {
		assert.Equal(t, i, p.Cursor())
		cmd, ok := p.CurrentCommand()
		require.True(t, ok)
		assert.Equal(t, want, cmd.Kind)
		assert.Len(t, p.Remaining(), len(kinds)-i)
		assert.True(t, p.AdvanceToNext())
	}

	assert.True(t, p.Done())
	assert.False(t, p.AdvanceToNext())
	_, ok := p.CurrentCommand()
	assert.False(t, ok)
	assert.Nil(t, p.Remaining())

	var none *Path
	_, ok = none.CurrentCommand()
	assert.False(t, ok)
	assert.False(t, none.AdvanceToNext())
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "stale", StatusStale.String())
	assert.Equal(t, "target_moved", ReasonTargetMoved.String())
	assert.Equal(t, "unknown", Status(99).String())
}
