package spatial

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automoto/doomerang-nav/config"
	"github.com/automoto/doomerang-nav/shared/gamemath"
)

func bruteNearest(entries []Entry, pos gamemath.Vec2, maxDist float64) (Entry, bool) {
	var best Entry
	found := false
	bestSq := 0.0
	for _, e := range entries {
		d := pos.DistSq(e.Pos)
		if d > maxDist*maxDist {
			continue
		}
		if !found || d < bestSq || (d == bestSq && e.ID < best.ID) {
			best, bestSq, found = e, d, true
		}
	}
	return best, found
}

func bruteInRange(entries []Entry, pos gamemath.Vec2, radius float64) []Entry {
	var out []Entry
	for _, e := range entries {
		if pos.DistSq(e.Pos) <= radius*radius {
			out = append(out, e)
		}
	}
	return out
}

func randomGrid(t *testing.T, n int, cellSize float64) (*Grid, []Entry) {
	t.Helper()
	g, err := NewGrid(cellSize)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	entries := make([]Entry, 0, n)
	for i := range n {
		e := Entry{ID: i, Pos: gamemath.V(rng.Float64()*60-30, rng.Float64()*40-20)}
		entries = append(entries, e)
		g.Insert(e.ID, e.Pos)
	}
	return g, entries
}

func TestNewGridRejectsBadCellSize(t *testing.T) {
	for _, size := range []float64{0, -1} {
		_, err := NewGrid(size)
		var cfgErr *config.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "graph.cell_size", cfgErr.Field)
	}
}

func TestNearestMatchesBruteForce(t *testing.T) {
	g, entries := randomGrid(t, 500, 2)
	rng := rand.New(rand.NewSource(7))

	for range 300 {
		pos := gamemath.V(rng.Float64()*80-40, rng.Float64()*60-30)
		maxDist := rng.Float64() * 10

		want, wantOK := bruteNearest(entries, pos, maxDist)
		got, gotOK := g.Nearest(pos, maxDist)
		require.Equal(t, wantOK, gotOK, "pos %v max %v", pos, maxDist)
		if wantOK {
			assert.Equal(t, want.ID, got.ID, "pos %v max %v", pos, maxDist)
		}
	}
}

func TestNearestFarOutsideOccupiedCells(t *testing.T) {
	g, err := NewGrid(2)
	require.NoError(t, err)
	g.Insert(0, gamemath.V(0, 0))
	g.Insert(1, gamemath.V(8, 0))

	tests := []struct {
		pos  gamemath.Vec2
		want int
	}{
		{gamemath.V(4e8, 0), 1},
		{gamemath.V(-4e8, 0), 0},
		{gamemath.V(4, 4e8), 0},
		{gamemath.V(4e8, -4e8), 1},
	}
	for _, tt := range tests {
		e, ok := g.Nearest(tt.pos, 1e12)
		require.True(t, ok, "pos %v", tt.pos)
		assert.Equal(t, tt.want, e.ID, "pos %v", tt.pos)
	}

	_, ok := g.Nearest(gamemath.V(4e8, 0), 1e3)
	assert.False(t, ok)
}

func TestNearestFarQueriesMatchBruteForce(t *testing.T) {
	g, entries := randomGrid(t, 200, 2)
	rng := rand.New(rand.NewSource(11))

	for range 100 {
		pos := gamemath.V(rng.Float64()*2e6-1e6, rng.Float64()*2e6-1e6)
		want, _ := bruteNearest(entries, pos, 1e9)
		got, ok := g.Nearest(pos, 1e9)
		require.True(t, ok)
		assert.Equal(t, want.ID, got.ID, "pos %v", pos)
	}
}

func TestNearestTieGoesToLowerID(t *testing.T) {
	g, err := NewGrid(1)
	require.NoError(t, err)
	g.Insert(5, gamemath.V(1.5, 0))
	g.Insert(3, gamemath.V(-1.5, 0))

	e, ok := g.Nearest(gamemath.V(0, 0), 2)
	require.True(t, ok)
	assert.Equal(t, 3, e.ID)
}

func TestNearestOutsideMaxDistance(t *testing.T) {
	g, err := NewGrid(1)
	require.NoError(t, err)
	g.Insert(0, gamemath.V(10, 10))

	_, ok := g.Nearest(gamemath.V(0, 0), 5)
	assert.False(t, ok)

	empty, err := NewGrid(1)
	require.NoError(t, err)
	_, ok = empty.Nearest(gamemath.V(0, 0), 100)
	assert.False(t, ok)
}

func TestNearestFunc(t *testing.T) {
	g, err := NewGrid(1)
	require.NoError(t, err)
	g.Insert(0, gamemath.V(0.1, 0))
	g.Insert(1, gamemath.V(2, 0))

	e, ok := g.NearestFunc(gamemath.V(0, 0), 5, func(e Entry) bool { return e.ID != 0 })
	require.True(t, ok)
	assert.Equal(t, 1, e.ID)
}

func TestInRangeMatchesBruteForce(t *testing.T) {
	g, entries := randomGrid(t, 500, 1.5)
	rng := rand.New(rand.NewSource(9))
	buf := make([]Entry, 0, 512)

	for range 200 {
		pos := gamemath.V(rng.Float64()*80-40, rng.Float64()*60-30)
		radius := rng.Float64() * 8

		buf = g.InRange(pos, radius, buf[:0])
		want := bruteInRange(entries, pos, radius)
		if len(want) == 0 {
			assert.Empty(t, buf)
			continue
		}
		assert.Equal(t, want, buf)
	}
}

func TestInRangeHugeRadius(t *testing.T) {
	g, entries := randomGrid(t, 50, 1)
	got := g.InRange(gamemath.V(0, 0), 1e9, nil)
	assert.Equal(t, entries, got)
}

func TestInRangeAppendsWithoutAllocating(t *testing.T) {
	g, _ := randomGrid(t, 200, 2)
	buf := make([]Entry, 0, 256)

	allocs := testing.AllocsPerRun(100, func() {
		buf = g.InRange(gamemath.V(0, 0), 4, buf[:0])
	})
	assert.Zero(t, allocs)
}

func BenchmarkNearest(b *testing.B) {
	g, err := NewGrid(2)
	require.NoError(b, err)
	rng := rand.New(rand.NewSource(1))
	for i := range 10000 {
		g.Insert(i, gamemath.V(rng.Float64()*500, rng.Float64()*100))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Nearest(gamemath.V(float64(i%500), 50), 5)
	}
}
