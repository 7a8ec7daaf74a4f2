// Package spatial provides a uniform grid for nearest and radius queries over
// points.
package spatial

import (
	"cmp"
	"math"
	"slices"

	"github.com/automoto/doomerang-nav/config"
	"github.com/automoto/doomerang-nav/shared/gamemath"
)

type cellKey struct {
	X int
	Y int
}

// Entry is one indexed point.
type Entry struct {
	ID  int
	Pos gamemath.Vec2
}

// Grid buckets points by floor(pos / cellSize). Results always match a
// brute-force scan: nearest ties go to the lower id and range results are
// ordered by id.
type Grid struct {
	cellSize    float64
	invCellSize float64
	cells       map[cellKey][]Entry
	count       int
	lo, hi      cellKey // occupied cell bounds
}

// NewGrid returns an empty grid. A non-positive cell size is a
// configuration error.
func NewGrid(cellSize float64) (*Grid, error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 1) {
		return nil, &config.ConfigurationError{Field: "graph.cell_size", Reason: "must be positive"}
	}
	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cells:       make(map[cellKey][]Entry),
	}, nil
}

// CellSize returns the grid cell edge length.
func (g *Grid) CellSize() float64 {
	return g.cellSize
}

// Len returns the number of indexed points.
func (g *Grid) Len() int {
	return g.count
}

func (g *Grid) key(p gamemath.Vec2) cellKey {
	return cellKey{
		X: int(math.Floor(p.X * g.invCellSize)),
		Y: int(math.Floor(p.Y * g.invCellSize)),
	}
}

// Insert adds a point to its cell bucket.
func (g *Grid) Insert(id int, pos gamemath.Vec2) {
	k := g.key(pos)
	g.cells[k] = append(g.cells[k], Entry{ID: id, Pos: pos})
	if g.count == 0 {
		g.lo, g.hi = k, k
	} else {
		g.lo.X, g.lo.Y = min(g.lo.X, k.X), min(g.lo.Y, k.Y)
		g.hi.X, g.hi.Y = max(g.hi.X, k.X), max(g.hi.Y, k.Y)
	}
	g.count++
}

// Nearest returns the closest point within maxDist of pos. It searches rings
// of cells outward from the query cell and stops once no unvisited cell can
// hold a closer point.
func (g *Grid) Nearest(pos gamemath.Vec2, maxDist float64) (Entry, bool) {
	return g.NearestFunc(pos, maxDist, nil)
}

// NearestFunc is Nearest restricted to entries accepted by keep. A nil keep
// accepts everything.
func (g *Grid) NearestFunc(pos gamemath.Vec2, maxDist float64, keep func(Entry) bool) (Entry, bool) {
	if g.count == 0 || maxDist < 0 {
		return Entry{}, false
	}
	c := g.key(pos)
	maxSq := maxDist * maxDist

	var best Entry
	bestSq := math.Inf(1)
	found := false

	// rings closer than minRing lie entirely outside the occupied cells
	minRing := max(0, g.lo.X-c.X, c.X-g.hi.X, g.lo.Y-c.Y, c.Y-g.hi.Y)
	maxRing := max(c.X-g.lo.X, g.hi.X-c.X, c.Y-g.lo.Y, g.hi.Y-c.Y)
	for r := minRing; r <= maxRing; r++ {
		if r > 0 {
			// distance from pos to the nearest cell of ring r
			bound := g.ringDistance(pos, c, r)
			if bound > maxDist || (found && bestSq < bound*bound) {
				break
			}
		}
		g.visitRing(c, r, func(e Entry) {
			if keep != nil && !keep(e) {
				return
			}
			d := pos.DistSq(e.Pos)
			if d > maxSq {
				return
			}
			if !found || d < bestSq || (d == bestSq && e.ID < best.ID) {
				best, bestSq, found = e, d, true
			}
		})
	}
	return best, found
}

// ringDistance is the distance from pos to the inner border of ring r
// around cell c.
func (g *Grid) ringDistance(pos gamemath.Vec2, c cellKey, r int) float64 {
	left := pos.X - float64(c.X-r+1)*g.cellSize
	right := float64(c.X+r)*g.cellSize - pos.X
	down := pos.Y - float64(c.Y-r+1)*g.cellSize
	up := float64(c.Y+r)*g.cellSize - pos.Y
	return max(0, min(left, right, down, up))
}

// visitRing calls fn for the entries of ring r around c, clipped to the
// occupied cells.
func (g *Grid) visitRing(c cellKey, r int, fn func(Entry)) {
	visit := func(x, y int) {
		for _, e := range g.cells[cellKey{X: x, Y: y}] {
			fn(e)
		}
	}
	if r == 0 {
		visit(c.X, c.Y)
		return
	}
	x0, x1 := max(c.X-r, g.lo.X), min(c.X+r, g.hi.X)
	for _, y := range [2]int{c.Y - r, c.Y + r} {
		if y < g.lo.Y || y > g.hi.Y {
			continue
		}
		for x := x0; x <= x1; x++ {
			visit(x, y)
		}
	}
	y0, y1 := max(c.Y-r+1, g.lo.Y), min(c.Y+r-1, g.hi.Y)
	for _, x := range [2]int{c.X - r, c.X + r} {
		if x < g.lo.X || x > g.hi.X {
			continue
		}
		for y := y0; y <= y1; y++ {
			visit(x, y)
		}
	}
}

// Range calls yield for every point within radius of pos, cell by cell,
// until yield returns false. Order is unspecified.
func (g *Grid) Range(pos gamemath.Vec2, radius float64, yield func(Entry) bool) {
	if g.count == 0 || radius < 0 {
		return
	}
	lo, hi := g.cellSpan(pos, radius)
	rSq := radius * radius
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			for _, e := range g.cells[cellKey{X: x, Y: y}] {
				if pos.DistSq(e.Pos) > rSq {
					continue
				}
				if !yield(e) {
					return
				}
			}
		}
	}
}

// InRange appends every point within radius of pos to buf, ordered by id.
// It only allocates when buf runs out of capacity.
func (g *Grid) InRange(pos gamemath.Vec2, radius float64, buf []Entry) []Entry {
	if g.count == 0 || radius < 0 {
		return buf
	}
	start := len(buf)
	lo, hi := g.cellSpan(pos, radius)
	rSq := radius * radius
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			for _, e := range g.cells[cellKey{X: x, Y: y}] {
				if pos.DistSq(e.Pos) <= rSq {
					buf = append(buf, e)
				}
			}
		}
	}
	slices.SortFunc(buf[start:], compareID)
	return buf
}

func compareID(a, b Entry) int {
	return cmp.Compare(a.ID, b.ID)
}

// cellSpan returns the occupied cells a radius query around pos can reach.
func (g *Grid) cellSpan(pos gamemath.Vec2, radius float64) (lo, hi cellKey) {
	lo, hi = g.lo, g.hi
	if reach := g.cellSize * float64(max(hi.X-lo.X, hi.Y-lo.Y)+1); radius < reach {
		a := g.key(gamemath.V(pos.X-radius, pos.Y-radius))
		b := g.key(gamemath.V(pos.X+radius, pos.Y+radius))
		lo.X, lo.Y = max(lo.X, a.X), max(lo.Y, a.Y)
		hi.X, hi.Y = min(hi.X, b.X), min(hi.Y, b.Y)
	}
	return lo, hi
}
