// Package navgraph holds the platform graph: nodes placed on extracted
// surfaces, walk links along them and airborne links between them.
package navgraph

import (
	"cmp"
	"slices"

	"github.com/automoto/doomerang-nav/config"
	"github.com/automoto/doomerang-nav/geometry"
	"github.com/automoto/doomerang-nav/shared/gamemath"
	"github.com/automoto/doomerang-nav/spatial"
)

// NodeKind classifies a node by where it sits on its surface.
type NodeKind uint8

const (
	NodeSurface NodeKind = iota
	NodeLeftEdge
	NodeRightEdge
)

func (k NodeKind) String() string {
	switch k {
	case NodeSurface:
		return "surface"
	case NodeLeftEdge:
		return "left_edge"
	case NodeRightEdge:
		return "right_edge"
	}
	return "unknown"
}

// IsEdge reports whether nodes of this kind can be landed on.
func (k NodeKind) IsEdge() bool {
	return k == NodeLeftEdge || k == NodeRightEdge
}

// Node is a navigable point. Pos.Y always equals Height.
type Node struct {
	ID         int
	Pos        gamemath.Vec2
	Kind       NodeKind
	SurfaceID  int
	OneWay     bool
	Height     float64
	Transition bool // Placed where another surface starts above or below
}

// LinkKind is how a link is traversed.
type LinkKind uint8

const (
	LinkWalk LinkKind = iota
	LinkJump
	LinkFall
	LinkDropThrough
)

func (k LinkKind) String() string {
	switch k {
	case LinkWalk:
		return "walk"
	case LinkJump:
		return "jump"
	case LinkFall:
		return "fall"
	case LinkDropThrough:
		return "drop_through"
	}
	return "unknown"
}

// Airborne reports whether the link leaves the ground.
func (k LinkKind) Airborne() bool {
	return k != LinkWalk
}

// Launch is the take-off velocity of a jump.
type Launch struct {
	VX float64
	VY float64
}

// Link is a directed edge between two nodes.
type Link struct {
	From       int
	To         int
	Kind       LinkKind
	Cost       float64
	Duration   float64         // Seconds
	Launch     *Launch         // Jump only
	Trajectory []gamemath.Vec2 // Airborne links only
}

// Graph is an immutable platform graph. Build a new one to change it.
type Graph struct {
	Nodes      []Node
	Links      []Link
	Surfaces   []geometry.Surface
	Skipped    []geometry.GeometryError
	Config     config.NavConfig
	Generation uint64

	out   [][]int
	index *spatial.Grid
}

// Out returns the indices into Links of the links leaving node id.
func (g *Graph) Out(id int) []int {
	if id < 0 || id >= len(g.out) {
		return nil
	}
	return g.out[id]
}

// Node returns the node with the given id.
func (g *Graph) Node(id int) (Node, bool) {
	if id < 0 || id >= len(g.Nodes) {
		return Node{}, false
	}
	return g.Nodes[id], true
}

// Surface returns the surface with the given id.
func (g *Graph) Surface(id int) (geometry.Surface, bool) {
	if id < 0 || id >= len(g.Surfaces) {
		return geometry.Surface{}, false
	}
	return g.Surfaces[id], true
}

// Nearest returns the node closest to pos within maxDist.
func (g *Graph) Nearest(pos gamemath.Vec2, maxDist float64) (Node, bool) {
	e, ok := g.index.Nearest(pos, maxDist)
	if !ok {
		return Node{}, false
	}
	return g.Nodes[e.ID], true
}

// NearestWhere returns the closest node within maxDist accepted by keep.
func (g *Graph) NearestWhere(pos gamemath.Vec2, maxDist float64, keep func(Node) bool) (Node, bool) {
	e, ok := g.index.NearestFunc(pos, maxDist, func(e spatial.Entry) bool {
		return keep(g.Nodes[e.ID])
	})
	if !ok {
		return Node{}, false
	}
	return g.Nodes[e.ID], true
}

// NodesInRange appends every node within radius of pos to buf, ordered by id.
func (g *Graph) NodesInRange(pos gamemath.Vec2, radius float64, buf []Node) []Node {
	start := len(buf)
	g.index.Range(pos, radius, func(e spatial.Entry) bool {
		buf = append(buf, g.Nodes[e.ID])
		return true
	})
	slices.SortFunc(buf[start:], func(a, b Node) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return buf
}

// Stats summarizes a graph for logs.
type Stats struct {
	Surfaces     int
	Nodes        int
	EdgeNodes    int
	Links        int
	LinksPerKind map[LinkKind]int
	Skipped      int
}

func (g *Graph) Stats() Stats {
	st := Stats{
		Surfaces:     len(g.Surfaces),
		Nodes:        len(g.Nodes),
		Links:        len(g.Links),
		LinksPerKind: make(map[LinkKind]int, 4),
		Skipped:      len(g.Skipped),
	}
	for _, n := range g.Nodes {
		if n.Kind.IsEdge() {
			st.EdgeNodes++
		}
	}
	for _, l := range g.Links {
		st.LinksPerKind[l.Kind]++
	}
	return st
}

// finish builds the adjacency lists and the node index.
func (g *Graph) finish() error {
	idx, err := spatial.NewGrid(g.Config.Graph.CellSize)
	if err != nil {
		return err
	}
	for _, n := range g.Nodes {
		idx.Insert(n.ID, n.Pos)
	}
	g.index = idx

	g.out = make([][]int, len(g.Nodes))
	for i, l := range g.Links {
		g.out[l.From] = append(g.out[l.From], i)
	}
	g.Generation = nextGeneration()
	return nil
}
