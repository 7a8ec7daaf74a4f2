package navgraph

import (
	"cmp"
	"math"
	"slices"
	"sync/atomic"

	"github.com/automoto/doomerang-nav/config"
	"github.com/automoto/doomerang-nav/geometry"
	"github.com/automoto/doomerang-nav/shared/gamemath"
	"github.com/automoto/doomerang-nav/spatial"
)

var generation atomic.Uint64

func nextGeneration() uint64 {
	return generation.Add(1)
}

// Build extracts surfaces from shapes and builds a complete graph: nodes,
// walk links and airborne links.
func Build(shapes []geometry.Shape, cfg config.NavConfig) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return build(geometry.Extract(shapes, cfg.Geometry), cfg)
}

// FromExtraction builds a graph from surfaces that were already extracted.
func FromExtraction(ex geometry.Extraction, cfg config.NavConfig) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return build(ex, cfg)
}

// build expects cfg to be validated.
func build(ex geometry.Extraction, cfg config.NavConfig) (*Graph, error) {
	b, err := newBuilder(ex, cfg)
	if err != nil {
		return nil, err
	}

	b.placeNodes()
	b.placeTransitions()
	b.linkWalks()
	newSolver(b).linkAll()

	g := &Graph{
		Nodes:    b.nodes,
		Links:    b.links,
		Surfaces: ex.Surfaces,
		Skipped:  ex.Skipped,
		Config:   cfg,
	}
	if err := g.finish(); err != nil {
		return nil, err
	}
	return g, nil
}

type builder struct {
	cfg       config.NavConfig
	ex        geometry.Extraction
	nodes     []Node
	links     []Link
	index     *spatial.Grid
	bySurface [][]int
}

func newBuilder(ex geometry.Extraction, cfg config.NavConfig) (*builder, error) {
	idx, err := spatial.NewGrid(cfg.Graph.CellSize)
	if err != nil {
		return nil, err
	}
	return &builder{
		cfg:       cfg,
		ex:        ex,
		index:     idx,
		bySurface: make([][]int, len(ex.Surfaces)),
	}, nil
}

func (b *builder) narrow(s geometry.Surface) bool {
	return s.Width() < b.cfg.Graph.MinPlatformWidth
}

// inset is how far edge nodes sit inside the ends of s. Narrow surfaces use
// a quarter of their width so the two edge nodes stay apart.
func (b *builder) inset(s geometry.Surface) float64 {
	inset := b.cfg.Graph.EdgeInset
	if b.narrow(s) || 2*inset >= s.Width() {
		inset = min(inset, s.Width()/4)
	}
	return inset
}

// addNode places a node on s at x, reusing a node of the same surface within
// the dedup tolerance.
func (b *builder) addNode(s geometry.Surface, x float64, kind NodeKind, transition bool) int {
	pos := gamemath.V(x, s.Y)
	e, ok := b.index.NearestFunc(pos, b.cfg.Graph.DedupTolerance, func(e spatial.Entry) bool {
		return b.nodes[e.ID].SurfaceID == s.ID
	})
	if ok {
		n := &b.nodes[e.ID]
		if n.Kind == NodeSurface && kind.IsEdge() {
			n.Kind = kind
		}
		n.Transition = n.Transition || transition
		return e.ID
	}

	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{
		ID:         id,
		Pos:        pos,
		Kind:       kind,
		SurfaceID:  s.ID,
		OneWay:     s.OneWay,
		Height:     s.Y,
		Transition: transition,
	})
	b.index.Insert(id, pos)
	b.bySurface[s.ID] = append(b.bySurface[s.ID], id)
	return id
}

func (b *builder) placeNodes() {
	spacing := b.cfg.Graph.Spacing()
	for _, s := range b.ex.Surfaces {
		inset := b.inset(s)
		left := s.Left + inset
		right := s.Right - inset

		b.addNode(s, left, NodeLeftEdge, false)
		if !b.narrow(s) {
			for x := left + spacing; x < right-spacing/2; x += spacing {
				b.addNode(s, x, NodeSurface, false)
			}
		}
		b.addNode(s, right, NodeRightEdge, false)
	}
}

// placeTransitions mirrors every surface end onto the nearest wider surface
// directly below and above it, one inset outside the end.
func (b *builder) placeTransitions() {
	surfaces := b.ex.Surfaces
	for _, o := range surfaces {
		inset := b.cfg.Graph.EdgeInset
		ends := [...]struct {
			x    float64
			kind NodeKind
		}{
			{o.Left - inset, NodeLeftEdge},
			{o.Right + inset, NodeRightEdge},
		}
		for _, end := range ends {
			below, above := -1, -1
			for _, s := range surfaces {
				if s.ID == o.ID || b.narrow(s) {
					continue
				}
				if math.Abs(s.Y-o.Y) <= b.cfg.Geometry.MergeTolerance {
					continue
				}
				si := b.inset(s)
				if end.x < s.Left+si || end.x > s.Right-si {
					continue
				}
				if s.Y < o.Y {
					if below < 0 || s.Y > surfaces[below].Y {
						below = s.ID
					}
				} else if above < 0 || s.Y < surfaces[above].Y {
					above = s.ID
				}
			}
			for _, id := range [...]int{below, above} {
				if id >= 0 {
					b.addNode(surfaces[id], end.x, end.kind, true)
				}
			}
		}
	}
}

// linkWalks joins neighbouring nodes of each walkable surface in both
// directions. Narrow surfaces are stepping stones and get no walk links.
func (b *builder) linkWalks() {
	for sid, ids := range b.bySurface {
		if b.narrow(b.ex.Surfaces[sid]) || len(ids) < 2 {
			continue
		}
		slices.SortFunc(ids, func(a, c int) int {
			return cmp.Compare(b.nodes[a].Pos.X, b.nodes[c].Pos.X)
		})
		for i := 1; i < len(ids); i++ {
			from, to := b.nodes[ids[i-1]], b.nodes[ids[i]]
			dist := from.Pos.Dist(to.Pos)
			dur := dist / b.cfg.Graph.WalkSpeed
			b.links = append(b.links,
				Link{From: from.ID, To: to.ID, Kind: LinkWalk, Cost: dist, Duration: dur},
				Link{From: to.ID, To: from.ID, Kind: LinkWalk, Cost: dist, Duration: dur},
			)
		}
	}
}
