// Package pathfinding answers path requests over a platform graph and keeps
// the returned paths honest as agents and targets move.
package pathfinding

import (
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/automoto/doomerang-nav/config"
	"github.com/automoto/doomerang-nav/geometry"
	"github.com/automoto/doomerang-nav/navgraph"
	"github.com/automoto/doomerang-nav/shared/gamemath"
)

// Pathfinder owns the active graph and serves path requests against it.
// Queries may run concurrently with each other and with BuildGraph; a new
// graph replaces the old one atomically.
type Pathfinder struct {
	cfg     config.PathfinderConfig
	graph   atomic.Pointer[navgraph.Graph]
	now     func() time.Time
	log     *slog.Logger
	reg     prometheus.Registerer
	metrics *Metrics
	cache   *SnapshotCache
}

// Option configures a Pathfinder.
type Option func(*Pathfinder)

// WithClock replaces time.Now for path ages and replan throttling.
func WithClock(now func() time.Time) Option {
	return func(pf *Pathfinder) { pf.now = now }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(pf *Pathfinder) { pf.log = l }
}

// WithRegistry registers the pathfinder metrics with reg.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(pf *Pathfinder) { pf.reg = reg }
}

// WithCache makes BuildGraphCached read and write snapshots through c.
func WithCache(c *SnapshotCache) Option {
	return func(pf *Pathfinder) { pf.cache = c }
}

// New returns a pathfinder without a graph.
func New(cfg config.PathfinderConfig, opts ...Option) (*Pathfinder, error) {
	pf := &Pathfinder{
		cfg:     cfg,
		now:     time.Now,
		log:     slog.Default(),
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(pf)
	}
	if pf.reg != nil {
		if err := pf.metrics.register(pf.reg); err != nil {
			return nil, err
		}
	}
	return pf, nil
}

// Metrics returns the pathfinder's collectors.
func (pf *Pathfinder) Metrics() *Metrics {
	return pf.metrics
}

// Graph returns the active graph, or nil before the first build.
func (pf *Pathfinder) Graph() *navgraph.Graph {
	return pf.graph.Load()
}

// SetGraph makes g the active graph. Paths planned on the previous graph
// report GraphChanged from then on.
func (pf *Pathfinder) SetGraph(g *navgraph.Graph) {
	pf.graph.Store(g)
	pf.metrics.GraphNodes.Set(float64(len(g.Nodes)))
	pf.metrics.GraphLinks.Set(float64(len(g.Links)))
}

// BuildGraph builds a graph from shapes and makes it active. The previous
// graph stays active when the build fails.
func (pf *Pathfinder) BuildGraph(shapes []geometry.Shape, cfg config.NavConfig) (*navgraph.Graph, error) {
	started := time.Now()
	g, err := navgraph.Build(shapes, cfg)
	if err != nil {
		return nil, err
	}
	took := time.Since(started)
	pf.metrics.GraphBuildSeconds.Observe(took.Seconds())
	pf.logBuild(g, took)
	pf.SetGraph(g)
	return g, nil
}

func (pf *Pathfinder) logBuild(g *navgraph.Graph, took time.Duration) {
	for _, ge := range g.Skipped {
		pf.log.Debug("shape skipped", "shape", ge.ShapeID, "reason", ge.Reason)
	}
	st := g.Stats()
	pf.log.Info("platform graph built",
		"generation", g.Generation,
		"surfaces", st.Surfaces,
		"nodes", st.Nodes,
		"edge_nodes", st.EdgeNodes,
		"walk", st.LinksPerKind[navgraph.LinkWalk],
		"jump", st.LinksPerKind[navgraph.LinkJump],
		"fall", st.LinksPerKind[navgraph.LinkFall],
		"drop_through", st.LinksPerKind[navgraph.LinkDropThrough],
		"skipped", st.Skipped,
		"took", took,
	)
}

// FindNearestNode returns the node closest to pos within maxDist.
func (pf *Pathfinder) FindNearestNode(pos gamemath.Vec2, maxDist float64) (navgraph.Node, bool) {
	g := pf.graph.Load()
	if g == nil {
		return navgraph.Node{}, false
	}
	return g.Nearest(pos, maxDist)
}

// FindNodesInRange appends every node within radius of pos to buf.
func (pf *Pathfinder) FindNodesInRange(pos gamemath.Vec2, radius float64, buf []navgraph.Node) []navgraph.Node {
	g := pf.graph.Load()
	if g == nil {
		return buf
	}
	return g.NodesInRange(pos, radius, buf)
}

// RequestPath plans a route from start to end on the active graph. The
// returned path is Valid, NotFound, or Error when no graph has been built.
func (pf *Pathfinder) RequestPath(start, end gamemath.Vec2) *Path {
	p := newPath(start, end, pf.now())
	g := pf.graph.Load()
	if g == nil {
		p.setStatus(StatusError)
		p.err = ErrNoGraph
		return p
	}
	pf.plan(g, p)
	return p
}

// plan fills p with a fresh route from p.Start to p.End. It returns false when
// no route exists, leaving p NotFound if it was new or Stale if it was a
// replan.
func (pf *Pathfinder) plan(g *navgraph.Graph, p *Path) bool {
	p.Generation = g.Generation
	p.Commands = nil
	p.cursor = 0
	p.Partial = false
	p.Duration = 0

	from, okFrom := g.Nearest(p.Start, pf.cfg.MaxSnapDistance)
	to, okTo := g.Nearest(p.End, pf.cfg.MaxSnapDistance)
	if !okFrom || !okTo {
		return pf.noRoute(p)
	}

	if from.SurfaceID == to.SurfaceID && math.Abs(p.Start.Y-p.End.Y) <= pf.cfg.SamePlatformMaxHeightDiff {
		pf.metrics.FastPaths.Inc()
		first := walkTo(from.Pos, from.ID)
		if !between(p.Start.X, from.Pos.X, p.End.X) {
			// the snapped node is behind the start or past the end
			surf, _ := g.Surface(from.SurfaceID)
			first = walkTo(gamemath.V(gamemath.ClampFloat(p.Start.X, surf.Left, surf.Right), surf.Y), endNode)
		}
		p.Commands = []MoveCommand{first, walkTo(p.End, endNode)}
		timeWalks(p.Commands, p.Start, g.Config.Graph.WalkSpeed)
		return pf.found(p)
	}

	s := &search{g: g}
	end := p.End
	links, ok := s.route(from.ID, to.ID)
	if !ok && pf.cfg.AllowPartialPath {
		best := s.closestReachable(from.ID, to.ID)
		if best != from.ID {
			links, ok = s.route(from.ID, best)
			end = g.Nodes[best].Pos
			p.Partial = ok
		}
	}
	if !ok {
		pf.metrics.Searches.WithLabelValues(resultNotFound).Inc()
		return pf.noRoute(p)
	}
	if p.Partial {
		pf.metrics.Searches.WithLabelValues(resultPartial).Inc()
	} else {
		pf.metrics.Searches.WithLabelValues(resultFound).Inc()
	}

	p.Commands = translate(g, links, p.Start, end, pf.cfg.ArrivalTolerance)
	return pf.found(p)
}

// between reports whether x lies after a and no further than b, walking from
// a towards b.
func between(a, x, b float64) bool {
	return (x-a)*(b-a) > 0 && (b-x)*(b-a) >= 0
}

func (pf *Pathfinder) found(p *Path) bool {
	var total float64
	for _, c := range p.Commands {
		total += c.Duration
	}
	p.Duration = time.Duration(total * float64(time.Second))
	p.setStatus(StatusValid)
	p.StaleReason = ReasonNone
	p.err = nil
	return true
}

func (pf *Pathfinder) noRoute(p *Path) bool {
	if p.setStatus(StatusNotFound) {
		p.err = ErrNoPath
	} else {
		p.err = ErrStaleRoute
	}
	return false
}
