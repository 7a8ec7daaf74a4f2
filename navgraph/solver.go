package navgraph

import (
	"math"

	"github.com/automoto/doomerang-nav/config"
	"github.com/automoto/doomerang-nav/geometry"
	"github.com/automoto/doomerang-nav/shared/gamemath"
	"github.com/automoto/doomerang-nav/spatial"
)

const solverEpsilon = 1e-9

// solver adds jump, fall and drop-through links between surfaces.
type solver struct {
	b       *builder
	jump    config.JumpLinkConfig
	gravity float64

	shapes      []geometry.Shape
	shapeLo     []gamemath.Vec2
	shapeHi     []gamemath.Vec2
	shapeIndex  *spatial.Grid // shape centres by slice index
	shapeReach  float64       // largest shape half-diagonal
	nodeBuf     []spatial.Entry
	shapeBuf    []spatial.Entry
	searchRange float64
}

func newSolver(b *builder) *solver {
	s := &solver{
		b:       b,
		jump:    b.cfg.Jump,
		gravity: b.cfg.Jump.EffectiveGravity(),
		shapes:  b.ex.Shapes,
		shapeLo: make([]gamemath.Vec2, len(b.ex.Shapes)),
		shapeHi: make([]gamemath.Vec2, len(b.ex.Shapes)),
	}
	// cell size was validated when the node index was created
	s.shapeIndex, _ = spatial.NewGrid(b.cfg.Graph.CellSize)
	for i, sh := range s.shapes {
		lo, hi := sh.Bounds()
		s.shapeLo[i], s.shapeHi[i] = lo, hi
		s.shapeIndex.Insert(i, lo.Lerp(hi, 0.5))
		s.shapeReach = max(s.shapeReach, lo.Dist(hi)/2)
	}
	s.searchRange = math.Hypot(s.jump.MaxHorizontalDistance, max(s.jump.MaxJumpHeight, s.jump.MaxFallHeight))
	return s
}

func (s *solver) linkAll() {
	for id := range s.b.nodes {
		s.linkFrom(s.b.nodes[id])
	}
}

// linkFrom solves every candidate destination of origin o. Destinations are
// always edge nodes of another surface.
func (s *solver) linkFrom(o Node) {
	s.nodeBuf = s.b.index.InRange(o.Pos, s.searchRange, s.nodeBuf[:0])
	for _, e := range s.nodeBuf {
		d := s.b.nodes[e.ID]
		if d.SurfaceID == o.SurfaceID || !d.Kind.IsEdge() {
			continue
		}
		dx := d.Pos.X - o.Pos.X
		dy := d.Pos.Y - o.Pos.Y
		if math.Abs(dx) > s.jump.MaxHorizontalDistance || dy > s.jump.MaxJumpHeight || dy < -s.jump.MaxFallHeight {
			continue
		}
		if l, ok := s.solve(o, d); ok {
			s.b.links = append(s.b.links, l)
		}
	}
}

// solve classifies the traversal from o to d: drop-through first, then a
// fall off the end of o's surface, then a jump.
func (s *solver) solve(o, d Node) (Link, bool) {
	from := s.b.ex.Surfaces[o.SurfaceID]
	to := s.b.ex.Surfaces[d.SurfaceID]
	dx := d.Pos.X - o.Pos.X
	dy := d.Pos.Y - o.Pos.Y
	descending := dy < -solverEpsilon

	if descending && to.SpansX(o.Pos.X) && (from.OneWay || to.OneWay) {
		if o.Kind == NodeSurface && math.Abs(dx) > s.jump.VerticalFallTolerance+solverEpsilon {
			return Link{}, false
		}
		if l, ok := s.fall(o, d, LinkDropThrough); ok {
			return l, true
		}
	}
	if !o.Kind.IsEdge() {
		return Link{}, false
	}
	if descending && s.leavesEnd(o, from, d) {
		if l, ok := s.fall(o, d, LinkFall); ok {
			return l, true
		}
	}
	return s.jumpTo(o, d)
}

// leavesEnd reports whether o sits at the end of its surface and d lies
// beyond that end, so stepping off reaches it.
func (s *solver) leavesEnd(o Node, from geometry.Surface, d Node) bool {
	reach := s.b.inset(from) + s.b.cfg.Graph.DedupTolerance + solverEpsilon
	switch o.Kind {
	case NodeLeftEdge:
		return o.Pos.X-from.Left <= reach && d.Pos.X < from.Left
	case NodeRightEdge:
		return from.Right-o.Pos.X <= reach && d.Pos.X > from.Right
	}
	return false
}

// fall solves a drop with no vertical launch speed.
func (s *solver) fall(o, d Node, kind LinkKind) (Link, bool) {
	dx := d.Pos.X - o.Pos.X
	t := gamemath.FallTime(o.Pos.Y-d.Pos.Y, s.gravity)
	if t <= 0 {
		return Link{}, false
	}
	vx := dx / t
	if math.Abs(vx) > s.jump.MaxLaunchVelocity {
		return Link{}, false
	}
	traj := gamemath.SampleTrajectory(o.Pos, vx, 0, s.gravity, t, s.jump.TrajectoryTimeStep, nil)
	if s.blocked(traj, o, d, kind) {
		return Link{}, false
	}
	return s.link(o, d, kind, t, nil, traj), true
}

// jumpTo raises the apex step by step until an arc is fast enough to be
// launched and clears the level.
func (s *solver) jumpTo(o, d Node) (Link, bool) {
	dx := d.Pos.X - o.Pos.X
	dy := d.Pos.Y - o.Pos.Y
	apex := min(max(dy, 0)+s.jump.ApexMargin, s.jump.MaxJumpHeight)
	if apex < dy {
		return Link{}, false
	}
	for ; apex <= s.jump.MaxJumpHeight+solverEpsilon; apex += s.jump.ApexStep {
		vx, vy, t, ok := gamemath.LaunchForApex(dx, dy, apex, s.gravity)
		if !ok || vy > s.jump.MaxLaunchVelocity {
			break
		}
		if math.Abs(vx) > s.jump.MaxLaunchVelocity {
			continue
		}
		traj := gamemath.SampleTrajectory(o.Pos, vx, vy, s.gravity, t, s.jump.TrajectoryTimeStep, nil)
		if s.blocked(traj, o, d, LinkJump) {
			continue
		}
		return s.link(o, d, LinkJump, t, &Launch{VX: vx, VY: vy}, traj), true
	}
	return Link{}, false
}

// link prices an airborne traversal. The cost never drops below the straight
// line distance, so the Euclidean heuristic stays admissible.
func (s *solver) link(o, d Node, kind LinkKind, t float64, launch *Launch, traj []gamemath.Vec2) Link {
	dist := o.Pos.Dist(d.Pos)
	cost := max(dist, t*s.b.cfg.Graph.WalkSpeed) * s.jump.CostMultiplier
	return Link{
		From:       o.ID,
		To:         d.ID,
		Kind:       kind,
		Cost:       cost,
		Duration:   t,
		Launch:     launch,
		Trajectory: traj,
	}
}

// blocked reports whether the sampled trajectory hits level geometry.
// Shapes under the origin or destination surface only block when entered
// deeper than the clearance skin, and falls ignore the origin shapes.
// One-way shapes only block when passed through on the way down.
func (s *solver) blocked(traj []gamemath.Vec2, o, d Node, kind LinkKind) bool {
	lo, hi := gamemath.Bounds(traj)
	centre := lo.Lerp(hi, 0.5)
	s.shapeBuf = s.shapeIndex.InRange(centre, lo.Dist(hi)/2+s.shapeReach, s.shapeBuf[:0])

	for _, e := range s.shapeBuf {
		slo, shi := s.shapeLo[e.ID], s.shapeHi[e.ID]
		if shi.X < lo.X || slo.X > hi.X || shi.Y < lo.Y || slo.Y > hi.Y {
			continue
		}
		sh := s.shapes[e.ID]
		atOrigin := s.b.ex.Surfaces[o.SurfaceID].HasShape(sh.ID)
		atDest := s.b.ex.Surfaces[d.SurfaceID].HasShape(sh.ID)

		if sh.OneWay {
			if !atOrigin && !atDest && descendsThrough(traj, slo.X, shi.X, shi.Y) {
				return true
			}
			continue
		}
		switch {
		case atOrigin && kind != LinkJump:
			continue
		case atOrigin || atDest:
			if penetrates(traj, sh, s.jump.ClearanceSkin) {
				return true
			}
		default:
			if crosses(traj, sh) {
				return true
			}
		}
	}
	return false
}

// descendsThrough reports whether the path moves down across the line
// y = top between left and right.
func descendsThrough(traj []gamemath.Vec2, left, right, top float64) bool {
	for i := 1; i < len(traj); i++ {
		p, q := traj[i-1], traj[i]
		if q.Y >= p.Y || p.Y < top || q.Y >= top {
			continue
		}
		x := p.X + (q.X-p.X)*(p.Y-top)/(p.Y-q.Y)
		if x > left && x < right {
			return true
		}
	}
	return false
}

func penetrates(traj []gamemath.Vec2, sh geometry.Shape, skin float64) bool {
	for _, p := range traj {
		if sh.Contains(p) && outlineDistance(p, sh.Points) > skin {
			return true
		}
	}
	return false
}

func crosses(traj []gamemath.Vec2, sh geometry.Shape) bool {
	for i, p := range traj {
		if sh.Contains(p) {
			return true
		}
		if i > 0 && gamemath.SegmentCrossesPolygon(traj[i-1], p, sh.Points) {
			return true
		}
	}
	return false
}

// outlineDistance is the distance from p to the closed outline pts.
func outlineDistance(p gamemath.Vec2, pts []gamemath.Vec2) float64 {
	best := math.Inf(1)
	for i := range pts {
		best = min(best, gamemath.DistanceToSegment(p, pts[i], pts[(i+1)%len(pts)]))
	}
	return best
}
