package pathfinding

import (
	"github.com/automoto/doomerang-nav/shared/gamemath"
)

// ValidatePath reports whether p can still be followed by an agent at cur
// chasing target. It never modifies p.
func (pf *Pathfinder) ValidatePath(p *Path, cur, target gamemath.Vec2) (Status, StaleReason) {
	if p == nil {
		return StatusError, ReasonNone
	}
	switch p.Status {
	case StatusValid:
	case StatusStale:
		return StatusStale, p.StaleReason
	default:
		return p.Status, p.StaleReason
	}

	if g := pf.graph.Load(); g == nil || g.Generation != p.Generation {
		return StatusStale, ReasonGraphChanged
	}
	if pf.now().Sub(p.CreatedAt) > pf.cfg.PathMaxAge {
		return StatusStale, ReasonExpired
	}
	if target.Dist(p.End) > pf.cfg.TargetMoveThreshold {
		return StatusStale, ReasonTargetMoved
	}
	if deviation(p, cur) > pf.cfg.DeviationThreshold {
		return StatusStale, ReasonDeviated
	}
	return StatusValid, ReasonNone
}

// deviation is the distance from cur to the course of the current command.
// A finished path has no course and never deviates.
func deviation(p *Path, cur gamemath.Vec2) float64 {
	if p.Done() {
		return 0
	}
	cmd := p.Commands[p.cursor]
	if cmd.Kind.Airborne() && len(cmd.Trajectory) > 1 {
		return gamemath.DistanceToPolyline(cur, cmd.Trajectory)
	}
	return gamemath.DistanceToSegment(cur, p.waypoint(p.cursor), cmd.Target)
}

// TryAutoRevalidate replans p from cur to target when it has gone stale. A
// path is replanned at most once per RequestInterval; a throttled or failed
// replan leaves it Stale. It returns true when p holds a fresh route.
func (pf *Pathfinder) TryAutoRevalidate(p *Path, cur, target gamemath.Vec2) bool {
	status, reason := pf.ValidatePath(p, cur, target)
	if status != StatusStale {
		return false
	}
	if p.Status == StatusValid {
		p.setStatus(StatusStale)
		p.StaleReason = reason
		p.err = ErrStaleRoute
	}

	now := pf.now()
	if now.Sub(p.lastRequest) < pf.cfg.RequestInterval {
		pf.metrics.RevalidationsThrottled.Inc()
		return false
	}
	p.lastRequest = now

	g := pf.graph.Load()
	if g == nil {
		p.setStatus(StatusError)
		p.err = ErrNoGraph
		return false
	}

	pf.metrics.Revalidations.Inc()
	p.Start, p.End = cur, target
	ok := pf.plan(g, p)
	if ok {
		p.CreatedAt = now
	}
	pf.log.Debug("path revalidated", "path", p.ID, "reason", reason, "ok", ok, "commands", len(p.Commands))
	return ok
}
