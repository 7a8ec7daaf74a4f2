package pathfinding

import (
	"github.com/automoto/doomerang-nav/navgraph"
	"github.com/automoto/doomerang-nav/shared/gamemath"
)

// endNode marks a command whose target is a literal position rather than a node.
const endNode = -1

// translate turns a route into move commands. Consecutive walk links collapse
// into one Walk, the first command leaves from start and the last one arrives
// at end.
func translate(g *navgraph.Graph, links []int, start, end gamemath.Vec2, tolerance float64) []MoveCommand {
	cmds := make([]MoveCommand, 0, len(links)+2)

	if len(links) > 0 {
		first := g.Nodes[g.Links[links[0]].From]
		if g.Links[links[0]].Kind.Airborne() && start.Dist(first.Pos) > tolerance {
			cmds = append(cmds, walkTo(first.Pos, first.ID))
		}
	}

	for _, li := range links {
		l := g.Links[li]
		to := g.Nodes[l.To]
		if l.Kind == navgraph.LinkWalk {
			if n := len(cmds); n > 0 && cmds[n-1].Kind == navgraph.LinkWalk {
				cmds[n-1].Target, cmds[n-1].NodeID = to.Pos, to.ID
				continue
			}
			cmds = append(cmds, walkTo(to.Pos, to.ID))
			continue
		}
		cmd := MoveCommand{
			Kind:       l.Kind,
			Target:     to.Pos,
			NodeID:     to.ID,
			Duration:   l.Duration,
			Trajectory: l.Trajectory,
		}
		if l.Launch != nil {
			cmd.VX, cmd.VY = l.Launch.VX, l.Launch.VY
		}
		cmds = append(cmds, cmd)
	}

	switch n := len(cmds); {
	case n > 0 && cmds[n-1].Kind == navgraph.LinkWalk:
		cmds[n-1].Target, cmds[n-1].NodeID = end, endNode
	case n == 0 || cmds[n-1].Target.Dist(end) > tolerance:
		cmds = append(cmds, walkTo(end, endNode))
	}

	timeWalks(cmds, start, g.Config.Graph.WalkSpeed)
	return cmds
}

func walkTo(target gamemath.Vec2, node int) MoveCommand {
	return MoveCommand{Kind: navgraph.LinkWalk, Target: target, NodeID: node}
}

// timeWalks sets the duration of every walk from the straight distance it
// covers. Merged walks stay on one surface, so the distance is exact.
func timeWalks(cmds []MoveCommand, start gamemath.Vec2, speed float64) {
	from := start
	for i := range cmds {
		if cmds[i].Kind == navgraph.LinkWalk {
			cmds[i].Duration = from.Dist(cmds[i].Target) / speed
		}
		from = cmds[i].Target
	}
}
