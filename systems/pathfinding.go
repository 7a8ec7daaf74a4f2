package systems

import (
	"github.com/yohamta/donburi"

	"github.com/automoto/doomerang-nav/components"
	"github.com/automoto/doomerang-nav/pathfinding"
	"github.com/automoto/doomerang-nav/tags"
)

// UpdateNavAgents advances every tagged nav agent by one frame: it requests
// a path when the agent has none, consumes completed commands, replans stale
// paths and publishes the command to execute next.
func UpdateNavAgents(world donburi.World, pf *pathfinding.Pathfinder) {
	tags.NavAgent.Each(world, func(entry *donburi.Entry) {
		if !entry.HasComponent(components.NavAgent) {
			return
		}
		updateNavAgent(components.NavAgent.Get(entry), pf)
	})
}

func updateNavAgent(agent *components.NavAgentData, pf *pathfinding.Pathfinder) {
	if needsPath(agent) {
		agent.Path = pf.RequestPath(agent.Position, agent.Target)
		agent.CommandDone = false
	}

	if agent.CommandDone {
		agent.Path.AdvanceToNext()
		agent.CommandDone = false
	}

	pf.TryAutoRevalidate(agent.Path, agent.Position, agent.Target)
	agent.Current, agent.HasCommand = agent.Path.CurrentCommand()
}

// needsPath reports whether the agent has no usable path. Paths that failed
// are only retried once the target changes, so an unreachable target does
// not trigger a search every frame.
func needsPath(agent *components.NavAgentData) bool {
	if agent.Path == nil {
		return true
	}
	switch agent.Path.Status {
	case pathfinding.StatusNotFound, pathfinding.StatusError:
		return agent.Path.End != agent.Target
	}
	return false
}
