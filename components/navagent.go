package components

import (
	"github.com/yohamta/donburi"

	"github.com/automoto/doomerang-nav/pathfinding"
	"github.com/automoto/doomerang-nav/shared/gamemath"
)

// NavAgentData connects an entity's locomotion controller to the pathfinder.
// The controller writes Position, Target and CommandDone; the navigation
// system writes Path, Current and HasCommand.
type NavAgentData struct {
	Position gamemath.Vec2
	Target   gamemath.Vec2

	Path       *pathfinding.Path
	Current    pathfinding.MoveCommand
	HasCommand bool

	// CommandDone is set by the controller once Current is complete
	CommandDone bool
}

var NavAgent = donburi.NewComponentType[NavAgentData]()
