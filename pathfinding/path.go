package pathfinding

import (
	"time"

	"github.com/google/uuid"

	"github.com/automoto/doomerang-nav/navgraph"
	"github.com/automoto/doomerang-nav/shared/gamemath"
)

// Status is the lifecycle state of a path.
type Status uint8

const (
	StatusPending Status = iota
	StatusValid
	StatusNotFound
	StatusStale
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusValid:
		return "valid"
	case StatusNotFound:
		return "not_found"
	case StatusStale:
		return "stale"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// legalTransitions lists the statuses each status may move to. NotFound and
// Error are terminal.
var legalTransitions = map[Status][]Status{
	StatusPending: {StatusValid, StatusNotFound, StatusError},
	StatusValid:   {StatusStale, StatusError},
	StatusStale:   {StatusValid, StatusError},
}

// StaleReason says why a path stopped being trustworthy.
type StaleReason uint8

const (
	ReasonNone StaleReason = iota
	ReasonExpired
	ReasonTargetMoved
	ReasonDeviated
	ReasonGraphChanged
)

func (r StaleReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonExpired:
		return "expired"
	case ReasonTargetMoved:
		return "target_moved"
	case ReasonDeviated:
		return "deviated"
	case ReasonGraphChanged:
		return "graph_changed"
	}
	return "unknown"
}

// MoveCommand is one instruction for the locomotion controller.
type MoveCommand struct {
	Kind       navgraph.LinkKind
	Target     gamemath.Vec2
	NodeID     int     // Target node, -1 for the literal end position
	VX, VY     float64 // Launch velocity, Jump only
	Duration   float64 // Estimated seconds
	Trajectory []gamemath.Vec2
}

// Path is the result of one path request. It belongs to the agent that asked
// for it and must not be shared between agents.
type Path struct {
	ID          uuid.UUID
	Status      Status
	StaleReason StaleReason
	Commands    []MoveCommand
	Start       gamemath.Vec2
	End         gamemath.Vec2
	CreatedAt   time.Time
	Duration    time.Duration // Total estimated duration
	Partial     bool          // Route ends at the reachable node closest to End
	Generation  uint64        // Graph generation the route was planned on

	cursor      int
	lastRequest time.Time
	err         error
}

func newPath(start, end gamemath.Vec2, now time.Time) *Path {
	return &Path{
		ID:          uuid.New(),
		Status:      StatusPending,
		Start:       start,
		End:         end,
		CreatedAt:   now,
		lastRequest: now,
	}
}

// setStatus moves the path to status s when the transition is legal.
func (p *Path) setStatus(s Status) bool {
	for _, next := range legalTransitions[p.Status] {
		if next == s {
			p.Status = s
			return true
		}
	}
	return false
}

// Err returns the error matching the path status, or nil for a usable path.
func (p *Path) Err() error {
	return p.err
}

// Cursor returns the index of the current command.
func (p *Path) Cursor() int {
	return p.cursor
}

// Done reports whether every command has been consumed.
func (p *Path) Done() bool {
	return p.cursor >= len(p.Commands)
}

// CurrentCommand returns the command the controller should execute, or false
// when the path is complete or unusable.
func (p *Path) CurrentCommand() (MoveCommand, bool) {
	if p == nil || (p.Status != StatusValid && p.Status != StatusStale) || p.Done() {
		return MoveCommand{}, false
	}
	return p.Commands[p.cursor], true
}

// AdvanceToNext moves the cursor past the current command. The controller
// calls it once the current command is complete. It returns false when there
// was nothing left to advance.
func (p *Path) AdvanceToNext() bool {
	if p == nil || p.Done() {
		return false
	}
	p.cursor++
	return true
}

// waypoint returns where the agent is expected to be when command i starts.
func (p *Path) waypoint(i int) gamemath.Vec2 {
	if i <= 0 || i > len(p.Commands) {
		return p.Start
	}
	return p.Commands[i-1].Target
}

// Remaining returns the commands not yet consumed.
func (p *Path) Remaining() []MoveCommand {
	if p.Done() {
		return nil
	}
	return p.Commands[p.cursor:]
}
