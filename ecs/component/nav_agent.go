package component

import (
	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/pathfinder"
)

// NavState is where an agent is in its plan/move cycle.
type NavState int

const (
	NavIdle NavState = iota
	NavMoving
	NavArrived
	NavUnreachable
)

func (s NavState) String() string {
	switch s {
	case NavMoving:
		return "moving"
	case NavArrived:
		return "arrived"
	case NavUnreachable:
		return "unreachable"
	default:
		return "idle"
	}
}

// NavAgent walks a planned path towards Target. Speed is in scene units per
// frame.
type NavAgent struct {
	Name           string
	Speed          float32
	Radius         float32
	ArriveDistance float32
	RepathFrames   int
	FrameCounter   int

	Target    common.Vector3
	HasTarget bool
	// NeedsPath asks the navigation system to plan before the next move.
	NeedsPath bool

	State     NavState
	Path      pathfinder.WayPointList
	PathIndex int
	Velocity  common.Vector3
	LastError error
}

// SetTarget points the agent at target and requests a new plan.
func (a *NavAgent) SetTarget(target common.Vector3) {
	a.Target = target
	a.HasTarget = true
	a.NeedsPath = true
}

// ClearTarget stops the agent where it stands.
func (a *NavAgent) ClearTarget() {
	a.HasTarget = false
	a.NeedsPath = false
	a.Path = nil
	a.PathIndex = 0
	a.Velocity = common.Vector3{}
	a.State = NavIdle
}

// Remaining is the part of the path not yet reached.
func (a *NavAgent) Remaining() pathfinder.WayPointList {
	if a.PathIndex >= len(a.Path) {
		return nil
	}
	return a.Path[a.PathIndex:]
}

var NavAgentComponent = NewComponent[NavAgent]("nav_agent")
