package system

import (
	"log"

	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/ecs"
	"github.com/milk9111/navpath/ecs/component"
	"github.com/milk9111/navpath/pathfinder"
)

const defaultArriveDistance float32 = 0.05

// NavigationSystem plans paths for agents that have a target and steers
// them along the planned waypoints. Agents without a physics body are moved
// here directly; the others are moved by PhysicsSystem.
type NavigationSystem struct {
	finder *pathfinder.PathFinder
}

func NewNavigationSystem(finder *pathfinder.PathFinder) *NavigationSystem {
	return &NavigationSystem{finder: finder}
}

func (ns *NavigationSystem) Update(w *ecs.World) {
	if ns == nil || ns.finder == nil || w == nil {
		return
	}

	ecs.ForEach2(w, component.NavAgentComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, agent *component.NavAgent, t *component.Transform) {
		if !agent.HasTarget {
			agent.Velocity = common.Vector3{}
			return
		}

		agent.FrameCounter++
		if agent.RepathFrames > 0 && agent.FrameCounter%agent.RepathFrames == 0 && agent.State == component.NavMoving {
			agent.NeedsPath = true
		}
		if agent.NeedsPath {
			ns.plan(w, e, agent, t)
		}
		if agent.State != component.NavMoving {
			agent.Velocity = common.Vector3{}
			return
		}

		ns.steer(w, e, agent, t)
	})
}

func (ns *NavigationSystem) plan(w *ecs.World, e ecs.Entity, agent *component.NavAgent, t *component.Transform) {
	agent.NeedsPath = false

	path, err := ns.finder.FindPath(t.Position, agent.Target)
	agent.LastError = err
	if err != nil || len(path) == 0 {
		if err != nil {
			log.Printf("navigation: entity=%s plan failed: %v", e, err)
		}
		agent.Path = nil
		agent.PathIndex = 0
		agent.HasTarget = false
		agent.State = component.NavUnreachable
		w.Events().Push(ecs.Event{Kind: ecs.EventPathFailed, Entity: e, Data: err})
		return
	}

	agent.Path = path
	// path[0] is where the agent already stands.
	agent.PathIndex = 1
	agent.State = component.NavMoving
	w.Events().Push(ecs.Event{Kind: ecs.EventPathFound, Entity: e, Data: len(path)})
}

func (ns *NavigationSystem) steer(w *ecs.World, e ecs.Entity, agent *component.NavAgent, t *component.Transform) {
	arrive := agent.ArriveDistance
	if arrive <= 0 {
		arrive = defaultArriveDistance
	}

	for agent.PathIndex < len(agent.Path) && t.Position.DistanceTo(agent.Path[agent.PathIndex].Point3D) <= arrive {
		agent.PathIndex++
	}
	if agent.PathIndex >= len(agent.Path) {
		agent.State = component.NavArrived
		agent.HasTarget = false
		agent.Velocity = common.Vector3{}
		w.Events().Push(ecs.Event{Kind: ecs.EventArrived, Entity: e})
		return
	}

	delta := agent.Path[agent.PathIndex].Point3D.Sub(t.Position)
	step := min(agent.Speed, delta.Length())
	agent.Velocity = delta.Normal().MulScalar(step)

	if !ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
		t.Position = t.Position.Add(agent.Velocity)
	}
}
