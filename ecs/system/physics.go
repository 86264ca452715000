package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/ecs"
	"github.com/milk9111/navpath/ecs/component"
	"github.com/milk9111/navpath/navmesh"
	"github.com/milk9111/navpath/pathfinder"
)

const (
	collisionTypeAgent cp.CollisionType = iota + 1
)

const (
	defaultAgentRadius = 0.25
	// floorSearchHeight is how far above a moved body the floor search
	// starts, so agents can follow gently sloped meshes.
	floorSearchHeight float32 = 0.5
)

// PhysicsSystem keeps agents with a PhysicsBody apart. Bodies live in the
// mesh floor plane, so a rotated scene transform does not flatten their
// motion; after each step the result is dropped back onto the mesh floor,
// and a body pushed off the mesh is put back where it was.
type PhysicsSystem struct {
	space  *cp.Space
	finder *pathfinder.PathFinder

	entities map[ecs.Entity]*bodyInfo
}

type bodyInfo struct {
	body  *cp.Body
	shape *cp.Shape
}

func NewPhysicsSystem(finder *pathfinder.PathFinder) *PhysicsSystem {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})
	return &PhysicsSystem{
		space:    space,
		finder:   finder,
		entities: make(map[ecs.Entity]*bodyInfo),
	}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}

	ps.cleanupEntities(w)
	ps.syncEntities(w)
	ps.space.Step(1.0)
	ps.syncTransforms(w)
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	mesh := ps.finder.Mesh()
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, t *component.Transform) {
		info := ps.entities[e]
		if info == nil {
			info = ps.createBodyInfo(floorPoint(mesh, t.Position), bodyComp)
			ps.entities[e] = info
			bodyComp.Body = info.body
			bodyComp.Shape = info.shape
		}

		var vel common.Vector3
		if agent, ok := ecs.Get(w, e, component.NavAgentComponent.Kind()); ok {
			vel = agent.Velocity
		}
		v := mesh.DirectionSceneToFloor(vel)
		info.body.SetVelocity(float64(v.X), float64(v.Y))
		info.body.SetAngularVelocity(0)
	})
}

func (ps *PhysicsSystem) createBodyInfo(pos cp.Vector, bodyComp *component.PhysicsBody) *bodyInfo {
	radius := bodyComp.Radius
	if radius <= 0 {
		radius = defaultAgentRadius
		bodyComp.Radius = radius
	}
	mass := bodyComp.Mass
	if mass <= 0 {
		mass = 1
	}

	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	body.SetPosition(pos)

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetFriction(bodyComp.Friction)
	shape.SetCollisionType(collisionTypeAgent)

	ps.space.AddBody(body)
	ps.space.AddShape(shape)
	return &bodyInfo{body: body, shape: shape}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	mesh := ps.finder.Mesh()
	up := mesh.SceneTransform().MulDirection(mesh.GravityVector()).Normal().MulScalar(-floorSearchHeight)

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, t *component.Transform) {
		info := ps.entities[e]
		if info == nil {
			return
		}
		pos := info.body.Position()
		height := mesh.Height(mesh.PointSceneToLocal(t.Position))
		moved := mesh.PointFloorToScene(common.Vec2(float32(pos.X), float32(pos.Y)), height)

		floor, _, ok := mesh.FindFloor(moved.Add(up))
		if !ok {
			info.body.SetPosition(floorPoint(mesh, t.Position))
			info.body.SetVelocity(0, 0)
			return
		}
		t.Position = floor
	})
}

// floorPoint is p in the body space: mesh floor-plane coordinates.
func floorPoint(mesh *navmesh.NavigationMesh, p common.Vector3) cp.Vector {
	q, _ := mesh.PointSceneToFloor(p)
	return cp.Vector{X: float64(q.X), Y: float64(q.Y)}
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if ecs.IsAlive(w, e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			continue
		}
		ps.space.RemoveShape(info.shape)
		ps.space.RemoveBody(info.body)
		delete(ps.entities, e)
	}
}
