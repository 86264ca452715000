package component

import "github.com/jakecoffman/cp"

// PhysicsBody stores Chipmunk2D runtime data for an agent. The body lives in
// the scene's XY plane; the physics system creates it on first sight.
type PhysicsBody struct {
	Body     *cp.Body
	Shape    *cp.Shape
	Radius   float64
	Mass     float64
	Friction float64
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]("physics_body")
