package component

import "github.com/milk9111/navpath/common"

// Transform places an entity in scene space.
type Transform struct {
	Position common.Vector3
}

var TransformComponent = NewComponent[Transform]("transform")
