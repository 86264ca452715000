package component

import "image/color"

// Appearance is how the viewer draws an agent.
type Appearance struct {
	Color color.Color
}

var AppearanceComponent = NewComponent[Appearance]("appearance")
