package entity

import (
	"fmt"
	"strings"

	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/ecs"
	"github.com/milk9111/navpath/ecs/component"
	"github.com/milk9111/navpath/prefabs"
)

const (
	defaultAgentSpeed  float32 = 0.05
	defaultAgentRadius float32 = 0.25
)

// NewAgent creates a navigating agent from its scenario entry. Agents with
// a Target start planning on the first frame; agents with a Script get
// their targets from it.
func NewAgent(w *ecs.World, spec prefabs.AgentSpec) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)

	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		Position: common.Vec3FromArray(spec.Position),
	}); err != nil {
		return 0, fmt.Errorf("agent %s: add transform: %w", spec.Name, err)
	}

	agent := &component.NavAgent{
		Name:         spec.Name,
		Speed:        spec.Speed,
		Radius:       spec.Radius,
		RepathFrames: spec.RepathFrames,
	}
	if agent.Speed <= 0 {
		agent.Speed = defaultAgentSpeed
	}
	if agent.Radius <= 0 {
		agent.Radius = defaultAgentRadius
	}
	if agent.Name == "" {
		agent.Name = e.String()
	}
	if spec.Target != nil {
		agent.SetTarget(common.Vec3FromArray(*spec.Target))
	}
	if err := ecs.Add(w, e, component.NavAgentComponent.Kind(), agent); err != nil {
		return 0, fmt.Errorf("agent %s: add nav agent: %w", spec.Name, err)
	}

	if spec.Color != nil {
		if err := ecs.Add(w, e, component.AppearanceComponent.Kind(), &component.Appearance{Color: spec.Color.Color}); err != nil {
			return 0, fmt.Errorf("agent %s: add appearance: %w", spec.Name, err)
		}
	}

	if spec.Physics {
		if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
			Radius: float64(agent.Radius),
			Mass:   1,
		}); err != nil {
			return 0, fmt.Errorf("agent %s: add physics body: %w", spec.Name, err)
		}
	}

	if strings.TrimSpace(spec.Script) != "" {
		if err := ecs.Add(w, e, component.AgentScriptComponent.Kind(), &component.AgentScript{Path: spec.Script}); err != nil {
			return 0, fmt.Errorf("agent %s: add script: %w", spec.Name, err)
		}
	}

	return e, nil
}

// NewScenarioAgents spawns every agent of a scenario, stopping at the first
// failure.
func NewScenarioAgents(w *ecs.World, spec prefabs.ScenarioSpec) ([]ecs.Entity, error) {
	out := make([]ecs.Entity, 0, len(spec.Agents))
	for _, a := range spec.Agents {
		e, err := NewAgent(w, a)
		if err != nil {
			return out, fmt.Errorf("scenario %s: %w", spec.Name, err)
		}
		out = append(out, e)
	}
	return out, nil
}
