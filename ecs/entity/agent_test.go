package entity

import (
	"image/color"
	"testing"

	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/ecs"
	"github.com/milk9111/navpath/ecs/component"
	"github.com/milk9111/navpath/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAgent(t *testing.T) {
	target := [3]float32{4, 5, 0}
	cases := []struct {
		name       string
		spec       prefabs.AgentSpec
		hasTarget  bool
		physics    bool
		script     bool
		appearance bool
	}{
		{"defaults", prefabs.AgentSpec{Name: "bare"}, false, false, false, false},
		{"target", prefabs.AgentSpec{Name: "walker", Target: &target, Speed: 0.2}, true, false, false, false},
		{"physics_and_script", prefabs.AgentSpec{Name: "patroller", Physics: true, Script: "patrol.tengo"}, false, true, true, false},
		{"colored", prefabs.AgentSpec{Color: &prefabs.Color{Color: color.NRGBA{R: 1, A: 255}}}, false, false, false, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			e, err := NewAgent(w, c.spec)
			require.NoError(t, err)

			agent, ok := ecs.Get(w, e, component.NavAgentComponent.Kind())
			require.True(t, ok)
			assert.Equal(t, c.hasTarget, agent.HasTarget)
			assert.Equal(t, c.hasTarget, agent.NeedsPath)
			assert.Greater(t, agent.Speed, float32(0))
			assert.Equal(t, defaultAgentRadius, agent.Radius)
			assert.NotEmpty(t, agent.Name)
			if c.hasTarget {
				assert.Equal(t, common.Vec3(4, 5, 0), agent.Target)
				assert.Equal(t, float32(0.2), agent.Speed)
			}

			assert.True(t, ecs.Has(w, e, component.TransformComponent.Kind()))
			assert.Equal(t, c.physics, ecs.Has(w, e, component.PhysicsBodyComponent.Kind()))
			assert.Equal(t, c.script, ecs.Has(w, e, component.AgentScriptComponent.Kind()))
			assert.Equal(t, c.appearance, ecs.Has(w, e, component.AppearanceComponent.Kind()))
		})
	}
}

func TestNewScenarioAgents(t *testing.T) {
	spec, err := prefabs.LoadScenario("demo")
	require.NoError(t, err)

	w := ecs.NewWorld()
	ents, err := NewScenarioAgents(w, spec)
	require.NoError(t, err)
	require.Len(t, ents, len(spec.Agents))

	for i, e := range ents {
		agent, ok := ecs.Get(w, e, component.NavAgentComponent.Kind())
		require.True(t, ok)
		assert.Equal(t, spec.Agents[i].Name, agent.Name)

		tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		assert.Equal(t, common.Vec3FromArray(spec.Agents[i].Position), tr.Position)
	}
}
