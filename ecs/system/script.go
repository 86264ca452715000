package system

import (
	"fmt"
	"log"
	"math/rand/v2"
	"path"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/ecs"
	"github.com/milk9111/navpath/ecs/component"
	"github.com/milk9111/navpath/navmesh"
	"github.com/milk9111/navpath/pathfinder"
	"github.com/milk9111/navpath/prefabs"
)

// Agent scripts define on_start, update, on_arrived and on_failed, each
// taking (engine, state). state is a map private to the agent that survives
// between calls.
const agentLifecycleDispatchScript = `
if __phase == "start" {
	on_start(__engine, __state)
} else if __phase == "update" {
	update(__engine, __state)
} else if __phase == "arrived" {
	on_arrived(__engine, __state)
} else if __phase == "failed" {
	on_failed(__engine, __state)
}
`

// ScriptSystem runs tengo behaviour scripts that pick targets for agents.
type ScriptSystem struct {
	finder   *pathfinder.PathFinder
	runtimes map[ecs.Entity]*agentScriptRuntime
	rng      *rand.Rand
	frame    int
}

type agentScriptRuntime struct {
	scriptPath string
	compiled   *tengo.Compiled
	stateData  *tengo.Map
	started    bool
}

func NewScriptSystem(finder *pathfinder.PathFinder, seed uint64) *ScriptSystem {
	return &ScriptSystem{
		finder:   finder,
		runtimes: make(map[ecs.Entity]*agentScriptRuntime),
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (ss *ScriptSystem) Update(w *ecs.World) {
	if ss == nil || w == nil {
		return
	}
	ss.frame++

	for _, evt := range w.Events().Peek() {
		if evt.Kind != ecs.EventScriptChanged {
			continue
		}
		if changed, ok := evt.Data.(string); ok {
			ss.invalidate(w, changed)
		}
	}
	for e := range ss.runtimes {
		if !ecs.Has(w, e, component.AgentScriptComponent.Kind()) {
			delete(ss.runtimes, e)
		}
	}

	ecs.ForEach3(w, component.AgentScriptComponent.Kind(), component.NavAgentComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, sc *component.AgentScript, agent *component.NavAgent, t *component.Transform) {
		if sc.Disabled {
			return
		}

		rt, err := ss.runtime(e, sc.Path)
		if err != nil {
			log.Printf("script: entity=%s load %s: %v", e, sc.Path, err)
			sc.Disabled = true
			return
		}

		engine := ss.buildEngine(agent, t)
		phases := make([]string, 0, 3)
		if !rt.started {
			phases = append(phases, "start")
			rt.started = true
		}
		if len(w.Events().For(e, ecs.EventArrived)) > 0 {
			phases = append(phases, "arrived")
		}
		if len(w.Events().For(e, ecs.EventPathFailed)) > 0 {
			phases = append(phases, "failed")
		}
		phases = append(phases, "update")

		for _, phase := range phases {
			if err := rt.runPhase(phase, engine); err != nil {
				log.Printf("script: entity=%s %s %s: %v", e, sc.Path, phase, err)
				sc.Disabled = true
				return
			}
		}
	})
}

// invalidate drops compiled scripts whose file changed and re-enables
// agents that were stopped by an error in them.
func (ss *ScriptSystem) invalidate(w *ecs.World, changed string) {
	name := path.Base(strings.ReplaceAll(changed, "\\", "/"))
	for e, rt := range ss.runtimes {
		if path.Base(rt.scriptPath) == name {
			delete(ss.runtimes, e)
		}
	}
	ecs.ForEach(w, component.AgentScriptComponent.Kind(), func(e ecs.Entity, sc *component.AgentScript) {
		if path.Base(sc.Path) == name {
			sc.Disabled = false
		}
	})
	log.Printf("script: reloaded %s", name)
}

func (ss *ScriptSystem) runtime(e ecs.Entity, scriptPath string) (*agentScriptRuntime, error) {
	if rt, ok := ss.runtimes[e]; ok && rt.scriptPath == scriptPath {
		return rt, nil
	}
	if strings.TrimSpace(scriptPath) == "" {
		return nil, fmt.Errorf("empty script path")
	}

	scriptBytes, err := prefabs.LoadScript(scriptPath)
	if err != nil {
		return nil, err
	}
	rt, err := compileAgentScript(scriptPath, scriptBytes)
	if err != nil {
		return nil, err
	}
	ss.runtimes[e] = rt
	return rt, nil
}

func compileAgentScript(scriptPath string, src []byte) (*agentScriptRuntime, error) {
	script := tengo.NewScript([]byte(string(src) + "\n" + agentLifecycleDispatchScript))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}
	return &agentScriptRuntime{
		scriptPath: scriptPath,
		compiled:   compiled,
		stateData:  &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

func (rt *agentScriptRuntime) runPhase(phase string, engine *tengo.ImmutableMap) error {
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func (ss *ScriptSystem) buildEngine(agent *component.NavAgent, t *component.Transform) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vectorObject(t.Position), nil
	}}

	values["target"] = &tengo.UserFunction{Name: "target", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if !agent.HasTarget {
			return tengo.UndefinedValue, nil
		}
		return vectorObject(agent.Target), nil
	}}

	values["set_target"] = &tengo.UserFunction{Name: "set_target", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		var coords [3]float32
		for i := 0; i < len(args) && i < 3; i++ {
			v, ok := tengo.ToFloat64(args[i])
			if !ok {
				return tengo.FalseValue, nil
			}
			coords[i] = float32(v)
		}
		agent.SetTarget(common.Vec3FromArray(coords))
		return tengo.TrueValue, nil
	}}

	values["clear_target"] = &tengo.UserFunction{Name: "clear_target", Value: func(args ...tengo.Object) (tengo.Object, error) {
		agent.ClearTarget()
		return tengo.TrueValue, nil
	}}

	values["state"] = &tengo.UserFunction{Name: "state", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: agent.State.String()}, nil
	}}

	values["path_length"] = &tengo.UserFunction{Name: "path_length", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: float64(agent.Remaining().Length())}, nil
	}}

	values["frame"] = &tengo.UserFunction{Name: "frame", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(ss.frame)}, nil
	}}

	values["random_point"] = &tengo.UserFunction{Name: "random_point", Value: func(args ...tengo.Object) (tengo.Object, error) {
		mesh := ss.finder.Mesh()
		n := int(mesh.FaceCount())
		if n == 0 {
			return tengo.UndefinedValue, nil
		}
		face := mesh.Face(navmesh.FaceIndex(ss.rng.IntN(n)))
		return vectorObject(mesh.PointLocalToScene(face.Center)), nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		log.Printf("script: %s: %s", agent.Name, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vectorObject(v common.Vector3) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{
		&tengo.Float{Value: float64(v.X)},
		&tengo.Float{Value: float64(v.Y)},
		&tengo.Float{Value: float64(v.Z)},
	}}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
