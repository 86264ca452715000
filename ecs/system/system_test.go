package system

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/d5/tengo/v2"
	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/ecs"
	"github.com/milk9111/navpath/ecs/component"
	"github.com/milk9111/navpath/navmesh"
	"github.com/milk9111/navpath/pathfinder"
	"github.com/milk9111/navpath/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridMesh(t *testing.T, cols, rows int, blocked ...[2]int) *navmesh.NavigationMesh {
	t.Helper()
	m, err := navmesh.NewGrid(navmesh.GridSpec{Cols: cols, Rows: rows, CellSize: 1, Blocked: blocked})
	require.NoError(t, err)
	return m
}

func gridFinder(t *testing.T, cols, rows int, blocked ...[2]int) *pathfinder.PathFinder {
	t.Helper()
	pf, err := pathfinder.New(gridMesh(t, cols, rows, blocked...), pathfinder.Options{})
	require.NoError(t, err)
	return pf
}

func spawnAgent(t *testing.T, w *ecs.World, pos common.Vector3, agent component.NavAgent) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: pos}))
	require.NoError(t, ecs.Add(w, e, component.NavAgentComponent.Kind(), &agent))
	return e
}

// eventRecorder keeps every event seen before the scheduler flushes them.
type eventRecorder struct {
	seen []ecs.Event
}

func (r *eventRecorder) Update(w *ecs.World) {
	r.seen = append(r.seen, w.Events().Peek()...)
}

func (r *eventRecorder) kinds(e ecs.Entity) []ecs.EventKind {
	var out []ecs.EventKind
	for _, evt := range r.seen {
		if evt.Entity == e {
			out = append(out, evt.Kind)
		}
	}
	return out
}

func TestNavigationSystemWalksToTarget(t *testing.T) {
	finder := gridFinder(t, 5, 1)
	w := ecs.NewWorld()
	e := spawnAgent(t, w, common.Vec3(0.5, 0.5, 0), component.NavAgent{Name: "walker", Speed: 0.5})
	agent, _ := ecs.Get(w, e, component.NavAgentComponent.Kind())
	agent.SetTarget(common.Vec3(4.5, 0.5, 0))

	rec := &eventRecorder{}
	sched := ecs.NewScheduler(NewNavigationSystem(finder), rec)

	for i := 0; i < 30 && agent.State != component.NavArrived; i++ {
		sched.Update(w)
	}

	require.Equal(t, component.NavArrived, agent.State)
	assert.False(t, agent.HasTarget)
	assert.Equal(t, common.Vector3{}, agent.Velocity)

	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	assert.InDelta(t, 4.5, tr.Position.X, 0.05)
	assert.InDelta(t, 0.5, tr.Position.Y, 0.05)
	assert.Equal(t, []ecs.EventKind{ecs.EventPathFound, ecs.EventArrived}, rec.kinds(e))
}

func TestNavigationSystemUnreachableTarget(t *testing.T) {
	cases := []struct {
		name   string
		target common.Vector3
	}{
		{"other_island", common.Vec3(4.5, 0.5, 0)},
		{"off_mesh", common.Vec3(20, 20, 0)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			finder := gridFinder(t, 5, 1, [2]int{2, 0})
			w := ecs.NewWorld()
			e := spawnAgent(t, w, common.Vec3(0.5, 0.5, 0), component.NavAgent{Speed: 0.5})
			agent, _ := ecs.Get(w, e, component.NavAgentComponent.Kind())
			agent.SetTarget(c.target)

			rec := &eventRecorder{}
			sched := ecs.NewScheduler(NewNavigationSystem(finder), rec)
			sched.Update(w)

			assert.Equal(t, component.NavUnreachable, agent.State)
			assert.False(t, agent.HasTarget)
			assert.Empty(t, agent.Path)
			assert.NoError(t, agent.LastError)
			assert.Equal(t, []ecs.EventKind{ecs.EventPathFailed}, rec.kinds(e))

			tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
			assert.Equal(t, common.Vec3(0.5, 0.5, 0), tr.Position)
		})
	}
}

func TestNavigationSystemRepathsOnInterval(t *testing.T) {
	finder := gridFinder(t, 10, 1)
	w := ecs.NewWorld()
	e := spawnAgent(t, w, common.Vec3(0.5, 0.5, 0), component.NavAgent{Speed: 0.1, RepathFrames: 3})
	agent, _ := ecs.Get(w, e, component.NavAgentComponent.Kind())
	agent.SetTarget(common.Vec3(9.5, 0.5, 0))

	rec := &eventRecorder{}
	sched := ecs.NewScheduler(NewNavigationSystem(finder), rec)
	for i := 0; i < 7; i++ {
		sched.Update(w)
	}

	found := 0
	for _, k := range rec.kinds(e) {
		if k == ecs.EventPathFound {
			found++
		}
	}
	// Planned on frame 1, then again on frames 3 and 6.
	assert.Equal(t, 3, found)
	assert.Equal(t, component.NavMoving, agent.State)
}

func TestPhysicsSystemKeepsBodiesOnMesh(t *testing.T) {
	finder := gridFinder(t, 3, 1)
	w := ecs.NewWorld()
	e := spawnAgent(t, w, common.Vec3(0.3, 0.5, 0), component.NavAgent{})
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{}))

	ps := NewPhysicsSystem(finder)
	agent, _ := ecs.Get(w, e, component.NavAgentComponent.Kind())
	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())

	agent.Velocity = common.Vec3(-1, 0, 0)
	ps.Update(w)
	assert.Equal(t, common.Vec3(0.3, 0.5, 0), tr.Position, "pushed off the mesh edge")

	body, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	require.NotNil(t, body.Body)
	assert.Equal(t, defaultAgentRadius, body.Radius)

	agent.Velocity = common.Vec3(0.5, 0, 0)
	ps.Update(w)
	assert.InDelta(t, 0.8, tr.Position.X, 1e-3)
	assert.InDelta(t, 0.5, tr.Position.Y, 1e-3)

	require.True(t, ecs.DestroyEntity(w, e))
	ps.Update(w)
	assert.Empty(t, ps.entities)
}

// standUp rotates the mesh so its floor lies in scene XZ.
func standUp(t *testing.T, finder *pathfinder.PathFinder) {
	t.Helper()
	require.NoError(t, finder.Mesh().SetSceneTransform(common.RotationAxis4(common.Vec3(1, 0, 0), -math32.Pi/2)))
}

func TestPhysicsAgentWalksRotatedMesh(t *testing.T) {
	finder := gridFinder(t, 1, 5)
	standUp(t, finder)
	mesh := finder.Mesh()

	start := mesh.PointLocalToScene(common.Vec3(0.5, 0.5, 0))
	goal := mesh.PointLocalToScene(common.Vec3(0.5, 4.5, 0))

	w := ecs.NewWorld()
	e := spawnAgent(t, w, start, component.NavAgent{Speed: 0.5})
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{}))
	agent, _ := ecs.Get(w, e, component.NavAgentComponent.Kind())
	agent.SetTarget(goal)

	sched := ecs.NewScheduler(NewNavigationSystem(finder), NewPhysicsSystem(finder))
	for i := 0; i < 60 && agent.State != component.NavArrived; i++ {
		sched.Update(w)
	}

	require.Equal(t, component.NavArrived, agent.State)
	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	assert.InDelta(t, 0, tr.Position.DistanceTo(goal), 0.05)
	_, _, ok := mesh.FindFloor(tr.Position)
	assert.True(t, ok)
}

func TestViewRotatedMesh(t *testing.T) {
	finder := gridFinder(t, 1, 5)
	standUp(t, finder)
	mesh := finder.Mesh()
	v := FitView(mesh, 800, 600, 20)

	// Drawn face on: the 1x5 floor is limited by its height on screen.
	assert.InDelta(t, 112, v.Scale, 1e-9)
	x0, y0 := v.ToScreen(mesh.PointLocalToScene(common.Vec3(0.5, 0.5, 0)))
	x1, y1 := v.ToScreen(mesh.PointLocalToScene(common.Vec3(0.5, 4.5, 0)))
	assert.InDelta(t, x0, x1, 1e-3)
	assert.InDelta(t, 4*112, y0-y1, 1e-2)

	p := v.ToScene(float64(x1), float64(y1))
	local := mesh.PointSceneToLocal(p)
	assert.InDelta(t, 0.5, local.X, 1e-4)
	assert.InDelta(t, 4.5, local.Y, 1e-4)
	assert.InDelta(t, 0, local.Z, 1e-4)
}

func TestPhysicsSystemSeparatesAgents(t *testing.T) {
	finder := gridFinder(t, 3, 3)
	w := ecs.NewWorld()
	a := spawnAgent(t, w, common.Vec3(1.45, 1.5, 0), component.NavAgent{})
	b := spawnAgent(t, w, common.Vec3(1.55, 1.5, 0), component.NavAgent{})
	for _, e := range []ecs.Entity{a, b} {
		require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Radius: 0.25}))
	}

	ps := NewPhysicsSystem(finder)
	for i := 0; i < 10; i++ {
		ps.Update(w)
	}

	ta, _ := ecs.Get(w, a, component.TransformComponent.Kind())
	tb, _ := ecs.Get(w, b, component.TransformComponent.Kind())
	assert.Greater(t, ta.Position.DistanceTo(tb.Position), float32(0.2))
	for _, p := range []common.Vector3{ta.Position, tb.Position} {
		_, _, ok := finder.Mesh().FindFloor(p)
		assert.True(t, ok, "agent at %v left the mesh", p)
	}
}

const testAgentScript = `
on_start := func(engine, state) {
	state.count = 0
	engine.set_target(2.5, 0.5, 0)
}

update := func(engine, state) {
	state.count = state.count + 1
	state.frame = engine.frame()
}

on_arrived := func(engine, state) {
	state.arrived = true
	engine.clear_target()
}

on_failed := func(engine, state) {
	state.failed = true
}
`

func scriptedAgent(t *testing.T, w *ecs.World, ss *ScriptSystem, src string) (ecs.Entity, *agentScriptRuntime) {
	t.Helper()
	e := spawnAgent(t, w, common.Vec3(0.5, 0.5, 0), component.NavAgent{})
	require.NoError(t, ecs.Add(w, e, component.AgentScriptComponent.Kind(), &component.AgentScript{Path: "inline.tengo"}))

	rt, err := compileAgentScript("inline.tengo", []byte(src))
	require.NoError(t, err)
	ss.runtimes[e] = rt
	return e, rt
}

func TestScriptSystemLifecycle(t *testing.T) {
	finder := gridFinder(t, 3, 1)
	w := ecs.NewWorld()
	ss := NewScriptSystem(finder, 1)
	e, rt := scriptedAgent(t, w, ss, testAgentScript)
	agent, _ := ecs.Get(w, e, component.NavAgentComponent.Kind())

	ss.Update(w)
	assert.True(t, agent.HasTarget)
	assert.True(t, agent.NeedsPath)
	assert.Equal(t, common.Vec3(2.5, 0.5, 0), agent.Target)
	assert.Equal(t, &tengo.Int{Value: 1}, rt.stateData.Value["count"])

	ss.Update(w)
	assert.Equal(t, &tengo.Int{Value: 2}, rt.stateData.Value["count"])
	assert.Equal(t, &tengo.Int{Value: 2}, rt.stateData.Value["frame"])

	w.Events().Push(ecs.Event{Kind: ecs.EventArrived, Entity: e})
	ss.Update(w)
	assert.Equal(t, tengo.TrueValue, rt.stateData.Value["arrived"])
	assert.False(t, agent.HasTarget)
	assert.NotContains(t, rt.stateData.Value, "failed")

	w.Events().Push(ecs.Event{Kind: ecs.EventPathFailed, Entity: e})
	ss.Update(w)
	assert.Equal(t, tengo.TrueValue, rt.stateData.Value["failed"])
}

func TestScriptSystemDisablesFailingScript(t *testing.T) {
	finder := gridFinder(t, 3, 1)
	w := ecs.NewWorld()
	ss := NewScriptSystem(finder, 1)
	e, _ := scriptedAgent(t, w, ss, `
on_start := func(engine, state) { state.zero = 0 }
update := func(engine, state) { state.x = 1 / state.zero }
on_arrived := func(engine, state) {}
on_failed := func(engine, state) {}
`)

	ss.Update(w)
	sc, _ := ecs.Get(w, e, component.AgentScriptComponent.Kind())
	assert.True(t, sc.Disabled)
}

func TestCompileAgentScript(t *testing.T) {
	_, err := compileAgentScript("broken.tengo", []byte(`update := func(engine, state) {}`))
	assert.Error(t, err, "missing lifecycle functions")

	for _, name := range []string{"patrol.tengo", "wander.tengo"} {
		t.Run(name, func(t *testing.T) {
			src, err := prefabs.LoadScript(name)
			require.NoError(t, err)
			_, err = compileAgentScript(name, src)
			assert.NoError(t, err)
		})
	}
}

func TestScriptSystemRandomPointIsOnMesh(t *testing.T) {
	finder := gridFinder(t, 4, 4)
	w := ecs.NewWorld()
	ss := NewScriptSystem(finder, 7)
	e, _ := scriptedAgent(t, w, ss, `
on_start := func(engine, state) {
	p := engine.random_point()
	engine.set_target(p[0], p[1], p[2])
}
update := func(engine, state) {}
on_arrived := func(engine, state) {}
on_failed := func(engine, state) {}
`)

	ss.Update(w)
	agent, _ := ecs.Get(w, e, component.NavAgentComponent.Kind())
	require.True(t, agent.HasTarget)
	_, _, ok := finder.Mesh().FindFloor(agent.Target)
	assert.True(t, ok)
}

func TestScriptSystemReloadsChangedScript(t *testing.T) {
	finder := gridFinder(t, 12, 8)
	w := ecs.NewWorld()
	ss := NewScriptSystem(finder, 1)
	e := spawnAgent(t, w, common.Vec3(0.5, 0.5, 0), component.NavAgent{})
	require.NoError(t, ecs.Add(w, e, component.AgentScriptComponent.Kind(), &component.AgentScript{Path: "patrol.tengo", Disabled: true}))

	ss.Update(w)
	assert.Empty(t, ss.runtimes, "disabled scripts do not run")

	w.Events().Push(ecs.Event{Kind: ecs.EventScriptChanged, Data: "prefabs/scripts/patrol.tengo"})
	ss.Update(w)

	sc, _ := ecs.Get(w, e, component.AgentScriptComponent.Kind())
	assert.False(t, sc.Disabled)
	require.Contains(t, ss.runtimes, e)
	assert.True(t, ss.runtimes[e].started)

	agent, _ := ecs.Get(w, e, component.NavAgentComponent.Kind())
	assert.Equal(t, common.Vec3(2.5, 7.5, 0), agent.Target)
}

func TestMeshReloadSystem(t *testing.T) {
	finder := gridFinder(t, 2, 1)
	first := finder.Mesh()
	require.NoError(t, first.SetSceneTransform(common.Translation4(common.Vec3(1, 0, 0))))

	replacement := gridMesh(t, 4, 1)
	loadErr := error(nil)
	var loaded []string
	load := func(name string) (*navmesh.NavigationMesh, error) {
		loaded = append(loaded, name)
		if loadErr != nil {
			return nil, loadErr
		}
		return replacement, nil
	}

	changes := make(chan string, 4)
	ms := NewMeshReloadSystem(finder, "test.yaml", changes, load)

	w := ecs.NewWorld()
	moving := spawnAgent(t, w, common.Vec3(1.5, 0.5, 0), component.NavAgent{})
	agent, _ := ecs.Get(w, moving, component.NavAgentComponent.Kind())
	agent.SetTarget(common.Vec3(2.5, 0.5, 0))
	agent.NeedsPath = false
	idle := spawnAgent(t, w, common.Vec3(1.5, 0.5, 0), component.NavAgent{})

	t.Run("unrelated_file", func(t *testing.T) {
		changes <- "prefabs/scenarios/demo.yaml"
		ms.Update(w)
		assert.Empty(t, loaded)
		assert.Empty(t, w.Events().Drain())
	})

	t.Run("script", func(t *testing.T) {
		changes <- "prefabs/scripts/patrol.tengo"
		ms.Update(w)
		events := w.Events().Drain()
		require.Len(t, events, 1)
		assert.Equal(t, ecs.EventScriptChanged, events[0].Kind)
		assert.Equal(t, "prefabs/scripts/patrol.tengo", events[0].Data)
	})

	t.Run("load_error", func(t *testing.T) {
		loadErr = errors.New("boom")
		changes <- "prefabs/meshes/test.yaml"
		ms.Update(w)
		assert.Same(t, first, finder.Mesh())
		assert.Empty(t, w.Events().Drain())
		loadErr = nil
	})

	t.Run("mesh", func(t *testing.T) {
		changes <- "prefabs/meshes/test.yaml"
		ms.Update(w)
		assert.Equal(t, "meshes/test.yaml", loaded[len(loaded)-1])
		assert.Same(t, replacement, finder.Mesh())
		assert.Equal(t, first.SceneTransform(), replacement.SceneTransform())

		events := w.Events().Drain()
		require.Len(t, events, 1)
		assert.Equal(t, ecs.EventMeshReloaded, events[0].Kind)

		assert.True(t, agent.NeedsPath)
		idleAgent, _ := ecs.Get(w, idle, component.NavAgentComponent.Kind())
		assert.False(t, idleAgent.NeedsPath)
	})

	t.Run("closed_channel", func(t *testing.T) {
		close(changes)
		ms.Update(w)
		assert.Nil(t, ms.changes)
	})
}

func TestViewRoundTrip(t *testing.T) {
	mesh := gridMesh(t, 4, 2)
	v := FitView(mesh, 800, 600, 20)

	assert.InDelta(t, 190, v.Scale, 1e-9)
	x, y := v.ToScreen(common.Vec3(0, 0, 0))
	assert.InDelta(t, 20, x, 1e-3)
	assert.InDelta(t, 490, y, 1e-3)
	x, y = v.ToScreen(common.Vec3(4, 2, 0))
	assert.InDelta(t, 780, x, 1e-3)
	assert.InDelta(t, 110, y, 1e-3)

	p := v.ToScene(780, 110)
	assert.InDelta(t, 4, p.X, 1e-4)
	assert.InDelta(t, 2, p.Y, 1e-4)

	empty := FitView(nil, 800, 600, 20)
	assert.Equal(t, 1.0, empty.Scale)
}
