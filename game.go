package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/ecs"
	"github.com/milk9111/navpath/ecs/component"
	"github.com/milk9111/navpath/ecs/entity"
	"github.com/milk9111/navpath/ecs/system"
	"github.com/milk9111/navpath/navmesh"
	"github.com/milk9111/navpath/pathfinder"
	"github.com/milk9111/navpath/prefabs"
	"golang.design/x/clipboard"
)

const (
	baseWidth  = 1280
	baseHeight = 720
	hudWidth   = 260
	viewMargin = 32
	// pickHeight lifts clicked points above the floor so FindFloor can
	// drop them onto sloped meshes.
	pickHeight float32 = 0.5
)

var backgroundColor = color.NRGBA{R: 0x16, G: 0x1a, B: 0x22, A: 0xff}

type GameOptions struct {
	Scenario  string
	Algorithm string
	Watch     bool
	Debug     bool
	Seed      uint64
}

type Game struct {
	frames int

	scenario  prefabs.ScenarioSpec
	finder    *pathfinder.PathFinder
	world     *ecs.World
	scheduler *ecs.Scheduler
	render    *system.RenderSystem
	watcher   *prefabs.Watcher
	// viewMesh is the mesh the view was fitted to; a reload refits it.
	viewMesh *navmesh.NavigationMesh

	agents   []ecs.Entity
	selected int

	preview preview
	ui      *ebitenui.UI
	hud     *hud
	canCopy bool
	status  string
}

func NewGame(opts GameOptions) (*Game, error) {
	spec, err := prefabs.LoadScenario(opts.Scenario)
	if err != nil {
		return nil, err
	}
	if opts.Algorithm != "" {
		if spec.Algorithm, err = pathfinder.ParseAlgorithm(opts.Algorithm); err != nil {
			return nil, err
		}
	}

	mesh, err := spec.BuildMesh()
	if err != nil {
		return nil, err
	}
	finder, err := pathfinder.New(mesh, pathfinder.Options{
		Algorithm:     spec.Algorithm,
		MaxIterations: spec.MaxIterations,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", spec.Name, err)
	}

	g := &Game{
		scenario: spec,
		finder:   finder,
		world:    ecs.NewWorld(),
	}

	var changes <-chan string
	if opts.Watch {
		w, err := prefabs.NewWatcher(prefabs.DiskPath(string(prefabs.Meshes)), prefabs.DiskPath(string(prefabs.Scripts)))
		if err != nil {
			log.Printf("game: file watching disabled: %v", err)
		} else {
			g.watcher = w
			changes = w.Events
		}
	}

	physics := system.NewPhysicsSystem(finder)
	g.render = system.NewRenderSystem(finder, physics)
	g.fitView()
	g.render.DebugPhysics = opts.Debug

	// Scripts run last so they see the arrival and failure events of the
	// frame; their new targets are planned on the next one.
	g.scheduler = ecs.NewScheduler(
		system.NewMeshReloadSystem(finder, spec.Mesh, changes, nil),
		system.NewNavigationSystem(finder),
		physics,
		system.NewScriptSystem(finder, opts.Seed),
		g.render,
	)

	if g.agents, err = entity.NewScenarioAgents(g.world, spec); err != nil {
		return nil, err
	}
	g.selectAgent(0)

	if err := clipboard.Init(); err != nil {
		log.Printf("game: clipboard unavailable: %v", err)
	} else {
		g.canCopy = true
	}

	g.hud = newHUD(g)
	g.ui = g.hud.ui
	log.Printf("game: scenario=%s mesh=%s agents=%d algorithm=%s", spec.Name, spec.Mesh, len(g.agents), finder.Algorithm())
	return g, nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	g.frames++

	g.ui.Update()
	g.handleInput()
	g.drainWatchErrors()

	g.scheduler.Update(g.world)
	if g.finder.Mesh() != g.viewMesh {
		g.fitView()
	}
	g.preview.update(1.0 / float32(ebiten.TPS()))
	g.hud.refresh()
	return nil
}

func (g *Game) handleInput() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.selectAgent(g.selected + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyA):
		g.cycleAlgorithm()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copySelectedPath()
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		g.render.DebugPhysics = !g.render.DebugPhysics
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.preview.clear()
		g.render.Preview = nil
	}

	x, y := ebiten.CursorPosition()
	if x >= baseWidth-hudWidth {
		return
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.targetSelected(x, y)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.previewAt(x, y)
	}
}

func (g *Game) fitView() {
	g.viewMesh = g.finder.Mesh()
	g.render.View = system.FitView(g.viewMesh, baseWidth-hudWidth, baseHeight, viewMargin)
}

// pick drops a screen position onto the mesh.
func (g *Game) pick(x, y int) (common.Vector3, bool) {
	p := g.render.View.ToScene(float64(x), float64(y))
	mesh := g.finder.Mesh()
	up := mesh.SceneTransform().MulDirection(mesh.GravityVector()).Normal().MulScalar(-pickHeight)
	floor, _, ok := mesh.FindFloor(p.Add(up))
	return floor, ok
}

func (g *Game) targetSelected(x, y int) {
	agent, ok := g.selectedAgent()
	if !ok {
		return
	}
	p, ok := g.pick(x, y)
	if !ok {
		g.status = "no floor under cursor"
		return
	}
	agent.SetTarget(p)
	g.status = fmt.Sprintf("%s -> %v", agent.Name, p)
}

func (g *Game) previewAt(x, y int) {
	p, ok := g.pick(x, y)
	if !ok {
		g.status = "no floor under cursor"
		return
	}
	if !g.preview.hasFrom {
		g.preview.setFrom(p)
		g.render.Preview = nil
		g.status = fmt.Sprintf("preview from %v", p)
		return
	}

	path, err := g.finder.FindPath(g.preview.from, p)
	switch {
	case err != nil:
		g.status = fmt.Sprintf("preview failed: %v", err)
	case len(path) == 0:
		g.status = "preview: no path"
	default:
		g.status = fmt.Sprintf("preview: %d waypoints, length %.2f", len(path), path.Length())
	}
	g.preview.setPath(path)
	g.render.Preview = path
}

func (g *Game) cycleAlgorithm() {
	next := g.finder.Algorithm().Next()
	if err := g.finder.SetAlgorithm(next); err != nil {
		g.status = err.Error()
		return
	}
	ecs.ForEach(g.world, component.NavAgentComponent.Kind(), func(e ecs.Entity, agent *component.NavAgent) {
		if agent.HasTarget {
			agent.NeedsPath = true
		}
	})
	g.status = "algorithm " + next.String()
}

func (g *Game) selectAgent(i int) {
	if len(g.agents) == 0 {
		g.render.Selected = 0
		return
	}
	g.selected = ((i % len(g.agents)) + len(g.agents)) % len(g.agents)
	g.render.Selected = g.agents[g.selected]
}

func (g *Game) selectedAgent() (*component.NavAgent, bool) {
	if len(g.agents) == 0 {
		return nil, false
	}
	return ecs.Get(g.world, g.agents[g.selected], component.NavAgentComponent.Kind())
}

func (g *Game) copySelectedPath() {
	agent, ok := g.selectedAgent()
	if !ok {
		return
	}
	if !g.canCopy {
		g.status = "clipboard unavailable"
		return
	}
	data, err := formatPath(agent.Path)
	if err != nil {
		g.status = err.Error()
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	g.status = fmt.Sprintf("copied %d waypoints of %s", len(agent.Path), agent.Name)
}

func (g *Game) drainWatchErrors() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case err, ok := <-g.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("game: watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	g.scheduler.Draw(g.world, screen)
	g.preview.draw(screen, g.render.View)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.2f  %s\nLMB target  RMB preview  Tab select  A algorithm  C copy  D physics", ebiten.ActualFPS(), g.status))
	g.ui.Draw(screen)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
