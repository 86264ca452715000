package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/navpath/ecs"
	"github.com/milk9111/navpath/ecs/component"
	"golang.org/x/image/font/basicfont"
)

// hud is the side panel: scenario facts, the selected agent and buttons for
// the keyboard shortcuts.
type hud struct {
	game *Game
	ui   *ebitenui.UI

	algorithm *widget.Text
	agent     *widget.Text
}

func newHUD(g *Game) *hud {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnHover := imageui.NewNineSliceColor(color.NRGBA{R: 0x44, G: 0x44, B: 0x55, A: 255})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}
	rowData := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Stretch: true})

	text := func(label string) *widget.Text {
		return widget.NewText(
			widget.TextOpts.Text(label, &face, white),
			widget.TextOpts.WidgetOpts(rowData),
		)
	}
	button := func(label string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: btnHover, Pressed: btnImg}),
			widget.ButtonOpts.Text(label, &face, btnTextColor),
			widget.ButtonOpts.WidgetOpts(rowData),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				onClick()
			}),
		)
	}

	h := &hud{game: g}
	h.algorithm = text("")
	h.agent = text("")

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(8),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 16, Bottom: 16, Left: 12, Right: 12}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(hudWidth, baseHeight),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionEnd, VerticalPosition: widget.AnchorLayoutPositionStart}),
		),
	)
	mesh := g.finder.Mesh()
	panel.AddChild(text(fmt.Sprintf("Scenario: %s", g.scenario.Name)))
	panel.AddChild(text(fmt.Sprintf("Mesh: %s (%d faces)", g.scenario.Mesh, mesh.FaceCount())))
	panel.AddChild(h.algorithm)
	panel.AddChild(button("Next algorithm", g.cycleAlgorithm))
	panel.AddChild(button("Next agent", func() { g.selectAgent(g.selected + 1) }))
	panel.AddChild(button("Copy path", g.copySelectedPath))
	panel.AddChild(button("Physics debug", func() { g.render.DebugPhysics = !g.render.DebugPhysics }))
	panel.AddChild(h.agent)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	h.ui = &ebitenui.UI{Container: root}
	h.refresh()
	return h
}

func (h *hud) refresh() {
	g := h.game
	h.algorithm.Label = fmt.Sprintf("Algorithm: %s", g.finder.Algorithm())

	if len(g.agents) == 0 {
		h.agent.Label = "No agents"
		return
	}
	e := g.agents[g.selected]
	agent, ok := ecs.Get(g.world, e, component.NavAgentComponent.Kind())
	if !ok {
		h.agent.Label = "Agent removed"
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Agent: %s (%s)\n", agent.Name, e)
	fmt.Fprintf(&b, "State: %s\n", agent.State)
	fmt.Fprintf(&b, "Waypoints: %d left of %d\n", len(agent.Remaining()), len(agent.Path))
	fmt.Fprintf(&b, "Path length: %.2f\n", agent.Path.Length())
	if agent.HasTarget {
		fmt.Fprintf(&b, "Target: %v\n", agent.Target)
	}
	if sc, ok := ecs.Get(g.world, e, component.AgentScriptComponent.Kind()); ok {
		status := "running"
		if sc.Disabled {
			status = "disabled"
		}
		fmt.Fprintf(&b, "Script: %s (%s)\n", sc.Path, status)
	}
	h.agent.Label = b.String()
}
