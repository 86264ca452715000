package system

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/navpath/common"
	"github.com/milk9111/navpath/ecs"
	"github.com/milk9111/navpath/ecs/component"
	"github.com/milk9111/navpath/navmesh"
	"github.com/milk9111/navpath/pathfinder"
	"golang.org/x/image/colornames"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
)

var (
	meshEdgeColor     = color.NRGBA{R: 90, G: 100, B: 120, A: 255}
	meshBoundaryColor = colornames.Whitesmoke
	meshCenterColor   = color.NRGBA{R: 70, G: 80, B: 100, A: 255}
	selectedColor     = colornames.Yellow
	targetColor       = colornames.Red
	defaultAgentColor = colornames.Lightgreen
)

// View maps the mesh floor plane onto the screen. Scene points are taken
// into mesh-local floor coordinates first, so a rotated scene transform is
// drawn face on. Floor Y points up, screen Y down.
type View struct {
	Scale   float64
	OffsetX float64
	OffsetY float64

	mesh *navmesh.NavigationMesh
	// top is the local height of the highest vertex; ToScene returns points
	// at that height so a drop along gravity finds the floor below.
	top float32
}

// FitView scales mesh so its floor-plane bounds fill a width x height
// screen with margin pixels to spare on each side.
func FitView(mesh *navmesh.NavigationMesh, width, height int, margin float64) View {
	lo, hi, top, ok := floorBounds(mesh)
	if !ok {
		return View{Scale: 1, OffsetY: float64(height)}
	}
	spanX := math.Max(float64(hi.X-lo.X), 1e-3)
	spanY := math.Max(float64(hi.Y-lo.Y), 1e-3)
	scale := math.Min((float64(width)-2*margin)/spanX, (float64(height)-2*margin)/spanY)
	if scale <= 0 {
		scale = 1
	}
	// Centre the mesh in whichever direction has slack.
	padX := (float64(width) - spanX*scale) / 2
	padY := (float64(height) - spanY*scale) / 2
	return View{
		Scale:   scale,
		OffsetX: padX - float64(lo.X)*scale,
		OffsetY: float64(height) - padY + float64(lo.Y)*scale,
		mesh:    mesh,
		top:     top,
	}
}

func floorBounds(mesh *navmesh.NavigationMesh) (lo, hi common.Vector2, top float32, ok bool) {
	if mesh == nil || mesh.VertexCount() == 0 {
		return lo, hi, 0, false
	}
	// Up is against gravity along the height axis.
	down := mesh.Height(mesh.GravityVector())
	for i := uint32(0); i < mesh.VertexCount(); i++ {
		v := *mesh.Vertex(navmesh.VertexIndex(i))
		q, h := mesh.Project2D(v), mesh.Height(v)
		if i == 0 {
			lo, hi, top = q, q, h
			continue
		}
		lo = common.Vec2(min(lo.X, q.X), min(lo.Y, q.Y))
		hi = common.Vec2(max(hi.X, q.X), max(hi.Y, q.Y))
		if (down < 0 && h > top) || (down > 0 && h < top) {
			top = h
		}
	}
	return lo, hi, top, true
}

func (v View) ToScreen(p common.Vector3) (float32, float32) {
	if v.mesh == nil {
		return v.FloorToScreen(common.Vec2(p.X, p.Y))
	}
	q, _ := v.mesh.PointSceneToFloor(p)
	return v.FloorToScreen(q)
}

// FloorToScreen maps mesh floor-plane coordinates, the space physics
// bodies live in, to the screen.
func (v View) FloorToScreen(q common.Vector2) (float32, float32) {
	return float32(v.OffsetX + float64(q.X)*v.Scale), float32(v.OffsetY - float64(q.Y)*v.Scale)
}

// ToScene inverts ToScreen. The result sits at the top of the mesh; callers
// drop it onto the floor with FindFloor.
func (v View) ToScene(x, y float64) common.Vector3 {
	if v.Scale == 0 {
		return common.Vector3{}
	}
	q := common.Vec2(float32((x-v.OffsetX)/v.Scale), float32((v.OffsetY-y)/v.Scale))
	if v.mesh == nil {
		return common.Vec3(q.X, q.Y, 0)
	}
	return v.mesh.PointFloorToScene(q, v.top)
}

// RenderSystem draws the mesh, every agent and its remaining path.
type RenderSystem struct {
	finder  *pathfinder.PathFinder
	physics *PhysicsSystem

	View     View
	Selected ecs.Entity
	// Preview is an extra path drawn on top, the viewer's click query.
	Preview      pathfinder.WayPointList
	DebugPhysics bool
}

func NewRenderSystem(finder *pathfinder.PathFinder, physics *PhysicsSystem) *RenderSystem {
	return &RenderSystem{finder: finder, physics: physics, View: View{Scale: 1}}
}

func (r *RenderSystem) Update(w *ecs.World) {}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || r.finder == nil {
		return
	}

	r.drawMesh(screen, r.finder.Mesh())
	r.drawPath(screen, r.Preview, colornames.Orange, 1)

	ecs.ForEach2(w, component.NavAgentComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, agent *component.NavAgent, t *component.Transform) {
		clr := color.Color(defaultAgentColor)
		if app, ok := ecs.Get(w, e, component.AppearanceComponent.Kind()); ok && app.Color != nil {
			clr = app.Color
		}

		if agent.State == component.NavMoving {
			x, y := r.View.ToScreen(t.Position)
			for _, wp := range agent.Remaining() {
				nx, ny := r.View.ToScreen(wp.Point3D)
				vector.StrokeLine(screen, x, y, nx, ny, 1, clr, true)
				x, y = nx, ny
			}
		}
		if agent.HasTarget {
			r.drawCross(screen, agent.Target, targetColor)
		}

		radius := agent.Radius
		if radius <= 0 {
			radius = defaultAgentRadius
		}
		x, y := r.View.ToScreen(t.Position)
		sr := float32(float64(radius) * r.View.Scale)
		vector.FillCircle(screen, x, y, sr, clr, true)
		if e == r.Selected {
			vector.StrokeCircle(screen, x, y, sr+3, 2, selectedColor, true)
		}
	})

	if r.DebugPhysics && r.physics != nil {
		cp.DrawSpace(r.physics.Space(), &physicsDebugDrawer{screen: screen, view: r.View})
	}
}

func (r *RenderSystem) drawMesh(screen *ebiten.Image, mesh *navmesh.NavigationMesh) {
	if mesh == nil {
		return
	}
	for i := uint32(0); i < mesh.FaceCount(); i++ {
		x, y := r.View.ToScreen(mesh.PointLocalToScene(mesh.Face(navmesh.FaceIndex(i)).Center))
		vector.FillCircle(screen, x, y, 1.5, meshCenterColor, false)
	}
	for i := uint32(0); i < mesh.EdgeCount(); i++ {
		e := mesh.Edge(navmesh.EdgeIndex(i))
		x0, y0 := r.View.ToScreen(mesh.PointLocalToScene(*mesh.Vertex(e.Vertex[0])))
		x1, y1 := r.View.ToScreen(mesh.PointLocalToScene(*mesh.Vertex(e.Vertex[1])))
		if e.Boundary() {
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, meshBoundaryColor, true)
		} else {
			vector.StrokeLine(screen, x0, y0, x1, y1, 1, meshEdgeColor, true)
		}
	}
}

func (r *RenderSystem) drawPath(screen *ebiten.Image, path pathfinder.WayPointList, clr color.Color, width float32) {
	for i := 1; i < len(path); i++ {
		x0, y0 := r.View.ToScreen(path[i-1].Point3D)
		x1, y1 := r.View.ToScreen(path[i].Point3D)
		vector.StrokeLine(screen, x0, y0, x1, y1, width, clr, true)
	}
	for _, wp := range path {
		x, y := r.View.ToScreen(wp.Point3D)
		vector.FillCircle(screen, x, y, 3, clr, true)
	}
}

func (r *RenderSystem) drawCross(screen *ebiten.Image, p common.Vector3, clr color.Color) {
	x, y := r.View.ToScreen(p)
	vector.StrokeLine(screen, x-5, y-5, x+5, y+5, 2, clr, true)
	vector.StrokeLine(screen, x-5, y+5, x+5, y-5, 2, clr, true)
}

// physicsDebugDrawer draws the cp space through the same view as the mesh.
type physicsDebugDrawer struct {
	screen *ebiten.Image
	view   View
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius, outline)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, outline)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
	if radius > 0 {
		d.drawCircle(a, radius, outline)
		d.drawCircle(b, radius, outline)
	}
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], outline)
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	x, y := d.toScreen(pos)
	vector.FillCircle(d.screen, x, y, float32(size/2), toNRGBA(fill), true)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_COLLISION_POINTS
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	return cp.FColor{R: 0.1, G: 0.6, B: 0.1, A: 0.5}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, clr cp.FColor) {
	x1, y1 := d.toScreen(a)
	x2, y2 := d.toScreen(b)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, 1, toNRGBA(clr), true)
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, clr cp.FColor) {
	for i := 0; i < len(verts); i++ {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], clr)
	}
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, clr cp.FColor) {
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, clr)
}

func (d *physicsDebugDrawer) toScreen(v cp.Vector) (float32, float32) {
	return d.view.FloorToScreen(common.Vec2(float32(v.X), float32(v.Y)))
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(common.Clamp(c.R, 0, 1) * 255),
		G: uint8(common.Clamp(c.G, 0, 1) * 255),
		B: uint8(common.Clamp(c.B, 0, 1) * 255),
		A: uint8(common.Clamp(c.A, 0, 1) * 255),
	}
}
